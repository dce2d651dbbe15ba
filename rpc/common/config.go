package common

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	DefaultHost             = "localhost"
	DefaultPort             = 8888
	DefaultConnectRetries   = 5
	DefaultConnectBackoffMs = 1000
	DefaultMaxBlockSize     = 1 << 20 // 1 MiB
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket settings
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig holds the connection settings
type ClientTransportConfig struct {
	// Endpoint is the daemon address (host:port)
	Endpoint string
	// ConnectRetries is the total number of dial attempts at startup
	ConnectRetries int
	// ConnectBackoffMs is the fixed pause between two dial attempts
	ConnectBackoffMs int
	// DialTimeoutSecond bounds a single dial attempt, 0 means no bound
	DialTimeoutSecond int

	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters of a client
type ClientConfig struct {
	// TimeoutSecond bounds the wait for a single reply. 0 waits forever.
	// A timeout is fatal to the connection.
	TimeoutSecond int
	// MaxBlockSize is the largest block payload accepted from the daemon
	MaxBlockSize int
	// ByteOrder of the wire words: native, little or big
	ByteOrder string
	// LogLevel is one of debug, info, warn, error
	LogLevel string

	Transport ClientTransportConfig
}

// DefaultClientConfig returns the configuration matching a local daemon with default settings
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		MaxBlockSize: DefaultMaxBlockSize,
		ByteOrder:    "native",
		LogLevel:     "info",
		Transport: ClientTransportConfig{
			Endpoint:         JoinEndpoint(DefaultHost, DefaultPort),
			ConnectRetries:   DefaultConnectRetries,
			ConnectBackoffMs: DefaultConnectBackoffMs,
			TCPConf: TCPConf{
				TCPNoDelay:   true,
				TCPLingerSec: -1,
			},
		},
	}
}

// JoinEndpoint builds the daemon address from host and port
func JoinEndpoint(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Timeout returns the reply timeout as a duration
func (c *ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecond) * time.Second
}

// ConnectBackoff returns the pause between two dial attempts
func (c *ClientTransportConfig) ConnectBackoff() time.Duration {
	return time.Duration(c.ConnectBackoffMs) * time.Millisecond
}

// DialTimeout returns the bound of a single dial attempt
func (c *ClientTransportConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSecond) * time.Second
}

// Validate checks the configuration for values the client cannot work with
func (c *ClientConfig) Validate() error {
	if c.Transport.Endpoint == "" {
		return fmt.Errorf("no endpoint provided")
	}
	if _, _, err := net.SplitHostPort(c.Transport.Endpoint); err != nil {
		return fmt.Errorf("invalid endpoint %q: %v", c.Transport.Endpoint, err)
	}
	if c.TimeoutSecond < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.MaxBlockSize < 0 {
		return fmt.Errorf("max block size must not be negative")
	}
	return nil
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	timeout := "none"
	if c.TimeoutSecond > 0 {
		timeout = fmt.Sprintf("%d sec", c.TimeoutSecond)
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Reply Timeout", timeout)
	addField("Max Block Size", fmt.Sprintf("%d bytes", c.MaxBlockSize))
	addField("Byte Order", c.ByteOrder)
	addField("Log Level", c.LogLevel)

	// Transport
	addSection("Transport")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Connect Retries", strconv.Itoa(c.Transport.ConnectRetries))
	addField("Connect Backoff", fmt.Sprintf("%d ms", c.Transport.ConnectBackoffMs))
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	if c.Transport.TCPKeepAliveSec > 0 {
		addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	}

	return sb.String()
}
