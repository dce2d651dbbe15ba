package util

import (
	"fmt"
	"github.com/ValentinKolb/dGPIO/rpc/client"
	"github.com/ValentinKolb/dGPIO/rpc/codec"
	"github.com/ValentinKolb/dGPIO/rpc/common"
	"github.com/ValentinKolb/dGPIO/rpc/transport/tcp"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strconv"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the daemon connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "host"
	cmd.PersistentFlags().String(key, common.DefaultHost, WrapString("Host of the daemon (env: DGPIO_HOST or PIGPIO_ADDR)"))

	key = "port"
	cmd.PersistentFlags().Int(key, common.DefaultPort, WrapString("Port of the daemon (env: DGPIO_PORT or PIGPIO_PORT)"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 0, WrapString("Timeout in seconds for a single reply, 0 waits forever. A timeout closes the connection"))

	key = "connect-retries"
	cmd.PersistentFlags().Int(key, common.DefaultConnectRetries, WrapString("How many times to try connecting to the daemon at startup"))

	key = "connect-backoff"
	cmd.PersistentFlags().Int(key, common.DefaultConnectBackoffMs, WrapString("Pause between two connection attempts (in milliseconds)"))

	key = "dial-timeout"
	cmd.PersistentFlags().Int(key, 0, WrapString("Timeout for a single connection attempt (in seconds, 0 = none)"))

	key = "byte-order"
	cmd.PersistentFlags().String(key, "native", WrapString("Byte order of the daemon's host (native, little, big)"))

	key = "max-block-size"
	cmd.PersistentFlags().Int(key, common.DefaultMaxBlockSize, WrapString("Largest block reply accepted from the daemon (in bytes)"))

	key = "tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY"))

	key = "tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval (in seconds, 0 = disabled)"))

	key = "tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("The linger time (in seconds, -1 = system default)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("Level at which logs will be output (debug, info, warn, error)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("dgpio")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// the daemon's own clients use these variables
	_ = viper.BindEnv("host", "DGPIO_HOST", "PIGPIO_ADDR")
	_ = viper.BindEnv("port", "DGPIO_PORT", "PIGPIO_PORT")
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	conf := &common.ClientConfig{
		TimeoutSecond: viper.GetInt("timeout"),
		MaxBlockSize:  viper.GetInt("max-block-size"),
		ByteOrder:     viper.GetString("byte-order"),
		LogLevel:      viper.GetString("log-level"),
		Transport: common.ClientTransportConfig{
			Endpoint:          common.JoinEndpoint(viper.GetString("host"), viper.GetInt("port")),
			ConnectRetries:    viper.GetInt("connect-retries"),
			ConnectBackoffMs:  viper.GetInt("connect-backoff"),
			DialTimeoutSecond: viper.GetInt("dial-timeout"),
			TCPConf: common.TCPConf{
				TCPNoDelay:      viper.GetBool("tcp-nodelay"),
				TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
				TCPLingerSec:    viper.GetInt("tcp-linger"),
			},
		},
	}

	return conf
}

// Connect creates a dispatcher from the viper configuration
func Connect(cmd *cobra.Command) (*client.Dispatcher, error) {
	if err := BindCommandFlags(cmd); err != nil {
		return nil, err
	}

	config := GetClientConfig()
	if err := common.InitLoggers(*config); err != nil {
		return nil, err
	}

	c, err := codec.NewCodecFromConfig(*config)
	if err != nil {
		return nil, err
	}

	return client.NewDispatcher(*config, tcp.NewTCPClientTransport(), c)
}

// ParseUint32 parses a decimal, hex (0x) or binary (0b) number into a uint32
func ParseUint32(name, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", name, err)
	}
	return uint32(v), nil
}

// ParseBytes parses a list of numbers into bytes
func ParseBytes(args []string) ([]byte, error) {
	data := make([]byte, 0, len(args))
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("byte %d must be a number between 0 and 255: %w", i, err)
		}
		data = append(data, byte(v))
	}
	return data, nil
}

// FormatBytes prints bytes as space separated hex values
func FormatBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("0x%02x", b)
	}
	return strings.Join(parts, " ")
}
