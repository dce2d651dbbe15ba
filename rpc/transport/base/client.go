package base

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dGPIO/rpc/common"
	"github.com/ValentinKolb/dGPIO/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"net"
	"time"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint. A timeout of 0 means no bound.
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g. "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements the core client transport functionality
// independent of the specific transport medium
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	conn      net.Conn
	sleep     func(time.Duration)
}

// -----------------------------------------------------------
// Transport Factory Method
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
		sleep:     time.Sleep,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	endpoint := config.Transport.Endpoint
	if endpoint == "" {
		return fmt.Errorf("no endpoint provided")
	}

	// Store the config
	t.config = config

	// Close an existing connection
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}

	// We always try at least once
	attempts := config.Transport.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}
	backoff := config.Transport.ConnectBackoff()

	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := t.dial(endpoint)
		if err == nil {
			t.conn = conn
			Logger.Infof("Connected to %s using %s transport (attempt %d/%d)", endpoint, t.connector.GetName(), i, attempts)
			return nil
		}

		lastErr = err
		Logger.Warningf("Connection attempt %d/%d to %s failed: %v", i, attempts, endpoint, err)

		// No pause after the last attempt
		if i < attempts && backoff > 0 {
			t.sleep(backoff)
		}
	}

	return &common.ConnectError{Endpoint: endpoint, Attempts: attempts, Err: lastErr}
}

func (t *clientTransport) Send(frame []byte) error {
	if t.conn == nil {
		return fmt.Errorf("%w: not connected", common.ErrIO)
	}
	if err := writeFull(t.conn, frame); err != nil {
		return wrapIOError("write", err)
	}
	return nil
}

func (t *clientTransport) RecvExactly(n int) ([]byte, error) {
	if t.conn == nil {
		return nil, fmt.Errorf("%w: not connected", common.ErrIO)
	}
	buf, err := readExactly(t.conn, n)
	if err != nil {
		return nil, wrapIOError("read", err)
	}
	return buf, nil
}

func (t *clientTransport) SetReplyDeadline(deadline time.Time) error {
	if t.conn == nil {
		return fmt.Errorf("%w: not connected", common.ErrIO)
	}
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return wrapIOError("set deadline", err)
	}
	return nil
}

func (t *clientTransport) Endpoint() string {
	return t.config.Transport.Endpoint
}

func (t *clientTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// dial establishes a single connection and applies the socket settings
func (t *clientTransport) dial(endpoint string) (net.Conn, error) {
	conn, err := t.connector.Connect(endpoint, t.config.Transport.DialTimeout())
	if err != nil {
		return nil, err
	}

	// Upgrade the connection with protocol-specific settings
	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to upgrade connection to %s: %v", endpoint, err)
	}

	return conn, nil
}

// wrapIOError classifies a socket error as timeout or i/o failure
func wrapIOError(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", common.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrIO, op, err)
}
