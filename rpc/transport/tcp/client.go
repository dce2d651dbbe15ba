package tcp

import (
	"github.com/ValentinKolb/dGPIO/rpc/common"
	"github.com/ValentinKolb/dGPIO/rpc/transport"
	"github.com/ValentinKolb/dGPIO/rpc/transport/base"
	"net"
	"time"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	if timeout > 0 {
		return net.DialTimeout("tcp", endpoint, timeout)
	}
	return net.Dial("tcp", endpoint)
}

// UpgradeConnection applies the TCPConf and SocketConf settings to a TCP connection
func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}
	tc := config.Transport

	// Commands are small and latency bound, Nagle only delays them
	if err := tcpConn.SetNoDelay(tc.TCPNoDelay); err != nil {
		return err
	}

	if tc.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(tc.WriteBufferSize); err != nil {
			return err
		}
	}

	if tc.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(tc.ReadBufferSize); err != nil {
			return err
		}
	}

	if tc.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(time.Duration(tc.TCPKeepAliveSec) * time.Second); err != nil {
			return err
		}
	}

	if tc.TCPLingerSec >= 0 {
		if err := tcpConn.SetLinger(tc.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
