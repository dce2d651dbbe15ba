// Package base provides the medium independent part of the client transport.
// It implements connection establishment with bounded retry, full-frame writes
// and exact-size reads on top of a protocol-specific connector.
//
// Key Components:
//
//   - IClientConnector: Interface for protocol-specific operations (dialing and
//     socket options) that allows extending the base transport with different
//     network protocols.
//
//   - clientTransport: Holds the single connection to the daemon. Connect dials
//     up to ConnectRetries times with a fixed pause of ConnectBackoffMs between
//     attempts, since the daemon may still be starting when the client starts.
//
// Error Classification:
//
//   - Dial failures after the retry budget: *common.ConnectError
//   - Write/read failures, peer closed mid-frame: common.ErrIO
//   - Expired reply deadline: common.ErrTimeout
//
// Thread Safety:
//
//	The transport is not safe for concurrent use. The daemon protocol carries
//	no request IDs, so the dispatcher is the only owner of a transport.
package base
