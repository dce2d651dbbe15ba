// Package client implements the dispatcher, the one call primitive through
// which all commands reach the daemon.
//
// The daemon processes exactly one request at a time per connection and its
// replies carry no request ID: a reply belongs to a request only by its
// position in the stream. The dispatcher therefore owns the connection through
// a single worker goroutine. Callers push commands onto a multi-producer
// single-consumer mailbox (lib/queue) and block until the worker delivers
// their reply. The worker performs encode, send, receive, decode and error
// mapping for one command before it takes the next.
//
// Key Components:
//
//   - NewDispatcher: connects a transport with bounded retry and starts the worker.
//
//   - Execute / Call / CallRaw / ExecuteName: submit one command and wait for
//     its result. Negative daemon results are returned as *common.DaemonError.
//
//   - Done / Err: a fatal connection error (common.ErrIO, common.ErrTimeout)
//     stops the worker; queued and later commands fail with that error. The
//     dispatcher does not reconnect, a supervising layer is expected to create
//     a new one.
//
//   - WritePrometheus: per-command call counts, daemon error counts and
//     durations, bytes sent and received, queue length.
//
// Usage Example:
//
//	config := common.DefaultClientConfig()
//	c, _ := codec.NewCodecFromConfig(config)
//	d, err := client.NewDispatcher(config, tcp.NewTCPClientTransport(), c)
//	if err != nil {
//	  return err
//	}
//	defer d.Close()
//
//	// open i2c bus 1, address 0x53, flags 0
//	res, err := d.Call(ctx, common.OpI2CO, 1, 0x53, 0)
//	handle := res.Value
//
// Thread Safety:
//
//	All Dispatcher methods are safe for concurrent use.
package client
