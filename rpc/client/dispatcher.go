package client

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGPIO/lib/queue"
	"github.com/ValentinKolb/dGPIO/rpc/codec"
	"github.com/ValentinKolb/dGPIO/rpc/common"
	"github.com/ValentinKolb/dGPIO/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var (
	Logger = logger.GetLogger("rpc")
)

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// response is the outcome of one command, delivered to the caller that issued it
type response struct {
	result common.Result
	err    error
}

// job is one command waiting in the mailbox
type job struct {
	ctx  context.Context
	cmd  common.Command
	resp chan response // buffered, the worker never blocks on it
}

// Dispatcher is the single serialization point for all commands sent to the
// daemon. It owns the connection through one worker goroutine; callers submit
// commands through a mailbox and block until their own reply arrives.
type Dispatcher struct {
	config    common.ClientConfig
	transport transport.IRPCClientTransport
	codec     codec.IFrameCodec
	mailbox   *queue.MPSC[job]
	metrics   *dispatchMetrics

	done      chan struct{} // closed when the worker exited
	closing   atomic.Bool
	closeOnce sync.Once

	fatalMu  sync.RWMutex
	fatalErr error
}

// -----------------------------------------------------------
// Factory Method
// -----------------------------------------------------------

// NewDispatcher connects the transport (with the configured bounded retry)
// and starts the worker owning the connection.
func NewDispatcher(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	codec codec.IFrameCodec,
) (*Dispatcher, error) {

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		config:    config,
		transport: transport,
		codec:     codec,
		mailbox:   queue.NewMPSC[job](),
		done:      make(chan struct{}),
	}
	d.metrics = newDispatchMetrics(d.mailbox.Len)

	go d.run()

	Logger.Infof("Dispatcher started for %s using %s codec", transport.Endpoint(), codec.Name())
	return d, nil
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// Execute sends one command and waits for its reply.
//
// A *common.DaemonError is returned when the daemon answered with a negative
// code; the connection stays usable. Errors wrapping common.ErrIO or
// common.ErrTimeout are fatal: the dispatcher stops and every further command
// fails with the same error.
//
// If ctx ends before the command was sent, the command is dropped. If it ends
// while the command is in flight, Execute returns ctx.Err() and the worker
// still consumes the reply to keep the stream in sync.
func (d *Dispatcher) Execute(ctx context.Context, cmd common.Command) (common.Result, error) {
	if err := ctx.Err(); err != nil {
		return common.Result{}, err
	}

	j := &job{ctx: ctx, cmd: cmd, resp: make(chan response, 1)}
	if !d.mailbox.Push(j) {
		return common.Result{}, d.stoppedErr()
	}

	select {
	case r := <-j.resp:
		return r.result, r.err
	case <-ctx.Done():
		return common.Result{}, ctx.Err()
	case <-d.done:
		// the worker may have answered right before exiting
		select {
		case r := <-j.resp:
			return r.result, r.err
		default:
			return common.Result{}, d.stoppedErr()
		}
	}
}

// Call builds a command from an opcode and extension words and executes it
func (d *Dispatcher) Call(ctx context.Context, op common.Opcode, p1, p2 uint32, words ...uint32) (common.Result, error) {
	cmd, err := common.BuildCommand(op, p1, p2, words, nil)
	if err != nil {
		return common.Result{}, err
	}
	return d.Execute(ctx, cmd)
}

// CallRaw builds a command carrying raw extension bytes after the words and executes it
func (d *Dispatcher) CallRaw(ctx context.Context, op common.Opcode, p1, p2 uint32, words []uint32, raw []byte) (common.Result, error) {
	cmd, err := common.BuildCommand(op, p1, p2, words, raw)
	if err != nil {
		return common.Result{}, err
	}
	return d.Execute(ctx, cmd)
}

// ExecuteName executes a command given by its mnemonic. The name must be part
// of the command table, an unknown name panics.
func (d *Dispatcher) ExecuteName(ctx context.Context, name string, p1, p2 uint32, words ...uint32) (common.Result, error) {
	return d.Call(ctx, common.MustOpcode(name), p1, p2, words...)
}

// Done is closed once the worker stopped, either after Close or after a fatal error
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Err returns the fatal error that stopped the dispatcher, if any
func (d *Dispatcher) Err() error {
	d.fatalMu.RLock()
	defer d.fatalMu.RUnlock()
	return d.fatalErr
}

// Endpoint returns the address of the daemon
func (d *Dispatcher) Endpoint() string {
	return d.transport.Endpoint()
}

// WritePrometheus writes the dispatcher's metrics in Prometheus text format
func (d *Dispatcher) WritePrometheus(w io.Writer) {
	d.metrics.set.WritePrometheus(w)
}

// Close rejects new commands, fails the queued ones with common.ErrClosed and
// closes the connection once the command in flight (if any) completed.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		d.closing.Store(true)
		d.mailbox.Close()
	})
	<-d.done
	return nil
}

// --------------------------------------------------------------------------
// Worker
// --------------------------------------------------------------------------

// run is the only goroutine touching the transport. It handles one command
// completely before it takes the next from the mailbox, because the daemon
// correlates replies with requests only by their order.
func (d *Dispatcher) run() {
	defer close(d.done)
	defer func() {
		if err := d.transport.Close(); err != nil {
			Logger.Warningf("Failed to close connection to %s: %v", d.transport.Endpoint(), err)
		}
	}()

	for j := range d.mailbox.Recv() {
		if err := d.Err(); err != nil {
			j.resp <- response{err: err}
			continue
		}
		if d.closing.Load() {
			j.resp <- response{err: common.ErrClosed}
			continue
		}
		if err := j.ctx.Err(); err != nil {
			// nothing was written, the stream stays in sync
			j.resp <- response{err: err}
			continue
		}

		result, err := d.process(j.cmd)
		if err != nil && common.IsFatal(err) {
			d.fail(err)
		}
		j.resp <- response{result: result, err: err}
	}
}

// process performs encode, send, receive, decode and error mapping for one command
func (d *Dispatcher) process(cmd common.Command) (common.Result, error) {
	start := time.Now()
	frame := d.codec.Encode(cmd)

	if timeout := d.config.Timeout(); timeout > 0 {
		if err := d.transport.SetReplyDeadline(start.Add(timeout)); err != nil {
			return common.Result{}, fmt.Errorf("%s: %w", cmd.Op, err)
		}
	}

	if err := d.transport.Send(frame); err != nil {
		return common.Result{}, fmt.Errorf("%s: %w", cmd.Op, err)
	}
	d.metrics.sent(len(frame))

	result, err := d.codec.Decode(cmd.Op, d.transport)
	d.metrics.observe(cmd.Op, result, err, start)

	if err != nil {
		if derr, ok := common.AsDaemonError(err); ok {
			Logger.Debugf("%s returned %s", cmd, derr.Code)
			return common.Result{}, err
		}
		return common.Result{}, fmt.Errorf("%s: %w", cmd.Op, err)
	}

	Logger.Debugf("%s -> %s in %s", cmd, result, time.Since(start))
	return result, nil
}

// fail records a fatal error and stops accepting commands
func (d *Dispatcher) fail(err error) {
	d.fatalMu.Lock()
	if d.fatalErr == nil {
		d.fatalErr = err
	}
	d.fatalMu.Unlock()

	d.metrics.fatal.Inc()
	Logger.Errorf("Connection to %s failed, dispatcher stops: %v", d.transport.Endpoint(), err)
	d.mailbox.Close()
}

// stoppedErr returns the error for commands that can no longer be sent
func (d *Dispatcher) stoppedErr() error {
	if err := d.Err(); err != nil {
		return err
	}
	return common.ErrClosed
}
