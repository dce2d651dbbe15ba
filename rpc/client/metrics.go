package client

import (
	"fmt"
	"github.com/ValentinKolb/dGPIO/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
	"time"
)

// opMetrics holds the metric handles of one opcode
type opMetrics struct {
	calls        *metrics.Counter
	daemonErrors *metrics.Counter
	duration     *metrics.Histogram
}

// dispatchMetrics collects the metrics of one dispatcher in its own set
type dispatchMetrics struct {
	set           *metrics.Set
	ops           *xsync.MapOf[common.Opcode, *opMetrics]
	bytesSent     *metrics.Counter
	bytesReceived *metrics.Counter
	fatal         *metrics.Counter
}

func newDispatchMetrics(queueLen func() int) *dispatchMetrics {
	set := metrics.NewSet()
	set.NewGauge("dgpio_queue_length", func() float64 {
		return float64(queueLen())
	})

	return &dispatchMetrics{
		set:           set,
		ops:           xsync.NewMapOf[common.Opcode, *opMetrics](),
		bytesSent:     set.NewCounter("dgpio_bytes_sent_total"),
		bytesReceived: set.NewCounter("dgpio_bytes_received_total"),
		fatal:         set.NewCounter("dgpio_connection_failures_total"),
	}
}

// forOp returns the handles of an opcode, creating them on first use
func (m *dispatchMetrics) forOp(op common.Opcode) *opMetrics {
	om, _ := m.ops.LoadOrCompute(op, func() *opMetrics {
		return &opMetrics{
			calls:        m.set.GetOrCreateCounter(fmt.Sprintf(`dgpio_commands_total{command=%q}`, op)),
			daemonErrors: m.set.GetOrCreateCounter(fmt.Sprintf(`dgpio_daemon_errors_total{command=%q}`, op)),
			duration:     m.set.GetOrCreateHistogram(fmt.Sprintf(`dgpio_command_duration_seconds{command=%q}`, op)),
		}
	})
	return om
}

func (m *dispatchMetrics) sent(n int) {
	m.bytesSent.Add(n)
}

// observe records a completed command
func (m *dispatchMetrics) observe(op common.Opcode, result common.Result, err error, start time.Time) {
	om := m.forOp(op)
	om.calls.Inc()
	om.duration.UpdateDuration(start)

	if err != nil {
		if _, ok := common.AsDaemonError(err); ok {
			om.daemonErrors.Inc()
			m.bytesReceived.Add(16)
		}
		return
	}
	m.bytesReceived.Add(16 + len(result.Block))
}
