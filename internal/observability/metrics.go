package observability

import (
	"errors"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danmuck/mcwire/internal/protocol"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcwire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	framesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "frame",
			Name:      "sent_total",
			Help:      "Frames written, by compression mode.",
		},
		[]string{"node", "compressed"},
	)
	framesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "frame",
			Name:      "received_total",
			Help:      "Frames read and unpacked.",
		},
		[]string{"node"},
	)
	frameBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "frame",
			Name:      "bytes_total",
			Help:      "Frame bytes by direction. Sent counts wire bytes, received counts unpacked bytes.",
		},
		[]string{"node", "direction"},
	)
	frameSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcwire",
			Subsystem: "frame",
			Name:      "size_bytes",
			Help:      "Frame size distribution.",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 9),
		},
		[]string{"node", "direction"},
	)
	frameFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "frame",
			Name:      "failures_total",
			Help:      "Frame and packet failures by error category.",
		},
		[]string{"node", "category"},
	)
	statusSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcwire",
			Subsystem: "status",
			Name:      "sessions_total",
			Help:      "Status-ping sessions by outcome.",
		},
		[]string{"node", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			framesSent, framesReceived, frameBytes, frameSize, frameFailures,
			statusSessions,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordFrameSent(node string, compressed bool, frameLen int) {
	RegisterMetrics()
	framesSent.WithLabelValues(node, strconv.FormatBool(compressed)).Inc()
	frameBytes.WithLabelValues(node, "sent").Add(float64(frameLen))
	frameSize.WithLabelValues(node, "sent").Observe(float64(frameLen))
}

func RecordFrameReceived(node string, innerLen int) {
	RegisterMetrics()
	framesReceived.WithLabelValues(node).Inc()
	frameBytes.WithLabelValues(node, "received").Add(float64(innerLen))
	frameSize.WithLabelValues(node, "received").Observe(float64(innerLen))
}

func RecordFrameFailure(node string, err error) {
	RegisterMetrics()
	frameFailures.WithLabelValues(node, Category(err)).Inc()
}

func RecordStatusSession(node, outcome string) {
	RegisterMetrics()
	statusSessions.WithLabelValues(node, outcome).Inc()
}

// Category maps an error to a low-cardinality metric label.
func Category(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, protocol.ErrViolation):
		return "violation"
	case errors.Is(err, protocol.ErrUnknownDiscriminant):
		return "unknown_discriminant"
	case errors.Is(err, protocol.ErrFormat):
		return "format"
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "eof"
	case errors.Is(err, os.ErrDeadlineExceeded):
		return "timeout"
	default:
		return "io"
	}
}

// FrameObserver feeds connection frame events into the metrics above.
type FrameObserver struct {
	Node string
}

func (o FrameObserver) FrameSent(_ int32, compressed bool, frameLen int) {
	RecordFrameSent(o.Node, compressed, frameLen)
}

func (o FrameObserver) FrameReceived(_ int32, innerLen int) {
	RecordFrameReceived(o.Node, innerLen)
}

func (o FrameObserver) FrameFailed(err error) {
	RecordFrameFailure(o.Node, err)
}
