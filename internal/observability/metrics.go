package observability

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danmuck/tracectl/internal/protocol/record"
)

var (
	registerOnce sync.Once

	recordsDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracectl",
			Subsystem: "wire",
			Name:      "records_decoded_total",
			Help:      "Control records decoded from the wire.",
		},
		[]string{"kind"},
	)
	decodeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tracectl",
			Subsystem: "wire",
			Name:      "decode_failures_total",
			Help:      "Control record decode failures by reason.",
		},
		[]string{"kind", "reason"},
	)
	controlSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tracectl",
			Subsystem: "control",
			Name:      "sessions_total",
			Help:      "Accepted control connections.",
		},
	)
	installDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tracectl",
			Subsystem: "control",
			Name:      "install_duration_seconds",
			Help:      "Time from record receipt to registry installation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			recordsDecoded,
			decodeFailures,
			controlSessions,
			installDuration,
		)
	})
}

func RecordDecoded(kind record.Kind) {
	recordsDecoded.WithLabelValues(kind.String()).Inc()
}

func RecordDecodeFailure(kind record.Kind, err error) {
	decodeFailures.WithLabelValues(kind.String(), failureReason(err)).Inc()
}

func RecordControlSession() {
	controlSessions.Inc()
}

func RecordInstall(kind record.Kind, outcome string, duration time.Duration) {
	installDuration.WithLabelValues(kind.String(), outcome).Observe(duration.Seconds())
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, record.ErrUnknownEnumValue):
		return "unknown_enum"
	case errors.Is(err, record.ErrMalformedRecord):
		return "malformed"
	default:
		return "other"
	}
}
