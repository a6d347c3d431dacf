package parser

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	kindRequest  = "request"
	kindResponse = "response"
	kindUnknown  = "unknown"

	resultOK    = "ok"
	resultError = "error"
)

// Metrics counts parsed messages and header failures.
type Metrics struct {
	messages     *prometheus.CounterVec
	headerErrors *prometheus.CounterVec
}

// NewMetrics creates parser counters and registers them on reg.
// nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sip",
			Subsystem: "parser",
			Name:      "messages_total",
			Help:      "Number of parsed SIP messages by kind and result.",
		}, []string{"kind", "result"}),
		headerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sip",
			Subsystem: "parser",
			Name:      "header_errors_total",
			Help:      "Number of header values that failed to parse.",
		}, []string{"header"}),
	}

	if reg != nil {
		reg.MustRegister(m.messages, m.headerErrors)
	}
	return m
}

func (m *Metrics) observeMessage(kind string, err error) {
	if m == nil {
		return
	}
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.messages.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) observeHeaderError(header string) {
	if m == nil {
		return
	}
	m.headerErrors.WithLabelValues(header).Inc()
}
