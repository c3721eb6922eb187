// Package metrics holds the domain counters exported at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Download outcomes.
const (
	OutcomeServed   = "served"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics tracks link issuance and download outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	linksIssued prometheus.Counter
	downloads   *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		linksIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statement_links_issued_total",
			Help: "Total number of financial statement share links issued.",
		}),
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_downloads_total",
				Help: "Total number of financial statement download attempts.",
			},
			[]string{"mode", "outcome"},
		),
	}
	for _, c := range []prometheus.Collector{m.linksIssued, m.downloads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) LinkIssued() {
	if m == nil {
		return
	}
	m.linksIssued.Inc()
}

func (m *Metrics) Download(mode, outcome string) {
	if m == nil {
		return
	}
	m.downloads.WithLabelValues(mode, outcome).Inc()
}
