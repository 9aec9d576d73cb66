package catalog

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors a Catalog reports to. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	operations      *prometheus.CounterVec
	colorFlips      prometheus.Counter
	books           prometheus.Gauge
	waitlistDropped prometheus.Counter
}

// NewMetrics creates the catalog collectors and registers them with reg.
// Passing nil skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// Labels: op (insert, remove, acquire, release), outcome
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatorlibrary",
			Subsystem: "catalog",
			Name:      "operations_total",
			Help:      "Catalog operations by kind and outcome",
		}, []string{"op", "outcome"}),

		colorFlips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gatorlibrary",
			Subsystem: "catalog",
			Name:      "color_flips_total",
			Help:      "Node color changes observed across insertions and deletions",
		}),

		books: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gatorlibrary",
			Subsystem: "catalog",
			Name:      "books",
			Help:      "Books currently catalogued",
		}),

		waitlistDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gatorlibrary",
			Subsystem: "catalog",
			Name:      "waitlist_dropped_total",
			Help:      "Reservations dropped because the waitlist was full",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.colorFlips, m.books, m.waitlistDropped)
	}
	return m
}

func (m *Metrics) observeOp(op, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) observeMutation(flipped, size int) {
	if m == nil {
		return
	}
	m.colorFlips.Add(float64(flipped))
	m.books.Set(float64(size))
}

func (m *Metrics) observeDrop() {
	if m == nil {
		return
	}
	m.waitlistDropped.Inc()
}
