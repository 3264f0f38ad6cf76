package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts edge router decisions and legacy resolutions.
type Recorder struct {
	decisions   *prometheus.CounterVec
	resolutions *prometheus.CounterVec
}

// NewRecorder registers the routing counters on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	recorder := &Recorder{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_edge_decisions_total",
			Help: "Edge router decisions grouped by action and reason",
		}, []string{"action", "reason"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_legacy_resolutions_total",
			Help: "Legacy URL redirects grouped by resolution tier",
		}, []string{"tier"}),
	}
	reg.MustRegister(recorder.decisions, recorder.resolutions)
	return recorder
}

func (r *Recorder) EdgeDecision(action, reason string) {
	r.decisions.WithLabelValues(action, reason).Inc()
}

func (r *Recorder) LegacyResolution(tier string) {
	r.resolutions.WithLabelValues(tier).Inc()
}
