// Package metrics exposes Prometheus counters for document dispatch and
// settings propagation. A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chartdesk"

// Recorder groups the counters updated by the document bus and the settings
// aggregator.
type Recorder struct {
	gatherer prometheus.Gatherer

	notifications prometheus.Counter
	destroyed     prometheus.Counter
	faults        *prometheus.CounterVec
	applied       prometheus.Counter
}

// New registers the counters on reg. Passing nil uses a private registry so
// tests can create as many recorders as they like. Counts reads back from reg
// when it is also a Gatherer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	g, _ := reg.(prometheus.Gatherer)
	f := promauto.With(reg)
	return &Recorder{
		gatherer: g,
		notifications: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_notifications_total",
			Help:      "Document change notifications delivered to handlers.",
		}),
		destroyed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_destroyed_total",
			Help:      "Documents destroyed after their last reference was released.",
		}),
		faults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_faults_total",
			Help:      "Handler callbacks that panicked and were contained.",
		}, []string{"callback"}),
		applied: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_applied_total",
			Help:      "Settings applications delivered to handlers.",
		}),
	}
}

// Notified counts one change notification.
func (r *Recorder) Notified() {
	if r == nil {
		return
	}
	r.notifications.Inc()
}

// Destroyed counts one destroyed document.
func (r *Recorder) Destroyed() {
	if r == nil {
		return
	}
	r.destroyed.Inc()
}

// Fault counts a contained handler panic for the named callback.
func (r *Recorder) Fault(callback string) {
	if r == nil {
		return
	}
	r.faults.WithLabelValues(callback).Inc()
}

// Applied counts one ApplySettings delivery.
func (r *Recorder) Applied() {
	if r == nil {
		return
	}
	r.applied.Inc()
}

// Counts gathers every counter series, keyed by metric name with its labels
// in braces, e.g. chartdesk_handler_faults_total{callback="apply"}.
func (r *Recorder) Counts() (map[string]float64, error) {
	if r == nil || r.gatherer == nil {
		return nil, nil
	}
	families, err := r.gatherer.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			c := m.GetCounter()
			if c == nil {
				continue
			}
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			sort.Strings(labels)
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			out[name] = c.GetValue()
		}
	}
	return out, nil
}

// Notifications exposes the notification counter for assertions.
func (r *Recorder) Notifications() prometheus.Counter { return r.notifications }

// Faults exposes the fault counter vector for assertions.
func (r *Recorder) Faults() *prometheus.CounterVec { return r.faults }

// DestroyedCounter exposes the destroyed counter for assertions.
func (r *Recorder) DestroyedCounter() prometheus.Counter { return r.destroyed }

// AppliedCounter exposes the settings counter for assertions.
func (r *Recorder) AppliedCounter() prometheus.Counter { return r.applied }
