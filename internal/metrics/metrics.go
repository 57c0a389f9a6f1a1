// Package metrics exposes Prometheus counters for the request pipeline. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	SubmissionCreated   = "created"
	SubmissionDuplicate = "duplicate"
	SubmissionInvalid   = "invalid"
	SubmissionFailed    = "failed"

	UploadStored   = "stored"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

type Metrics struct {
	submissions *prometheus.CounterVec
	transitions *prometheus.CounterVec
	designs     *prometheus.CounterVec
	uploads     *prometheus.CounterVec
	pollSkips   prometheus.Counter
	polls       prometheus.Counter
}

// New creates the collectors and registers them with registerer, which
// defaults to prometheus.DefaultRegisterer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "customization_submissions_total",
			Help: "Customization request submissions by result.",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "customization_status_transitions_total",
			Help: "Review status transitions by source and target status.",
		}, []string{"from", "to"}),
		designs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "customization_designs_collected_total",
			Help: "Design artifacts added to drafts by origin.",
		}, []string{"origin"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "customization_design_uploads_total",
			Help: "Design uploads to storage by result.",
		}, []string{"result"}),
		pollSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "customization_review_poll_skipped_total",
			Help: "Review refresh ticks skipped because a fetch was still in flight.",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "customization_review_polls_total",
			Help: "Review list refreshes performed.",
		}),
	}
	registerer.MustRegister(m.submissions, m.transitions, m.designs, m.uploads, m.pollSkips, m.polls)
	return m
}

func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) DesignsCollected(origin string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.designs.WithLabelValues(origin).Add(float64(n))
}

func (m *Metrics) Upload(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) PollSkipped() {
	if m == nil {
		return
	}
	m.pollSkips.Inc()
}

func (m *Metrics) Polled() {
	if m == nil {
		return
	}
	m.polls.Inc()
}
