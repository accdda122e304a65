// Package metrics holds the registration domain's Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the registration core's decisions.
type Metrics struct {
	RegistrationsAccepted prometheus.Counter
	RegistrationsRejected *prometheus.CounterVec
	SurveysSubmitted      prometheus.Counter
	SurveysRejected       *prometheus.CounterVec
	RegistrationsPurged   prometheus.Counter
	RuleReplacements      prometheus.Counter
}

// New creates and registers the domain metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollbook_registrations_accepted_total",
			Help: "Registrations that passed validation and were stored.",
		}),
		RegistrationsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rollbook_registrations_rejected_total",
			Help: "Registrations rejected by business rules, by reason.",
		}, []string{"reason"}),
		SurveysSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollbook_surveys_submitted_total",
			Help: "Survey submissions stored.",
		}),
		SurveysRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rollbook_surveys_rejected_total",
			Help: "Survey submissions rejected by business rules, by reason.",
		}, []string{"reason"}),
		RegistrationsPurged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollbook_registrations_purged_total",
			Help: "Registrations removed by administrative purge.",
		}),
		RuleReplacements: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollbook_rule_replacements_total",
			Help: "Bulk rule/session replacement operations.",
		}),
	}
}

// IncRejected records one rejected registration.
func (m *Metrics) IncRejected(reason string) {
	m.RegistrationsRejected.WithLabelValues(reason).Inc()
}

// IncSurveyRejected records one rejected survey submission.
func (m *Metrics) IncSurveyRejected(reason string) {
	m.SurveysRejected.WithLabelValues(reason).Inc()
}
