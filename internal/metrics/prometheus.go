package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Metrics are created at package init so instrumented code paths never see a
// nil collector; InitCustomMetrics only attaches them to a registry.
var (
	LoginSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "confide_logins_success_total",
		Help: "Total number of successful local logins.",
	})
	LoginFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "confide_logins_failure_total",
		Help: "Total number of failed local logins.",
	})
	UserRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "confide_users_registered_total",
		Help: "Total number of users registered.",
	})
	FederatedLoginTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "confide_federated_logins_total",
		Help: "Total number of federated logins, by provider.",
	}, []string{"provider"})
	SecretsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "confide_secrets_submitted_total",
		Help: "Total number of secrets submitted.",
	})
	// ActiveSessionsGauge tracks sessions issued minus explicit logouts.
	// Sessions reaped by the store TTL index are not deducted; use
	// `confidectl session count` for the exact store-side number.
	ActiveSessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "confide_sessions_open_gauge",
		Help: "Sessions issued minus explicit logouts. TTL-lapsed sessions are not deducted.",
	})
)

// InitCustomMetrics registers the application metrics with the given
// registry. It should be called once at startup.
func InitCustomMetrics(reg prometheus.Registerer) {
	if reg == nil {
		return
	}
	for _, c := range []prometheus.Collector{
		LoginSuccessTotal,
		LoginFailureTotal,
		UserRegisteredTotal,
		FederatedLoginTotal,
		SecretsSubmittedTotal,
		ActiveSessionsGauge,
	} {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register metric")
		}
	}
}
