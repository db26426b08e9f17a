// Package metrics provides Prometheus instrumentation for the identity
// service. All record methods are nil-safe so callers can pass a nil
// *AuthMetrics when metrics are disabled, at zero overhead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for auth operations.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuthMetrics tracks identity-service Prometheus metrics.
//
// All metrics use the authd_ prefix.
type AuthMetrics struct {
	// LoginsTotal counts credential logins by outcome
	LoginsTotal *prometheus.CounterVec

	// RegistrationsTotal counts registrations by outcome
	RegistrationsTotal *prometheus.CounterVec

	// FederatedLinksTotal counts federated identity links by outcome
	FederatedLinksTotal *prometheus.CounterVec

	// TokenValidationsTotal counts token validations by outcome
	TokenValidationsTotal *prometheus.CounterVec

	// RoleReplacementsTotal counts role replacement operations by outcome
	RoleReplacementsTotal *prometheus.CounterVec
}

// NewAuthMetrics creates identity metrics registered against reg.
//
// Panics if registration fails (expected during initialization only).
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authd_logins_total",
				Help: "Total credential logins by outcome",
			},
			[]string{"outcome"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authd_registrations_total",
				Help: "Total account registrations by outcome",
			},
			[]string{"outcome"},
		),
		FederatedLinksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authd_federated_links_total",
				Help: "Total federated identity link attempts by outcome",
			},
			[]string{"outcome"},
		),
		TokenValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authd_token_validations_total",
				Help: "Total token validations by outcome",
			},
			[]string{"outcome"},
		),
		RoleReplacementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authd_role_replacements_total",
				Help: "Total role replacement operations by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(
		m.LoginsTotal,
		m.RegistrationsTotal,
		m.FederatedLinksTotal,
		m.TokenValidationsTotal,
		m.RoleReplacementsTotal,
	)

	return m
}

// RecordLogin records a credential login attempt.
func (m *AuthMetrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

// RecordRegistration records a registration attempt.
func (m *AuthMetrics) RecordRegistration(outcome string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

// RecordFederatedLink records a federated link attempt.
func (m *AuthMetrics) RecordFederatedLink(outcome string) {
	if m == nil {
		return
	}
	m.FederatedLinksTotal.WithLabelValues(outcome).Inc()
}

// RecordTokenValidation records a token validation.
func (m *AuthMetrics) RecordTokenValidation(outcome string) {
	if m == nil {
		return
	}
	m.TokenValidationsTotal.WithLabelValues(outcome).Inc()
}

// RecordRoleReplacement records a role replacement operation.
func (m *AuthMetrics) RecordRoleReplacement(outcome string) {
	if m == nil {
		return
	}
	m.RoleReplacementsTotal.WithLabelValues(outcome).Inc()
}
