// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package auth

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values.
const (
	OutcomeSuccess    = "success"
	OutcomeInvalid    = "invalid"
	OutcomeUnverified = "unverified"
	OutcomeSuspended  = "suspended"
	OutcomeError      = "error"
)

// LoginAttempts counts login attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gamenight_login_attempts_total",
		Help: "Total number of login attempts",
	},
	[]string{"outcome"},
)

// TokenRedemptions counts verification and reset token redemptions.
// Use RegisterMetrics to register this with a Prometheus registry.
var TokenRedemptions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gamenight_token_redemptions_total",
		Help: "Total number of single-use token redemptions",
	},
	[]string{"purpose", "outcome"},
)

// RegisterMetrics registers auth metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(TokenRedemptions)
}

func recordLogin(outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
}

func recordRedemption(purpose, outcome string) {
	TokenRedemptions.WithLabelValues(purpose, outcome).Inc()
}
