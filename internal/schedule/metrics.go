// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package schedule

import "github.com/prometheus/client_golang/prometheus"

// Signup outcome label values.
const (
	OutcomeSignedUp      = "signed_up"
	OutcomeOtherGame     = "other_game"
	OutcomeSameGame      = "same_game"
	OutcomeGameNotFound  = "game_not_found"
	OutcomeRaceLost      = "race_lost"
	OutcomeSignupRemoved = "removed"
	OutcomeError         = "error"
)

// SignupAttempts counts signup and removal attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var SignupAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gamenight_signup_attempts_total",
		Help: "Total number of game signup attempts",
	},
	[]string{"outcome"},
)

// RegisterMetrics registers schedule metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(SignupAttempts)
}

func recordSignup(outcome string) {
	SignupAttempts.WithLabelValues(outcome).Inc()
}
