// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package mail

import "github.com/prometheus/client_golang/prometheus"

// Delivery outcome label values.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
	OutcomeLogged = "logged"
)

// Deliveries counts outgoing messages by kind and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Deliveries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gamenight_mail_deliveries_total",
		Help: "Total number of outgoing emails by kind and outcome",
	},
	[]string{"kind", "outcome"},
)

// RegisterMetrics registers mail metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Deliveries)
}

func recordDelivery(kind Kind, outcome string) {
	Deliveries.WithLabelValues(string(kind), outcome).Inc()
}
