// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registration

import "github.com/prometheus/client_golang/prometheus"

// Result label values.
const (
	resultSuccess        = "success"
	resultInvalidRequest = "invalid_request"
	resultInvalidName    = "invalid_name"
	resultMismatch       = "message_mismatch"
	resultNotFound       = "not_found"
	resultVerifyFailed   = "verification_failed"
	resultError          = "error"
)

// Metrics holds the registration counters.
type Metrics struct {
	Starts      *prometheus.CounterVec
	Completions *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with registerer.
// A nil registerer leaves them unregistered.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		Starts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "being_registration_starts_total",
			Help: "Registration start calls by result.",
		}, []string{"result"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "being_registration_completions_total",
			Help: "Registration complete calls by result.",
		}, []string{"result"}),
	}
	if registerer == nil {
		return metrics, nil
	}
	for _, collector := range []prometheus.Collector{metrics.Starts, metrics.Completions} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return metrics, nil
}
