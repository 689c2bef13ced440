// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package factory

import (
	"github.com/luxfi/metric"
)

const kindLabel = "kind"

var kindLabels = []string{kindLabel}

type metrics struct {
	numCreated metric.CounterVec
	numRemoved metric.Counter
}

// Metrics are self-registering when created with NewCounter etc.
func newMetrics(_ metric.Registerer) (*metrics, error) {
	m := &metrics{
		numCreated: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "instances_created",
				Help: "number of treasury instances created, by kind",
			},
			kindLabels,
		),
		numRemoved: metric.NewCounter(metric.CounterOpts{
			Name: "instances_removed",
			Help: "number of treasury instances removed after close",
		}),
	}
	return m, nil
}

func (m *metrics) markCreated(kind Kind) {
	m.numCreated.With(metric.Labels{
		kindLabel: kind.String(),
	}).Inc()
}

func (m *metrics) markRemoved() {
	m.numRemoved.Inc()
}
