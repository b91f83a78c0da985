/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package workflow

import "github.com/hyperledger/fabric-lib-go/common/metrics"

var (
	operationsTotalOpts = metrics.CounterOpts{
		Namespace:    "workflow",
		Name:         "operations_total",
		Help:         "The number of operations executed, by result.",
		LabelNames:   []string{"operation", "result"},
		StatsdFormat: "%{#fqname}.%{operation}.%{result}",
	}

	operationDurationOpts = metrics.HistogramOpts{
		Namespace:    "workflow",
		Name:         "operation_duration_seconds",
		Help:         "The time taken by an operation in seconds.",
		LabelNames:   []string{"operation"},
		StatsdFormat: "%{#fqname}.%{operation}",
	}
)

// Result label values.
const (
	resultChanged   = "changed"
	resultUnchanged = "unchanged"
	resultFailed    = "failed"
)

type Metrics struct {
	OperationsTotal   metrics.Counter
	OperationDuration metrics.Histogram
}

func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		OperationsTotal:   p.NewCounter(operationsTotalOpts),
		OperationDuration: p.NewHistogram(operationDurationOpts),
	}
}
