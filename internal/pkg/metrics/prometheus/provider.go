/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package prometheus provides a metrics.Provider backed by a private
// Prometheus registry. The registry is flushed to a node exporter textfile
// at the end of a run since the tool does not live long enough to be
// scraped.
package prometheus

import (
	kitmetrics "github.com/go-kit/kit/metrics"
	kitprom "github.com/go-kit/kit/metrics/prometheus"
	"github.com/hyperledger/fabric-lib-go/common/metrics"
	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
)

type Provider struct {
	Registry *prom.Registry
}

// NewProvider returns a provider with an empty registry.
func NewProvider() *Provider {
	return &Provider{Registry: prom.NewRegistry()}
}

func (p *Provider) NewCounter(o metrics.CounterOpts) metrics.Counter {
	cv := prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      o.Help,
		},
		o.LabelNames,
	)
	p.Registry.MustRegister(cv)
	return &Counter{Counter: kitprom.NewCounter(cv)}
}

func (p *Provider) NewGauge(o metrics.GaugeOpts) metrics.Gauge {
	gv := prom.NewGaugeVec(
		prom.GaugeOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      o.Help,
		},
		o.LabelNames,
	)
	p.Registry.MustRegister(gv)
	return &Gauge{Gauge: kitprom.NewGauge(gv)}
}

func (p *Provider) NewHistogram(o metrics.HistogramOpts) metrics.Histogram {
	hv := prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      o.Help,
			Buckets:   o.Buckets,
		},
		o.LabelNames,
	)
	p.Registry.MustRegister(hv)
	return &Histogram{Histogram: kitprom.NewHistogram(hv)}
}

// WriteTextfile writes every metric of the registry to path in the text
// exposition format. The file is replaced atomically.
func (p *Provider) WriteTextfile(path string) error {
	return errors.Wrapf(prom.WriteToTextfile(path, p.Registry), "failed to write metrics to %s", path)
}

type Counter struct{ kitmetrics.Counter }

func (c *Counter) With(labelValues ...string) metrics.Counter {
	return &Counter{Counter: c.Counter.With(labelValues...)}
}

type Gauge struct{ kitmetrics.Gauge }

func (g *Gauge) With(labelValues ...string) metrics.Gauge {
	return &Gauge{Gauge: g.Gauge.With(labelValues...)}
}

type Histogram struct{ kitmetrics.Histogram }

func (h *Histogram) With(labelValues ...string) metrics.Histogram {
	return &Histogram{Histogram: h.Histogram.With(labelValues...)}
}
