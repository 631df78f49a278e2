/*
 * bgprouter - a simplified path-vector routing daemon
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 */

// Package metrics exposes operator-facing Prometheus counters and gauges
// for the router. None of this package participates in the routing path
// itself (the router's single-threaded invariant is unaffected): handlers
// call the Inc/Set methods inline, and a separate goroutine
// (started by cmd/bgpd, not by this package) serves /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector bundles the counters and gauges a Router reports.
type Collector struct {
	UpdatesAccepted  prometheus.Counter
	UpdatesDropped   prometheus.Counter
	Withdrawals      prometheus.Counter
	AggregationRuns  prometheus.Counter
	NoRouteReplies   prometheus.Counter
	TableSize        prometheus.Gauge
	JournalSize      prometheus.Gauge
}

// NewCollector builds and registers a Collector against registry. Passing
// a fresh prometheus.NewRegistry() keeps tests isolated from the global
// default registry.
func NewCollector(registry prometheus.Registerer) *Collector {
	c := &Collector{
		UpdatesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bgprouter_updates_accepted_total",
			Help: "Number of update messages accepted into the forwarding table.",
		}),
		UpdatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bgprouter_updates_dropped_total",
			Help: "Number of update messages dropped for malformed or missing fields.",
		}),
		Withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bgprouter_withdrawals_total",
			Help: "Number of withdraw messages processed.",
		}),
		AggregationRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bgprouter_aggregation_runs_total",
			Help: "Number of times the prefix aggregator has run.",
		}),
		NoRouteReplies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bgprouter_no_route_total",
			Help: "Number of \"no route\" replies sent for data packets.",
		}),
		TableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bgprouter_table_size",
			Help: "Current number of distinct (network, netmask) keys in the forwarding table.",
		}),
		JournalSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bgprouter_journal_size",
			Help: "Current number of retained update-journal entries.",
		}),
	}

	registry.MustRegister(
		c.UpdatesAccepted, c.UpdatesDropped, c.Withdrawals,
		c.AggregationRuns, c.NoRouteReplies, c.TableSize, c.JournalSize,
	)

	return c
}
