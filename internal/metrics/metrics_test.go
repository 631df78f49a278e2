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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("unexpected error reading counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("unexpected error reading gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestNewCollectorRegistersAndStartsAtZero(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	if v := counterValue(t, c.UpdatesAccepted); v != 0 {
		t.Fatalf("expected a fresh counter to start at 0, got %v", v)
	}

	c.UpdatesAccepted.Inc()
	if v := counterValue(t, c.UpdatesAccepted); v != 1 {
		t.Fatalf("expected counter to increment to 1, got %v", v)
	}

	c.TableSize.Set(5)
	if v := gaugeValue(t, c.TableSize); v != 5 {
		t.Fatalf("expected gauge to be set to 5, got %v", v)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("unexpected error gathering metrics: %v", err)
	}
	if len(families) != 7 {
		t.Fatalf("expected all 7 metrics registered, got %d", len(families))
	}
}

func TestNewCollectorPanicsOnDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewCollector(registry)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected registering a second collector on the same registry to panic")
		}
	}()
	NewCollector(registry)
}
