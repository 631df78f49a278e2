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

// Package rib implements the forwarding table, update journal, decision
// engine, and prefix aggregator.
package rib

import (
	"sort"

	"bgprouter/internal/ipmath"
	"bgprouter/internal/route"
)

// Key identifies a forwarding-table entry by (network, netmask).
type Key struct {
	Network uint32
	Netmask uint32
}

// Table is the forwarding table: a (network, netmask) keyed map of
// candidate routes.
type Table struct {
	entries map[Key][]route.Route
}

// NewTable returns an empty forwarding table.
func NewTable() *Table {
	return &Table{entries: make(map[Key][]route.Route)}
}

// Insert adds or replaces r under its (Network, Netmask) key. A route
// already present from the same peer is overwritten.
func (t *Table) Insert(r route.Route) {
	key := Key{Network: r.Network, Netmask: r.Netmask}
	routes := t.entries[key]

	for i, existing := range routes {
		if existing.Peer == r.Peer {
			routes[i] = r
			t.entries[key] = routes
			return
		}
	}

	t.entries[key] = append(routes, r)
}

// RemovePeer removes the route learned from peer under key, if any. It
// reports whether a route was removed.
func (t *Table) RemovePeer(key Key, peer string) bool {
	routes, ok := t.entries[key]
	if !ok {
		return false
	}

	for i, r := range routes {
		if r.Peer != peer {
			continue
		}
		routes = append(routes[:i], routes[i+1:]...)
		if len(routes) == 0 {
			delete(t.entries, key)
		} else {
			t.entries[key] = routes
		}
		return true
	}
	return false
}

// Candidates returns every route whose (network, netmask) key matches ip,
// across all keys in the table -- longest prefix match is resolved later,
// by the decision engine, over this candidate set.
func (t *Table) Candidates(ip uint32) []route.Route {
	var out []route.Route
	for key, routes := range t.entries {
		if ipmath.InNetwork(ip, key.Network, key.Netmask) {
			out = append(out, routes...)
		}
	}
	return out
}

// All flattens the table into a single slice of routes, sorted by
// network ascending -- the order the aggregator requires.
func (t *Table) All() []route.Route {
	out := make([]route.Route, 0)
	for _, routes := range t.entries {
		out = append(out, routes...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Network < out[j].Network })
	return out
}

// Keys returns every key currently populated in the table.
func (t *Table) Keys() []Key {
	out := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	return out
}

// Rebuild replaces the table contents with routes, re-keying each by its
// own (Network, Netmask). Used both by the aggregator (§4.6 step 5) and
// by journal replay after a withdrawal (§4.4 step 3).
func (t *Table) Rebuild(routes []route.Route) {
	t.entries = make(map[Key][]route.Route, len(routes))
	for _, r := range routes {
		t.Insert(r)
	}
}

// Size returns the number of distinct (network, netmask) keys.
func (t *Table) Size() int {
	return len(t.entries)
}
