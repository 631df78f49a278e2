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

package rib

import (
	"bgprouter/internal/ipmath"
	"bgprouter/internal/route"
)

// Aggregate performs the iterative pairwise merge and
// rebuilds t from the result. It runs full passes over the sorted route
// list until one pass performs no merges, so it is safe to call after
// every accepted announcement and after every journal rebuild.
//
// A merged route's Peer is inherited from the first (lower-network)
// constituent; the second constituent's peer is not retained anywhere in
// the table once merged. This loses no information because a withdrawal
// always triggers a full journal replay (internal/bgpd's handleWithdraw),
// which reconstructs every pre-merge route from scratch before
// re-aggregating.
func Aggregate(t *Table) {
	routes := t.All()

	for {
		merged, changed := aggregatePass(routes)
		routes = merged
		if !changed {
			break
		}
	}

	t.Rebuild(routes)
}

func aggregatePass(routes []route.Route) ([]route.Route, bool) {
	if len(routes) < 2 {
		return routes, false
	}

	out := make([]route.Route, 0, len(routes))
	changed := false

	i := 0
	for i < len(routes) {
		if i+1 < len(routes) && mergeable(routes[i], routes[i+1]) {
			out = append(out, merge(routes[i], routes[i+1]))
			i += 2
			changed = true
			continue
		}
		out = append(out, routes[i])
		i++
	}

	return out, changed
}

// mergeable reports whether r1 and r2 qualify for aggregation: identical
// netmasks, identical {local-pref, origin, AS-path, self-origin}, and
// numeric adjacency.
func mergeable(r1, r2 route.Route) bool {
	if r1.Netmask != r2.Netmask {
		return false
	}
	if !r1.SameAttributes(r2) {
		return false
	}
	return ipmath.Adjacent(r1.Network, r2.Network, r1.Netmask)
}

// merge combines r1 and r2 into the wider prefix, carrying r1's
// attributes and peer forward.
func merge(r1, r2 route.Route) route.Route {
	net, mask := ipmath.Merge(r1.Network, r2.Network, r1.Netmask)
	out := r1
	out.Network = net
	out.Netmask = mask
	return out
}
