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
	"testing"

	"bgprouter/internal/route"
)

func TestJournalRemoveMatching(t *testing.T) {
	j := NewJournal()
	net := mustIP(t, "192.168.0.0")
	mask := mustIP(t, "255.255.255.0")

	j.Append("192.0.2.2", route.Route{Network: net, Netmask: mask, Peer: "192.0.2.2"})
	j.Append("192.0.2.2", route.Route{Network: mustIP(t, "192.168.1.0"), Netmask: mask, Peer: "192.0.2.2"})
	j.Append("198.51.100.2", route.Route{Network: net, Netmask: mask, Peer: "198.51.100.2"})

	removed := j.RemoveMatching("192.0.2.2", net, mask)
	if removed != 1 {
		t.Fatalf("expected one matching entry removed, got %d", removed)
	}
	if j.Len() != 2 {
		t.Fatalf("expected two entries remaining, got %d", j.Len())
	}
}

func TestJournalRoutesPreservesArrivalOrder(t *testing.T) {
	j := NewJournal()
	j.Append("A", route.Route{Network: 1})
	j.Append("B", route.Route{Network: 2})
	j.Append("C", route.Route{Network: 3})

	routes := j.Routes()
	if len(routes) != 3 || routes[0].Network != 1 || routes[2].Network != 3 {
		t.Fatalf("expected arrival order preserved, got %+v", routes)
	}
}
