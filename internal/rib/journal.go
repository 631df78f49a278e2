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

import "bgprouter/internal/route"

// JournalEntry is one accepted announcement, retained in arrival order
// so the table can be rebuilt after a withdrawal invalidates an
// aggregate.
type JournalEntry struct {
	Src   string
	Route route.Route
}

// Journal is the ordered log of accepted announcements.
type Journal struct {
	entries []JournalEntry
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Append records an accepted announcement.
func (j *Journal) Append(src string, r route.Route) {
	j.entries = append(j.entries, JournalEntry{Src: src, Route: r})
}

// RemoveMatching removes every entry whose Src equals src and whose route
// key equals (network, netmask). It reports how
// many entries were removed.
func (j *Journal) RemoveMatching(src string, network, netmask uint32) int {
	kept := j.entries[:0:0]
	removed := 0
	for _, e := range j.entries {
		if e.Src == src && e.Route.Network == network && e.Route.Netmask == netmask {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	j.entries = kept
	return removed
}

// Routes returns the route half of every journal entry, in arrival order
// -- the input to a table rebuild.
func (j *Journal) Routes() []route.Route {
	out := make([]route.Route, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e.Route)
	}
	return out
}

// Len returns the number of entries currently retained.
func (j *Journal) Len() int {
	return len(j.entries)
}
