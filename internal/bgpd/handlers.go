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

package bgpd

import (
	"encoding/json"
	"time"

	"bgprouter/internal/ipmath"
	"bgprouter/internal/logging"
	"bgprouter/internal/neighbor"
	"bgprouter/internal/policy"
	"bgprouter/internal/proto"
	"bgprouter/internal/rib"
	"bgprouter/internal/route"
)

// handleUpdate inserts the route, journals it, re-advertises it, and
// triggers aggregation.
func (r *Router) handleUpdate(srcif string, env proto.Envelope) {
	missing, err := proto.MissingFields(env.Msg)
	if err != nil {
		r.log.Warn("dropping update with unparsable body", logging.Fields{"from": srcif, "error": err.Error()})
		r.countDropped()
		return
	}
	if len(missing) > 0 {
		r.log.Warn("dropping update with missing fields", logging.Fields{"from": srcif, "missing": missing})
		r.countDropped()
		return
	}

	var body proto.UpdateBody
	if err := json.Unmarshal(env.Msg, &body); err != nil {
		r.log.Warn("dropping update with unparsable body", logging.Fields{"from": srcif, "error": err.Error()})
		r.countDropped()
		return
	}

	rt, err := routeFromUpdate(srcif, body)
	if err != nil {
		r.log.Warn("dropping update with invalid fields", logging.Fields{"from": srcif, "error": err.Error()})
		r.countDropped()
		return
	}

	r.table.Insert(rt)
	r.journal.Append(srcif, rt)
	if r.metrics != nil {
		r.metrics.UpdatesAccepted.Inc()
	}

	r.exportUpdate(srcif, rt)
	r.aggregate()
}

// exportUpdate re-advertises an accepted route to every other neighbor
// permitted by export policy.
func (r *Router) exportUpdate(srcif string, rt route.Route) {
	fromRelation, ok := r.registry.Relation(srcif)
	if !ok {
		return
	}

	asPath := make([]int, 0, len(rt.ASPath)+1)
	asPath = append(asPath, r.asn)
	asPath = append(asPath, rt.ASPath...)

	body := proto.ExportUpdateBody{
		Network: ipmath.IntToIP(rt.Network),
		Netmask: ipmath.IntToIP(rt.Netmask),
		ASPath:  asPath,
	}

	for _, n := range r.registry.Others(srcif) {
		if !policy.ShouldExport(fromRelation, n.Relation) {
			continue
		}
		r.send(n.ID, proto.Update, body)
	}
}

// handleWithdraw propagates the withdrawal, removes the matching
// entries, and rebuilds the table from the journal.
func (r *Router) handleWithdraw(srcif string, env proto.Envelope) {
	var entries []proto.WithdrawEntry
	if err := json.Unmarshal(env.Msg, &entries); err != nil {
		r.log.Warn("dropping withdraw with unparsable body", logging.Fields{"from": srcif, "error": err.Error()})
		return
	}

	r.exportWithdraw(srcif, entries)

	for _, e := range entries {
		network, netmask, err := parsePrefix(e.Network, e.Netmask)
		if err != nil {
			r.log.Warn("skipping withdraw entry with invalid prefix", logging.Fields{"from": srcif, "error": err.Error()})
			continue
		}
		r.table.RemovePeer(rib.Key{Network: network, Netmask: netmask}, srcif)
		r.journal.RemoveMatching(srcif, network, netmask)
	}

	if r.metrics != nil {
		r.metrics.Withdrawals.Inc()
	}

	// Rebuild from the filtered journal so any prefix aggregated across
	// the withdrawn route's siblings correctly dis-aggregates.
	r.table.Rebuild(r.journal.Routes())
	r.aggregate()
}

// exportWithdraw propagates a withdrawal to every other neighbor
// permitted by export policy, preserving the entry list shape.
func (r *Router) exportWithdraw(srcif string, entries []proto.WithdrawEntry) {
	fromRelation, ok := r.registry.Relation(srcif)
	if !ok {
		return
	}

	for _, n := range r.registry.Others(srcif) {
		if !policy.ShouldExport(fromRelation, n.Relation) {
			continue
		}
		r.send(n.ID, proto.Withdraw, entries)
	}
}

// handleData performs a longest-prefix-match lookup, runs the decision
// engine, checks export policy, then forwards or replies "no route".
func (r *Router) handleData(srcif string, env proto.Envelope) {
	dstIP, err := ipmath.IPToInt(env.Dst)
	if err != nil {
		r.log.Warn("dropping data with invalid destination", logging.Fields{"from": srcif, "dst": env.Dst, "error": err.Error()})
		return
	}

	candidates := r.table.Candidates(dstIP)
	if len(candidates) == 0 {
		r.noRoute(srcif, env)
		return
	}

	best := rib.Best(candidates)

	toRelation, ok := r.registry.Relation(best.Peer)
	if !ok {
		r.noRoute(srcif, env)
		return
	}

	// An unknown source interface is not one of our registered peers,
	// providers or customers -- it is locally originated traffic (e.g.
	// from a host behind this AS). Such traffic is exported everywhere,
	// the same way routes learned from a customer are.
	fromRelation, ok := r.registry.Relation(srcif)
	if !ok {
		fromRelation = neighbor.Customer
	}

	if !policy.ShouldExport(fromRelation, toRelation) {
		r.noRoute(srcif, env)
		return
	}

	r.forward(best.Peer, env)
}

// noRoute replies to the origin interface with a "no route" message.
func (r *Router) noRoute(srcif string, env proto.Envelope) {
	if r.metrics != nil {
		r.metrics.NoRouteReplies.Inc()
	}
	r.send(srcif, proto.NoRoute, json.RawMessage(env.Msg))
}

// handleDump aggregates, then replies with the full table.
func (r *Router) handleDump(srcif string, _ proto.Envelope) {
	r.aggregate()

	routes := r.table.All()
	out := make([]proto.TableRoute, 0, len(routes))
	for _, rt := range routes {
		out = append(out, proto.TableRoute{
			Network:    ipmath.IntToIP(rt.Network),
			Netmask:    ipmath.IntToIP(rt.Netmask),
			Peer:       rt.Peer,
			LocalPref:  rt.LocalPref,
			ASPath:     rt.ASPath,
			Origin:     rt.Origin.String(),
			SelfOrigin: rt.SelfOrigin,
		})
	}

	r.send(srcif, proto.Table, out)
}

func (r *Router) aggregate() {
	rib.Aggregate(r.table)
	if r.metrics != nil {
		r.metrics.AggregationRuns.Inc()
	}
	r.refreshMetrics()
}

func (r *Router) countDropped() {
	if r.metrics != nil {
		r.metrics.UpdatesDropped.Inc()
	}
}

func routeFromUpdate(srcif string, body proto.UpdateBody) (route.Route, error) {
	network, netmask, err := parsePrefix(body.Network, body.Netmask)
	if err != nil {
		return route.Route{}, err
	}
	return route.Route{
		Network:    network,
		Netmask:    netmask,
		LocalPref:  body.LocalPref,
		ASPath:     body.ASPath,
		Origin:     route.ParseOrigin(body.Origin),
		SelfOrigin: body.SelfOrigin,
		Peer:       srcif,
		ReceivedAt: time.Now(),
	}, nil
}

func parsePrefix(network, netmask string) (uint32, uint32, error) {
	n, err := ipmath.IPToInt(network)
	if err != nil {
		return 0, 0, err
	}
	m, err := ipmath.IPToInt(netmask)
	if err != nil {
		return 0, 0, err
	}
	return n, m, nil
}
