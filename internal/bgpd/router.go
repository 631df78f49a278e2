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

// Package bgpd is the single-owner event loop: one Router value bundles
// the forwarding table, journal, neighbor registry and transport,
// touched only from the goroutine that runs Serve -- the same
// single-owner-struct-plus-background-goroutine shape as director.go's
// Director, collapsed to one goroutine since there is no separate
// health-monitoring concern here.
package bgpd

import (
	"bgprouter/internal/logging"
	"bgprouter/internal/metrics"
	"bgprouter/internal/neighbor"
	"bgprouter/internal/proto"
	"bgprouter/internal/rib"
	"bgprouter/internal/transport"
)

// Transport is the subset of *transport.Transport the router needs: a
// receive primitive, a send primitive, and an error channel -- the blind
// I/O substrate the router treats it as. Accepting the interface rather
// than the concrete type lets tests drive the dispatcher without
// opening real sockets.
type Transport interface {
	Recv() <-chan transport.Datagram
	Errors() <-chan error
	Send(neighborID string, data []byte) error
}

// Router owns every piece of mutable state touched by the I/O loop. It is
// never accessed concurrently: Serve runs the only goroutine that reads
// or writes table, journal or registry.
type Router struct {
	asn       int
	registry  *neighbor.Registry
	table     *rib.Table
	journal   *rib.Journal
	transport Transport
	log       logging.Logger
	metrics   *metrics.Collector

	die chan struct{}
}

// New builds a Router. log and collector may be nil: a nil log is
// replaced by a no-op logger, and a nil collector disables metrics
// reporting.
func New(asn int, registry *neighbor.Registry, tr Transport, log logging.Logger, collector *metrics.Collector) *Router {
	if log == nil {
		log = logging.Nil{}
	}
	return &Router{
		asn:       asn,
		registry:  registry,
		table:     rib.NewTable(),
		journal:   rib.NewJournal(),
		transport: tr,
		log:       log,
		metrics:   collector,
		die:       make(chan struct{}),
	}
}

// Handshake sends an empty handshake message to every registered
// neighbor.
func (r *Router) Handshake() {
	for _, n := range r.registry.All() {
		r.send(n.ID, proto.Handshake, nil)
	}
}

// Serve runs the main loop: read the next datagram from any neighbor,
// process it to completion, repeat. It returns when Close is called or
// the transport reports an unrecoverable error.
func (r *Router) Serve() error {
	for {
		select {
		case dg := <-r.transport.Recv():
			r.dispatch(dg.From, dg.Data)
		case err := <-r.transport.Errors():
			return err
		case <-r.die:
			return nil
		}
	}
}

// Close stops Serve at the next opportunity.
func (r *Router) Close() {
	close(r.die)
}

// send encodes and transmits body as a msgType message from our local
// address toward dst, to the given neighbor. A message the transport
// cannot send (for example to a neighbor it has no socket for) is logged
// at warn level and dropped.
func (r *Router) send(dst string, msgType string, body any) {
	local, err := neighbor.LocalAddress(dst)
	if err != nil {
		r.log.Warn("cannot derive local address", logging.Fields{"neighbor": dst, "error": err.Error()})
		return
	}

	raw, err := proto.Encode(msgType, local, dst, body)
	if err != nil {
		r.log.Error("failed to encode message", logging.Fields{"type": msgType, "dst": dst, "error": err.Error()})
		return
	}

	if err := r.transport.Send(dst, raw); err != nil {
		r.log.Warn("send failed", logging.Fields{"neighbor": dst, "error": err.Error()})
	}
}

// forward transmits env to the given neighbor's socket without rewriting
// its Src/Dst/Msg. Unlike send, which always originates a message from
// our own local address, forward carries a data message through a hop
// unchanged -- only the physical socket it leaves on differs.
func (r *Router) forward(dst string, env proto.Envelope) {
	raw, err := proto.Encode(env.Type, env.Src, env.Dst, env.Msg)
	if err != nil {
		r.log.Error("failed to encode forwarded message", logging.Fields{"dst": dst, "error": err.Error()})
		return
	}

	if err := r.transport.Send(dst, raw); err != nil {
		r.log.Warn("forward failed", logging.Fields{"neighbor": dst, "error": err.Error()})
	}
}

func (r *Router) refreshMetrics() {
	if r.metrics == nil {
		return
	}
	r.metrics.TableSize.Set(float64(r.table.Size()))
	r.metrics.JournalSize.Set(float64(r.journal.Len()))
}
