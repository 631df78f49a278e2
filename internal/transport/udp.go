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

// Package transport is the UDP-over-localhost substrate: one JSON object
// per datagram, one socket per neighbor interface. A single reader
// goroutine per socket feeds a shared channel, since a datagram either
// arrives whole or not at all -- there is no framing to maintain across
// partial reads.
package transport

import (
	"fmt"
	"net"
)

// Datagram is one received message, tagged with the neighbor it arrived
// from so the dispatcher can classify it without re-resolving addresses.
type Datagram struct {
	From string // neighbor ID
	Data []byte
}

// maxDatagram bounds a single read; wire messages are small JSON
// objects and never approach this.
const maxDatagram = 64 * 1024

// Socket owns one neighbor's UDP endpoint: bound locally for receiving,
// and able to send to the neighbor's known remote address.
type Socket struct {
	neighborID string
	conn       *net.UDPConn
	remote     *net.UDPAddr
}

// Transport multiplexes every neighbor socket's incoming datagrams onto a
// single channel, mirroring the single I/O-loop-goroutine model the
// router requires: it never blocks on one neighbor while another has
// data waiting.
type Transport struct {
	sockets []*Socket
	in      chan Datagram
	errs    chan error
}

// New opens one UDP socket per Link, bound to LocalAddr:Port and sending
// to RemoteIP:Port. LocalAddr is the simulated "our side" of the
// point-to-point link (the a.b.c.1 addressing convention); RemoteIP is
// the neighbor's address, reached on the same port the socket binds.
func New(links []Link) (*Transport, error) {
	t := &Transport{
		in:   make(chan Datagram, 64),
		errs: make(chan error, 64),
	}

	for _, link := range links {
		local, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", link.LocalAddr, link.Port))
		if err != nil {
			return nil, fmt.Errorf("transport: resolving local address for %s: %w", link.NeighborID, err)
		}
		remote, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", link.RemoteIP, link.Port))
		if err != nil {
			return nil, fmt.Errorf("transport: resolving remote address for %s: %w", link.NeighborID, err)
		}

		conn, err := net.ListenUDP("udp4", local)
		if err != nil {
			return nil, fmt.Errorf("transport: binding socket for %s: %w", link.NeighborID, err)
		}

		s := &Socket{neighborID: link.NeighborID, conn: conn, remote: remote}
		t.sockets = append(t.sockets, s)
		go t.read(s)
	}

	return t, nil
}

// Link describes one neighbor's point-to-point endpoint.
type Link struct {
	NeighborID string
	LocalAddr  string
	RemoteIP   string
	Port       int
}

func (t *Transport) read(s *Socket) {
	buf := make([]byte, maxDatagram)
	for {
		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			t.errs <- fmt.Errorf("transport: reading from %s: %w", s.neighborID, err)
			return
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		t.in <- Datagram{From: s.neighborID, Data: data}
	}
}

// Recv returns the channel of inbound datagrams from every neighbor.
func (t *Transport) Recv() <-chan Datagram {
	return t.in
}

// Errors returns the channel of unrecoverable per-socket read errors.
func (t *Transport) Errors() <-chan error {
	return t.errs
}

// Send writes data to neighborID's remote address. Returns an error if
// neighborID names no known socket.
func (t *Transport) Send(neighborID string, data []byte) error {
	s := t.socket(neighborID)
	if s == nil {
		return fmt.Errorf("transport: unknown neighbor %q", neighborID)
	}
	_, err := s.conn.WriteToUDP(data, s.remote)
	return err
}

func (t *Transport) socket(neighborID string) *Socket {
	for _, s := range t.sockets {
		if s.neighborID == neighborID {
			return s
		}
	}
	return nil
}

// Close shuts down every neighbor socket.
func (t *Transport) Close() error {
	var firstErr error
	for _, s := range t.sockets {
		if err := s.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
