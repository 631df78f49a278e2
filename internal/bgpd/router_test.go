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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"bgprouter/internal/neighbor"
	"bgprouter/internal/proto"
	"bgprouter/internal/transport"
)

// fakeTransport records every outbound send in memory, keyed by
// destination neighbor, so tests can assert on what the router would
// have put on the wire without opening real sockets.
type fakeTransport struct {
	mu   sync.Mutex
	sent map[string][]proto.Envelope

	recv chan transport.Datagram
	errs chan error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		sent: make(map[string][]proto.Envelope),
		recv: make(chan transport.Datagram),
		errs: make(chan error),
	}
}

func (f *fakeTransport) Recv() <-chan transport.Datagram { return f.recv }
func (f *fakeTransport) Errors() <-chan error             { return f.errs }

func (f *fakeTransport) Send(neighborID string, data []byte) error {
	env, err := proto.Decode(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[neighborID] = append(f.sent[neighborID], env)
	return nil
}

func (f *fakeTransport) last(neighborID string) (proto.Envelope, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.sent[neighborID]
	if len(msgs) == 0 {
		return proto.Envelope{}, false
	}
	return msgs[len(msgs)-1], true
}

func (f *fakeTransport) count(neighborID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent[neighborID])
}

const (
	asCustomer = "192.0.2.2"
	bsPeer     = "198.51.100.2"
)

func newTestRouter() (*Router, *fakeTransport) {
	registry := neighbor.NewRegistry(
		neighbor.Neighbor{ID: asCustomer, LocalIP: "192.0.2.1", Port: 7001, Relation: neighbor.Customer},
		neighbor.Neighbor{ID: bsPeer, LocalIP: "198.51.100.1", Port: 7002, Relation: neighbor.Peer},
	)
	ft := newFakeTransport()
	return New(1, registry, ft, nil, nil), ft
}

func encodeUpdate(t *testing.T, src, dst string, body proto.UpdateBody) []byte {
	t.Helper()
	raw, err := proto.Encode(proto.Update, src, dst, body)
	if err != nil {
		t.Fatalf("unexpected error encoding update: %v", err)
	}
	return raw
}

// Scenario 1: basic propagation with AS-path prepend and attribute stripping.
func TestBasicPropagation(t *testing.T) {
	r, ft := newTestRouter()

	raw := encodeUpdate(t, asCustomer, "192.0.2.1", proto.UpdateBody{
		Network: "10.0.0.0", Netmask: "255.255.0.0",
		LocalPref: 100, ASPath: []int{}, Origin: "IGP", SelfOrigin: true,
	})
	r.dispatch(asCustomer, raw)

	env, ok := ft.last(bsPeer)
	if !ok {
		t.Fatalf("expected B to receive a propagated update")
	}
	if env.Type != proto.Update {
		t.Fatalf("expected update type, got %q", env.Type)
	}

	var body proto.ExportUpdateBody
	require.NoError(t, json.Unmarshal(env.Msg, &body))
	require.Equal(t, []int{1}, body.ASPath)
	require.Equal(t, "10.0.0.0", body.Network)
	require.Equal(t, "255.255.0.0", body.Netmask)

	var raw2 map[string]any
	json.Unmarshal(env.Msg, &raw2)
	for _, private := range []string{"localpref", "origin", "selfOrigin"} {
		if _, present := raw2[private]; present {
			t.Fatalf("expected propagated update to omit %q", private)
		}
	}
}

// Scenario 2: peer-to-peer announcements are not exported.
func TestPeerToPeerNotExported(t *testing.T) {
	registry := neighbor.NewRegistry(
		neighbor.Neighbor{ID: "192.0.2.2", LocalIP: "192.0.2.1", Port: 7001, Relation: neighbor.Peer},
		neighbor.Neighbor{ID: "198.51.100.2", LocalIP: "198.51.100.1", Port: 7002, Relation: neighbor.Peer},
	)
	ft := newFakeTransport()
	r := New(1, registry, ft, nil, nil)

	raw := encodeUpdate(t, "192.0.2.2", "192.0.2.1", proto.UpdateBody{
		Network: "10.0.0.0", Netmask: "255.255.0.0",
		LocalPref: 100, ASPath: []int{}, Origin: "IGP", SelfOrigin: true,
	})
	r.dispatch("192.0.2.2", raw)

	if ft.count("198.51.100.2") != 0 {
		t.Fatalf("expected no propagation between two peers")
	}
}

func sendData(t *testing.T, r *Router, srcif, src, dst string) {
	t.Helper()
	raw, err := proto.Encode(proto.Data, src, dst, json.RawMessage(`"payload"`))
	if err != nil {
		t.Fatalf("unexpected error encoding data: %v", err)
	}
	r.dispatch(srcif, raw)
}

// Scenario 3: longest prefix match.
func TestLongestPrefixMatchForwarding(t *testing.T) {
	r, ft := newTestRouter()

	r.dispatch(asCustomer, encodeUpdate(t, asCustomer, "192.0.2.1", proto.UpdateBody{
		Network: "10.0.0.0", Netmask: "255.0.0.0", LocalPref: 100, ASPath: []int{}, Origin: "IGP",
	}))
	r.dispatch(bsPeer, encodeUpdate(t, bsPeer, "198.51.100.1", proto.UpdateBody{
		Network: "10.1.0.0", Netmask: "255.255.0.0", LocalPref: 100, ASPath: []int{}, Origin: "IGP",
	}))

	sendData(t, r, "203.0.113.1", "203.0.113.1", "10.1.2.3")

	if env, ok := ft.last(bsPeer); !ok || env.Type != proto.Data {
		t.Fatalf("expected data to be forwarded to the more specific route's peer")
	}
}

// Scenario 4: local-pref tie-break.
func TestLocalPrefTiebreakForwarding(t *testing.T) {
	r, ft := newTestRouter()

	r.dispatch(asCustomer, encodeUpdate(t, asCustomer, "192.0.2.1", proto.UpdateBody{
		Network: "10.0.0.0", Netmask: "255.255.255.0", LocalPref: 100, ASPath: []int{}, Origin: "IGP",
	}))
	r.dispatch(bsPeer, encodeUpdate(t, bsPeer, "198.51.100.1", proto.UpdateBody{
		Network: "10.0.0.0", Netmask: "255.255.255.0", LocalPref: 200, ASPath: []int{}, Origin: "IGP",
	}))

	sendData(t, r, "203.0.113.1", "203.0.113.1", "10.0.0.5")

	if env, ok := ft.last(bsPeer); !ok || env.Type != proto.Data {
		t.Fatalf("expected data to route via the higher local-pref peer")
	}
}

// Scenario 5 & 7: aggregation and dump.
func TestAggregationAndDump(t *testing.T) {
	r, ft := newTestRouter()

	r.dispatch(asCustomer, encodeUpdate(t, asCustomer, "192.0.2.1", proto.UpdateBody{
		Network: "192.168.0.0", Netmask: "255.255.255.0", LocalPref: 100, ASPath: []int{}, Origin: "IGP",
	}))
	r.dispatch(asCustomer, encodeUpdate(t, asCustomer, "192.0.2.1", proto.UpdateBody{
		Network: "192.168.1.0", Netmask: "255.255.255.0", LocalPref: 100, ASPath: []int{}, Origin: "IGP",
	}))

	if r.table.Size() != 1 {
		t.Fatalf("expected aggregation to leave a single table entry, got %d", r.table.Size())
	}

	raw, err := proto.Encode(proto.Dump, "203.0.113.1", "203.0.113.254", nil)
	if err != nil {
		t.Fatalf("unexpected error encoding dump: %v", err)
	}
	r.dispatch("203.0.113.254", raw)

	env, ok := ft.last("203.0.113.254")
	if !ok {
		t.Fatalf("expected a table reply")
	}
	if env.Type != proto.Table {
		t.Fatalf("expected table type, got %q", env.Type)
	}

	var routes []proto.TableRoute
	require.NoError(t, json.Unmarshal(env.Msg, &routes))
	require.Len(t, routes, 1)
	require.Equal(t, "192.168.0.0", routes[0].Network)
	require.Equal(t, "255.255.254.0", routes[0].Netmask)
}

// Scenario 6: disaggregation on withdrawal.
func TestDisaggregationOnWithdrawal(t *testing.T) {
	r, _ := newTestRouter()

	r.dispatch(asCustomer, encodeUpdate(t, asCustomer, "192.0.2.1", proto.UpdateBody{
		Network: "192.168.0.0", Netmask: "255.255.255.0", LocalPref: 100, ASPath: []int{}, Origin: "IGP",
	}))
	r.dispatch(asCustomer, encodeUpdate(t, asCustomer, "192.0.2.1", proto.UpdateBody{
		Network: "192.168.1.0", Netmask: "255.255.255.0", LocalPref: 100, ASPath: []int{}, Origin: "IGP",
	}))
	if r.table.Size() != 1 {
		t.Fatalf("expected the two updates to aggregate first")
	}

	withdraw, err := proto.Encode(proto.Withdraw, asCustomer, "192.0.2.1", []proto.WithdrawEntry{
		{Network: "192.168.1.0", Netmask: "255.255.255.0"},
	})
	if err != nil {
		t.Fatalf("unexpected error encoding withdraw: %v", err)
	}
	r.dispatch(asCustomer, withdraw)

	require.Equal(t, 1, r.table.Size(), "expected exactly one surviving entry after withdrawal")
	all := r.table.All()
	require.Equal(t, uint8(24), all[0].PrefixLength(), "expected the surviving entry to be disaggregated back to /24")

	ft := r.transport.(*fakeTransport)
	ft.mu.Lock()
	ft.sent[asCustomer] = nil
	ft.mu.Unlock()

	sendData(t, r, "203.0.113.1", "203.0.113.1", "192.168.1.5")

	env, ok := ft.last("203.0.113.1")
	if !ok {
		t.Fatalf("expected a reply for the withdrawn destination")
	}
	if env.Type != proto.NoRoute {
		t.Fatalf("expected a no-route reply, got %q", env.Type)
	}
}
