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

// Command bgpd is the process entrypoint: it parses the bootstrap
// arguments, opens one UDP socket per neighbor, and runs the router's
// event loop until terminated -- the same config -> transport -> session
// wiring sequence cmd/bgp.go's main() follows, generalized from one peer
// to a registry of them.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bgprouter/internal/bgpd"
	"bgprouter/internal/config"
	"bgprouter/internal/logging"
	"bgprouter/internal/metrics"
	"bgprouter/internal/neighbor"
	"bgprouter/internal/transport"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New(os.Stderr, cfg.LogLevel)

	registry := neighbor.NewRegistry(cfg.Neighbors...)

	var links []transport.Link
	for _, n := range cfg.Neighbors {
		links = append(links, transport.Link{
			NeighborID: n.ID,
			LocalAddr:  n.LocalIP,
			RemoteIP:   n.ID,
			Port:       n.Port,
		})
	}

	tr, err := transport.New(links)
	if err != nil {
		log.Error("failed to open neighbor sockets", logging.Fields{"error": err.Error()})
		os.Exit(1)
	}
	defer tr.Close()

	registerer := prometheus.NewRegistry()
	collector := metrics.NewCollector(registerer)

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, registerer, log)
	}

	router := bgpd.New(cfg.ASN, registry, tr, log, collector)
	router.Handshake()

	log.Info("router started", logging.Fields{"asn": cfg.ASN, "neighbors": len(cfg.Neighbors)})

	if err := router.Serve(); err != nil {
		log.Error("router exited", logging.Fields{"error": err.Error()})
		os.Exit(1)
	}
}

func serveMetrics(addr string, registerer *prometheus.Registry, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registerer, promhttp.HandlerOpts{}))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("metrics server stopped", logging.Fields{"addr": addr, "error": err.Error()})
	}
}
