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

// Package config turns the process bootstrap arguments -- one ASN
// followed by one or more PORT-NEIGHBOR_IP-RELATION descriptors --
// into a validated, defaulted Config, the way cmd/bgp.go's
// parseCommandLineArguments builds a bgp.Parameters from flag.Args().
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"bgprouter/internal/neighbor"
)

// NeighborSpec is one parsed PORT-NEIGHBOR_IP-RELATION descriptor, before
// it is resolved into a neighbor.Neighbor (which additionally needs the
// derived local address).
type NeighborSpec struct {
	Port     int    `validate:"gte=1,lte=65535"`
	IP       string `validate:"required,ip4_addr"`
	Relation string `validate:"required,oneof=cust peer prov"`
}

// Config is the fully resolved bootstrap configuration.
type Config struct {
	ASN       int                 `validate:"gte=0,lte=65535"`
	Neighbors []neighbor.Neighbor `validate:"required,min=1,dive"`

	LogLevel    string `default:"info" validate:"oneof=debug info warn error"`
	MetricsAddr string
}

// Parse builds a Config from the process's arguments (i.e. os.Args[1:]):
// an optional -metrics-addr flag, the way davidcoles-cue's
// parseCommandLineArguments hangs options off flag.Bool/flag.String
// ahead of its positional router ID/peer arguments, followed by the
// positional ASN and one or more neighbor descriptors. Metrics stay off
// by default -- MetricsAddr is empty unless -metrics-addr is given.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bgpd", flag.ContinueOnError)
	metricsAddr := fs.String("metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	positional := fs.Args()
	if len(positional) < 2 {
		return nil, fmt.Errorf("config: usage: [-metrics-addr host:port] <asn> <port-neighborip-relation>...")
	}

	asn, err := strconv.Atoi(positional[0])
	if err != nil {
		return nil, fmt.Errorf("config: invalid ASN %q: %w", positional[0], err)
	}

	cfg := &Config{ASN: asn, MetricsAddr: *metricsAddr}

	for _, desc := range positional[1:] {
		spec, err := parseDescriptor(desc)
		if err != nil {
			return nil, err
		}

		relation, err := neighbor.ParseRelation(spec.Relation)
		if err != nil {
			return nil, fmt.Errorf("config: descriptor %q: %w", desc, err)
		}

		localIP, err := neighbor.LocalAddress(spec.IP)
		if err != nil {
			return nil, fmt.Errorf("config: descriptor %q: %w", desc, err)
		}

		n := neighbor.Neighbor{
			ID:       spec.IP,
			LocalIP:  localIP,
			Port:     spec.Port,
			Relation: relation,
		}
		cfg.Neighbors = append(cfg.Neighbors, n)
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config: applying defaults: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// parseDescriptor splits a PORT-NEIGHBOR_IP-RELATION descriptor. The IP
// itself never contains a hyphen, so a plain three-way split suffices.
func parseDescriptor(desc string) (NeighborSpec, error) {
	parts := strings.Split(desc, "-")
	if len(parts) != 3 {
		return NeighborSpec{}, fmt.Errorf("config: malformed neighbor descriptor %q, want PORT-IP-RELATION", desc)
	}

	port, err := strconv.Atoi(parts[0])
	if err != nil {
		return NeighborSpec{}, fmt.Errorf("config: invalid port in descriptor %q: %w", desc, err)
	}

	spec := NeighborSpec{Port: port, IP: parts[1], Relation: parts[2]}
	if err := validateStruct(&spec); err != nil {
		return NeighborSpec{}, fmt.Errorf("config: descriptor %q: %w", desc, err)
	}
	return spec, nil
}

var validatorInstance = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("ip4_addr", func(fl validator.FieldLevel) bool {
		parts := strings.Split(fl.Field().String(), ".")
		if len(parts) != 4 {
			return false
		}
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 || n > 255 {
				return false
			}
		}
		return true
	})
	return v
}

func validateStruct(spec *NeighborSpec) error {
	return validatorInstance.Struct(spec)
}

func validate(cfg *Config) error {
	return validatorInstance.Struct(cfg)
}
