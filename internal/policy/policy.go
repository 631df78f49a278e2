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

// Package policy implements the Gao-Rexford export filter.
package policy

import "bgprouter/internal/neighbor"

// ShouldExport reports whether a route learned with relation from should
// be re-advertised to a neighbor with relation to: true iff the route
// came from a customer, or the destination neighbor is a customer.
//
// Routes learned from peers or providers are announced only to
// customers; routes learned from customers are announced to everyone.
func ShouldExport(from, to neighbor.Relation) bool {
	return from == neighbor.Customer || to == neighbor.Customer
}
