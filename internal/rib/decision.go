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

// Best applies the five-level tie-break to a non-empty
// set of candidate routes and returns the single winner. Best never
// returns a tie: the final level (lowest next-hop IP) is a deterministic
// discriminator over any remaining candidates.
func Best(candidates []route.Route) route.Route {
	best := candidates[0]
	for _, r := range candidates[1:] {
		if better(r, best) {
			best = r
		}
	}
	return best
}

// better reports whether a beats b under the decision process.
func better(a, b route.Route) bool {
	// 1. Longest prefix match: higher prefix length wins.
	if al, bl := a.PrefixLength(), b.PrefixLength(); al != bl {
		return al > bl
	}

	// 2. Local preference: higher wins.
	if a.LocalPref != b.LocalPref {
		return a.LocalPref > b.LocalPref
	}

	// 3. Self-origin: self-originated wins over non-self.
	if a.SelfOrigin != b.SelfOrigin {
		return a.SelfOrigin
	}

	// 4. AS-path length: shorter wins.
	if len(a.ASPath) != len(b.ASPath) {
		return len(a.ASPath) < len(b.ASPath)
	}

	// 5. Origin: IGP < EGP < UNK.
	if a.Origin != b.Origin {
		return a.Origin < b.Origin
	}

	// 6. Next-hop IP: lower numeric address wins. Peer is a dotted-quad
	// identifier; an unparseable peer sorts last so the comparison still
	// terminates deterministically.
	an, aerr := ipmath.IPToInt(a.Peer)
	bn, berr := ipmath.IPToInt(b.Peer)
	if aerr != nil {
		return false
	}
	if berr != nil {
		return true
	}
	return an < bn
}
