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
	"bgprouter/internal/logging"
	"bgprouter/internal/proto"
)

// dispatch classifies one inbound datagram by its type field and routes
// it to the matching handler. Malformed JSON and
// unknown types are logged and dropped; nothing here ever panics or
// returns an error to the caller.
func (r *Router) dispatch(srcif string, data []byte) {
	env, err := proto.Decode(data)
	if err != nil {
		r.log.Warn("dropping malformed message", logging.Fields{"from": srcif, "error": err.Error()})
		return
	}

	switch env.Type {
	case proto.Update:
		r.handleUpdate(srcif, env)
	case proto.Withdraw:
		r.handleWithdraw(srcif, env)
	case proto.Data:
		r.handleData(srcif, env)
	case proto.Dump:
		r.handleDump(srcif, env)
	case proto.Handshake:
		r.log.Debug("received handshake", logging.Fields{"from": srcif})
	default:
		r.log.Warn("dropping message of unknown type", logging.Fields{"from": srcif, "type": env.Type})
	}
}
