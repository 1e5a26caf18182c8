// Copyright 2024 The livechat-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package connection

import (
	"log"
	"sync/atomic"

	"github.com/turtacn/livechat-go/pkg/actor"
	"github.com/turtacn/livechat-go/pkg/member"
	"github.com/turtacn/livechat-go/pkg/metrics"
)

// Handle is the cloneable reference other actors hold to a connection: the
// connection's identity plus a sender into its mailbox. The dispatch
// manager keeps handles in its agent pool and waiting queue; rooms keep
// them in their membership maps.
type Handle struct {
	member member.Member
	mb     *actor.Mailbox
	closed *atomic.Bool
}

// NewHandle builds a handle around a member identity and mailbox. Used
// directly by tests that need a connection endpoint without a websocket.
func NewHandle(m member.Member, mb *actor.Mailbox) Handle {
	return Handle{member: m, mb: mb, closed: &atomic.Bool{}}
}

// Member returns the identity behind this connection.
func (h Handle) Member() member.Member {
	return h.member
}

// Mailbox returns the connection's mailbox, for wiring the actor into a
// supervisor spec.
func (h Handle) Mailbox() *actor.Mailbox {
	return h.mb
}

// Closed reports whether the connection actor has terminated. The dispatch
// manager uses it to skip dead handles when popping the waiting queue or
// rotating the agent pool.
func (h Handle) Closed() bool {
	return h.closed.Load()
}

// Deliver sends an event into the connection's mailbox, best-effort.
// Events for closed connections or full mailboxes are dropped with a log
// line; delivery never blocks the caller.
func (h Handle) Deliver(event any) {
	if h.closed.Load() {
		log.Printf("Dropping event for closed connection %s/%s", h.member.Role, h.member.ID)
		metrics.MessagesDroppedTotal.Inc()
		return
	}
	if !h.mb.TrySend(event) {
		log.Printf("Mailbox full for connection %s/%s, dropping event", h.member.Role, h.member.ID)
		metrics.MessagesDroppedTotal.Inc()
	}
}

// markClosed flags the handle after the connection actor exits.
func (h Handle) markClosed() {
	h.closed.Store(true)
}
