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

package dispatch

import (
	"sync/atomic"

	"github.com/turtacn/livechat-go/pkg/actor"
	"github.com/turtacn/livechat-go/pkg/connection"
	"github.com/turtacn/livechat-go/pkg/member"
	"github.com/turtacn/livechat-go/pkg/protocol/chat"
)

// Handle is the cloneable reference to the dispatch manager. It is the
// only way the rest of the process talks to the manager; the manager's
// state never crosses this boundary.
type Handle struct {
	sessions *actor.Mailbox
	conns    *actor.Mailbox
	stats    *stats
}

// Mailbox returns the session mailbox, for wiring the manager into a
// supervisor spec.
func (h Handle) Mailbox() *actor.Mailbox {
	return h.sessions
}

// AnnounceConnection registers a newly authenticated connection with the
// manager. Blocks briefly when the session mailbox is at capacity.
func (h Handle) AnnounceConnection(conn connection.Handle) {
	h.sessions.Send(SessionAccepted{Conn: conn})
}

// ReportClientMessage forwards one parsed client payload to the manager
// for routing.
func (h Handle) ReportClientMessage(m member.Member, msg chat.Message) {
	h.conns.Send(ClientMessage{Member: m, Payload: msg})
}

// ReportLeave tells the manager a client's connection terminated.
func (h Handle) ReportLeave(m member.Member) {
	h.conns.Send(ClientLeave{Member: m})
}

// Snapshot is a point-in-time view of the manager's state for
// introspection surfaces.
type Snapshot struct {
	AgentsOnline     int64 `json:"agents_online"`
	CustomersWaiting int64 `json:"customers_waiting"`
	RoomsActive      int64 `json:"rooms_active"`
	MessagesRouted   int64 `json:"messages_routed"`
	MessagesDropped  int64 `json:"messages_dropped"`
}

// Stats returns the current snapshot. Safe to call from any goroutine;
// the values are published by the manager's loop.
func (h Handle) Stats() Snapshot {
	return Snapshot{
		AgentsOnline:     h.stats.agentsOnline.Load(),
		CustomersWaiting: h.stats.customersWaiting.Load(),
		RoomsActive:      h.stats.roomsActive.Load(),
		MessagesRouted:   h.stats.messagesRouted.Load(),
		MessagesDropped:  h.stats.messagesDropped.Load(),
	}
}

type stats struct {
	agentsOnline     atomic.Int64
	customersWaiting atomic.Int64
	roomsActive      atomic.Int64
	messagesRouted   atomic.Int64
	messagesDropped  atomic.Int64
}
