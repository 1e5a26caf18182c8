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

// Package room implements the actor for one active conversation between a
// paired customer and agent. A room owns its membership map and broadcasts
// events to members, always excluding the originator.
package room

import (
	"context"
	"log"

	"github.com/turtacn/livechat-go/pkg/actor"
	"github.com/turtacn/livechat-go/pkg/connection"
	"github.com/turtacn/livechat-go/pkg/member"
	"github.com/turtacn/livechat-go/pkg/protocol/chat"
)

// Join asks the room to insert a member and announce the join to everyone
// already present.
type Join struct {
	Conn connection.Handle
}

// Leave asks the room to remove a member and announce the departure to the
// remainder.
type Leave struct {
	Member member.Member
}

// NewMessage asks the room to broadcast a chat payload to every member
// except the sender.
type NewMessage struct {
	From    member.Member
	Payload chat.Message
}

// memberCount is the one rendezvous interaction in the system: the caller
// supplies a reply channel and blocks until the room answers.
type memberCount struct {
	reply chan<- int
}

// Room is the actor state for one conversation.
type Room struct {
	id       string
	members  map[member.Key]connection.Handle
	onClosed func(roomID string)
}

// New creates a room actor. onClosed, if non-nil, is invoked once when the
// membership drains and the room shuts down, so the owner can evict its
// registry entry.
func New(id string, onClosed func(roomID string)) *Room {
	return &Room{
		id:       id,
		members:  make(map[member.Key]connection.Handle),
		onClosed: onClosed,
	}
}

// Start runs the room's processing loop until the context is canceled or
// the membership drains after a leave.
func (r *Room) Start(ctx context.Context, mb *actor.Mailbox) error {
	for {
		msg, err := mb.Receive(ctx)
		if err != nil {
			return err
		}

		switch m := msg.(type) {
		case Join:
			r.handleJoin(m.Conn)
		case Leave:
			if r.handleLeave(m.Member) {
				return nil
			}
		case NewMessage:
			r.broadcast(connection.MessageEvent{
				RoomID:  r.id,
				From:    m.From,
				Payload: m.Payload,
			}, m.From.Key())
		case memberCount:
			m.reply <- len(r.members)
		default:
			log.Printf("Room %s received unknown message type: %T", r.id, m)
		}
	}
}

func (r *Room) handleJoin(conn connection.Handle) {
	joining := conn.Member()
	log.Printf("Member %s/%s joined room %s", joining.Role, joining.ID, r.id)
	r.members[joining.Key()] = conn

	// The joiner gets a self-join tip through the same event; the
	// broadcast below excludes it, so deliver directly first.
	conn.Deliver(connection.Joined{RoomID: r.id, Member: joining})
	r.broadcast(connection.Joined{RoomID: r.id, Member: joining}, joining.Key())
}

// handleLeave removes the member, tells the remainder, and reports whether
// the room is now empty and should shut down.
func (r *Room) handleLeave(m member.Member) bool {
	if _, ok := r.members[m.Key()]; !ok {
		return false
	}
	delete(r.members, m.Key())
	log.Printf("Member %s/%s left room %s", m.Role, m.ID, r.id)

	r.broadcast(connection.Left{RoomID: r.id, Member: m}, m.Key())

	if len(r.members) == 0 {
		log.Printf("Room %s is empty, shutting down", r.id)
		if r.onClosed != nil {
			r.onClosed(r.id)
		}
		return true
	}
	return false
}

// broadcast delivers an event to every member except those in the
// exclusion set. Delivery is best-effort; failures are logged by the
// handle and otherwise ignored.
func (r *Room) broadcast(event any, exclude ...member.Key) {
	for key, conn := range r.members {
		if excluded(key, exclude) {
			continue
		}
		conn.Deliver(event)
	}
}

func excluded(key member.Key, set []member.Key) bool {
	for _, k := range set {
		if k == key {
			return true
		}
	}
	return false
}
