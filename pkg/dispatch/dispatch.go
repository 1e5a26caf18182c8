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

// Package dispatch implements the singleton manager actor that pairs
// waiting customers with available agents. It owns the agent pool, the
// waiting-customer queue, and the room registry; all three are mutated
// only from the manager's own processing loop.
package dispatch

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/turtacn/livechat-go/pkg/actor"
	"github.com/turtacn/livechat-go/pkg/connection"
	"github.com/turtacn/livechat-go/pkg/member"
	"github.com/turtacn/livechat-go/pkg/metrics"
	"github.com/turtacn/livechat-go/pkg/pool"
	"github.com/turtacn/livechat-go/pkg/protocol/chat"
	"github.com/turtacn/livechat-go/pkg/room"
	"github.com/turtacn/livechat-go/pkg/storage"
	"github.com/turtacn/livechat-go/pkg/supervisor"
)

// RoomIDSeparator joins the customer and agent ids into a room id.
const RoomIDSeparator = "-"

// Options tunes the manager. Zero values fall back to the defaults used
// in production.
type Options struct {
	// RematchInterval is the period of the waiting-queue re-matching
	// pass. Defaults to 10 seconds.
	RematchInterval time.Duration
	// MailboxSize is the capacity of the manager's and each room's
	// mailbox. Defaults to 100.
	MailboxSize int
	// WaitingQueueSize is the capacity of the waiting-customer queue.
	// Defaults to 100.
	WaitingQueueSize int
}

func (o Options) withDefaults() Options {
	if o.RematchInterval <= 0 {
		o.RematchInterval = 10 * time.Second
	}
	if o.MailboxSize <= 0 {
		o.MailboxSize = 100
	}
	if o.WaitingQueueSize <= 0 {
		o.WaitingQueueSize = 100
	}
	return o
}

// Manager is the dispatch actor's private state.
type Manager struct {
	opts Options
	sup  supervisor.Supervisor

	agents  *pool.Cursor[connection.Handle]
	waiting *pool.Queue[connection.Handle]
	rooms   storage.Store
	// memberRooms indexes the rooms each member currently belongs to.
	// An agent serves one room per paired customer, so this is a set,
	// not a single id.
	memberRooms map[member.Key]map[string]struct{}

	conns  *actor.Mailbox
	handle Handle

	// ctx is the context rooms are spawned under; set once in Start.
	ctx context.Context
}

// New creates the dispatch manager and its handle. The supervisor is used
// to spawn room actors as temporary children.
func New(sup supervisor.Supervisor, opts Options) (*Manager, Handle) {
	opts = opts.withDefaults()
	h := Handle{
		sessions: actor.NewMailbox(opts.MailboxSize),
		conns:    actor.NewMailbox(opts.MailboxSize),
		stats:    &stats{},
	}
	m := &Manager{
		opts:        opts,
		sup:         sup,
		agents:      pool.NewCursor[connection.Handle](nil),
		waiting:     pool.NewQueue[connection.Handle](opts.WaitingQueueSize),
		rooms:       storage.NewMemStore(),
		memberRooms: make(map[member.Key]map[string]struct{}),
		conns:       h.conns,
		handle:      h,
	}
	return m, h
}

// Start runs the manager's processing loop. It waits, without priority
// ordering, on the re-matching ticker, the session mailbox, and the
// client-event mailbox, and runs until the context is canceled.
func (m *Manager) Start(ctx context.Context, mb *actor.Mailbox) error {
	m.ctx = ctx
	ticker := time.NewTicker(m.opts.RematchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			m.autoDispatch()

		case msg := <-mb.Chan():
			m.handleSessionMessage(msg)

		case msg := <-m.conns.Chan():
			m.handleClientEvent(msg)
		}
	}
}

func (m *Manager) handleSessionMessage(msg any) {
	switch s := msg.(type) {
	case SessionAccepted:
		m.addSession(s.Conn)
	default:
		log.Printf("Dispatch received unknown session message type: %T", s)
	}
}

func (m *Manager) handleClientEvent(msg any) {
	switch e := msg.(type) {
	case ClientMessage:
		m.routeMessage(e.Member, e.Payload)
	case ClientLeave:
		m.handleLeave(e.Member)
	case roomClosed:
		m.handleRoomClosed(e.roomID)
	default:
		log.Printf("Dispatch received unknown client event type: %T", e)
	}
}

// addSession registers a newly accepted connection: agents go into the
// round-robin pool, customers get dispatched.
func (m *Manager) addSession(conn connection.Handle) {
	id := conn.Member()
	if id.IsCustomerService() {
		key := id.Key()
		if m.agents.Contains(func(h connection.Handle) bool { return h.Member().Key() == key }) {
			log.Printf("Agent %s already announced, ignoring", id.ID)
			return
		}
		m.agents.Push(conn)
		m.publishStats()
		log.Printf("Agent %s online (%d total)", id.ID, m.agents.Len())
		return
	}
	m.dispatch(conn)
}

// dispatch pairs a customer with the next agent, or enqueues the customer
// when no agent is free.
func (m *Manager) dispatch(customer connection.Handle) {
	id := customer.Member()
	if id.IsCustomerService() {
		log.Printf("Refusing to dispatch customer-service connection %s", id.ID)
		return
	}

	agent, ok := m.nextAgent()
	if !ok {
		log.Printf("No agent online, customer %s goes to the waiting queue", id.ID)
		if !m.waiting.TryPush(customer) {
			log.Printf("Waiting queue full, rejecting customer %s", id.ID)
			customer.Deliver(connection.Notice{Payload: chat.QueueFull()})
			return
		}
		m.publishStats()
		return
	}

	m.createRoom(customer, agent)
}

// nextAgent pops the next live agent via round-robin, pruning handles
// whose connections have terminated.
func (m *Manager) nextAgent() (connection.Handle, bool) {
	for {
		agent, ok := m.agents.Next()
		if !ok {
			return connection.Handle{}, false
		}
		if !agent.Closed() {
			return agent, true
		}
		key := agent.Member().Key()
		m.agents.Remove(func(h connection.Handle) bool { return h.Member().Key() == key })
		m.publishStats()
		log.Printf("Pruned disconnected agent %s from the pool", agent.Member().ID)
	}
}

// createRoom derives the room id, spawns the room actor, registers it, and
// joins both parties. The agent joins first so it receives the join
// notification about the customer.
func (m *Manager) createRoom(customer, agent connection.Handle) {
	roomID := customer.Member().ID + RoomIDSeparator + agent.Member().ID

	mb := actor.NewMailbox(m.opts.MailboxSize)
	r := room.New(roomID, m.notifyRoomClosed)
	m.sup.StartChild(m.ctx, supervisor.Spec{
		ID:      "room-" + roomID,
		Actor:   r,
		Restart: supervisor.RestartTemporary,
		Mailbox: mb,
	})

	rh := room.NewHandle(roomID, mb)
	m.rooms.Set(roomID, rh)
	m.indexMemberRoom(customer.Member().Key(), roomID)
	m.indexMemberRoom(agent.Member().Key(), roomID)

	rh.OnJoin(agent)
	rh.OnJoin(customer)

	m.publishStats()
	log.Printf("Created room %s for customer %s and agent %s", roomID, customer.Member().ID, agent.Member().ID)
}

// routeMessage forwards a client payload to the room it addresses.
// Messages for unknown rooms are dropped; that is normal (stale client
// state), not a defect.
func (m *Manager) routeMessage(from member.Member, payload chat.Message) {
	value, err := m.rooms.Get(payload.RoomID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Room registry lookup for %q failed: %v", payload.RoomID, err)
		}
		metrics.MessagesDroppedTotal.Inc()
		m.handle.stats.messagesDropped.Add(1)
		return
	}
	rh := value.(room.Handle)
	rh.OnNewMessage(from, payload)
	metrics.MessagesRoutedTotal.Inc()
	m.handle.stats.messagesRouted.Add(1)
}

// handleLeave releases whatever the departed member held: its agent pool
// slot and its room membership.
func (m *Manager) handleLeave(id member.Member) {
	log.Printf("Member %s/%s left", id.Role, id.ID)

	if id.IsCustomerService() {
		key := id.Key()
		if m.agents.Remove(func(h connection.Handle) bool { return h.Member().Key() == key }) {
			m.publishStats()
		}
	}

	// The departed member leaves every room it belongs to: an agent may
	// serve several rooms at once.
	if roomIDs, ok := m.memberRooms[id.Key()]; ok {
		delete(m.memberRooms, id.Key())
		for roomID := range roomIDs {
			if value, err := m.rooms.Get(roomID); err == nil {
				value.(room.Handle).OnLeave(id)
			}
		}
	}
}

func (m *Manager) indexMemberRoom(key member.Key, roomID string) {
	if m.memberRooms[key] == nil {
		m.memberRooms[key] = make(map[string]struct{})
	}
	m.memberRooms[key][roomID] = struct{}{}
}

// notifyRoomClosed runs on the room's goroutine while the manager may be
// blocked sending into that same room's mailbox, so it must never block
// in return. A dropped notice leaks one registry entry until restart,
// which beats deadlocking both loops.
func (m *Manager) notifyRoomClosed(roomID string) {
	if !m.conns.TrySend(roomClosed{roomID: roomID}) {
		log.Printf("Client-event mailbox full, dropping close notice for room %s", roomID)
	}
}

// handleRoomClosed evicts a drained room from the registry.
func (m *Manager) handleRoomClosed(roomID string) {
	m.rooms.Delete(roomID)
	for key, roomIDs := range m.memberRooms {
		delete(roomIDs, roomID)
		if len(roomIDs) == 0 {
			delete(m.memberRooms, key)
		}
	}
	m.publishStats()
	log.Printf("Room %s closed", roomID)
}

// autoDispatch is the periodic re-matching pass: when agents are online
// and customers are waiting, the front customer is dispatched again.
func (m *Manager) autoDispatch() {
	if m.agents.IsEmpty() {
		return
	}
	for {
		customer, ok := m.waiting.TryPop()
		if !ok {
			return
		}
		if customer.Closed() {
			log.Printf("Skipping departed customer %s in the waiting queue", customer.Member().ID)
			continue
		}
		m.publishStats()
		m.dispatch(customer)
		return
	}
}

// publishStats mirrors the manager's private state into the handle
// snapshot and the Prometheus gauges.
func (m *Manager) publishStats() {
	agents := int64(m.agents.Len())
	waiting := int64(m.waiting.Len())
	rooms := int64(m.rooms.Len())

	m.handle.stats.agentsOnline.Store(agents)
	m.handle.stats.customersWaiting.Store(waiting)
	m.handle.stats.roomsActive.Store(rooms)

	metrics.AgentsOnline.Set(float64(agents))
	metrics.CustomersWaiting.Set(float64(waiting))
	metrics.RoomsActive.Set(float64(rooms))
}
