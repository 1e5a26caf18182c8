package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/livechat-go/pkg/actor"
	"github.com/turtacn/livechat-go/pkg/connection"
	"github.com/turtacn/livechat-go/pkg/member"
	"github.com/turtacn/livechat-go/pkg/protocol/chat"
	"github.com/turtacn/livechat-go/pkg/supervisor"
)

func startManager(t *testing.T, opts Options) Handle {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m, h := New(supervisor.NewOneForOneSupervisor(), opts)
	go m.Start(ctx, h.Mailbox())
	return h
}

func newEndpoint(t *testing.T, role member.Role, id string) connection.Handle {
	t.Helper()
	return connection.NewHandle(member.New(role, id, "name-"+id), actor.NewMailbox(32))
}

func recvEvent(t *testing.T, h connection.Handle) any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := h.Mailbox().Receive(ctx)
	require.NoError(t, err, "expected an event for %s", h.Member().ID)
	return msg
}

func assertNoEvent(t *testing.T, h connection.Handle) {
	t.Helper()
	select {
	case msg := <-h.Mailbox().Chan():
		t.Fatalf("unexpected event for %s: %#v", h.Member().ID, msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAgentThenCustomerCreatesRoom(t *testing.T) {
	h := startManager(t, Options{})
	agent := newEndpoint(t, member.CustomerService, "agt1")
	customer := newEndpoint(t, member.Customer, "cus1")

	h.AnnounceConnection(agent)
	h.AnnounceConnection(customer)

	// The agent joined first, so it sees its own join and the customer's.
	ev := recvEvent(t, agent).(connection.Joined)
	assert.Equal(t, "cus1-agt1", ev.RoomID)
	assert.True(t, ev.Member.Same(agent.Member()))

	ev = recvEvent(t, agent).(connection.Joined)
	assert.True(t, ev.Member.Same(customer.Member()))

	ev = recvEvent(t, customer).(connection.Joined)
	assert.Equal(t, "cus1-agt1", ev.RoomID)
	assert.True(t, ev.Member.Same(customer.Member()))

	assert.Eventually(t, func() bool {
		s := h.Stats()
		return s.RoomsActive == 1 && s.AgentsOnline == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCustomerWaitsWithoutAgent(t *testing.T) {
	h := startManager(t, Options{})
	customer := newEndpoint(t, member.Customer, "cus1")

	h.AnnounceConnection(customer)

	assert.Eventually(t, func() bool {
		return h.Stats().CustomersWaiting == 1
	}, 2*time.Second, 10*time.Millisecond)
	assertNoEvent(t, customer)
}

func TestRematchPairsWaitingCustomer(t *testing.T) {
	h := startManager(t, Options{RematchInterval: 20 * time.Millisecond})
	customer := newEndpoint(t, member.Customer, "cus2")
	agent := newEndpoint(t, member.CustomerService, "agt1")

	h.AnnounceConnection(customer)
	assert.Eventually(t, func() bool {
		return h.Stats().CustomersWaiting == 1
	}, 2*time.Second, 10*time.Millisecond)

	h.AnnounceConnection(agent)

	ev := recvEvent(t, customer).(connection.Joined)
	assert.Equal(t, "cus2-agt1", ev.RoomID)

	assert.Eventually(t, func() bool {
		s := h.Stats()
		return s.CustomersWaiting == 0 && s.RoomsActive == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoundRobinSpreadsCustomers(t *testing.T) {
	h := startManager(t, Options{})
	agt1 := newEndpoint(t, member.CustomerService, "agt1")
	agt2 := newEndpoint(t, member.CustomerService, "agt2")
	cus1 := newEndpoint(t, member.Customer, "cus1")
	cus2 := newEndpoint(t, member.Customer, "cus2")

	h.AnnounceConnection(agt1)
	h.AnnounceConnection(agt2)
	h.AnnounceConnection(cus1)
	h.AnnounceConnection(cus2)

	ev1 := recvEvent(t, cus1).(connection.Joined)
	ev2 := recvEvent(t, cus2).(connection.Joined)
	assert.Equal(t, "cus1-agt1", ev1.RoomID)
	assert.Equal(t, "cus2-agt2", ev2.RoomID)
}

func TestDuplicateAgentAnnounceIgnored(t *testing.T) {
	h := startManager(t, Options{})
	agent := newEndpoint(t, member.CustomerService, "agt1")

	h.AnnounceConnection(agent)
	h.AnnounceConnection(agent)

	assert.Eventually(t, func() bool {
		return h.Stats().AgentsOnline == 1
	}, 2*time.Second, 10*time.Millisecond)
	// Still exactly one after both announcements were processed.
	assert.Never(t, func() bool {
		return h.Stats().AgentsOnline != 1
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestMessageRoutedToRoom(t *testing.T) {
	h := startManager(t, Options{})
	agent := newEndpoint(t, member.CustomerService, "agt1")
	customer := newEndpoint(t, member.Customer, "cus1")

	h.AnnounceConnection(agent)
	h.AnnounceConnection(customer)

	joined := recvEvent(t, customer).(connection.Joined)
	recvEvent(t, agent) // own join
	recvEvent(t, agent) // customer join

	payload := chat.NewChat("hello there", joined.RoomID)
	h.ReportClientMessage(customer.Member(), payload)

	ev := recvEvent(t, agent).(connection.MessageEvent)
	assert.True(t, ev.From.Same(customer.Member()))
	assert.Equal(t, payload, ev.Payload)
	// The sender never sees its own message.
	assertNoEvent(t, customer)
}

func TestUnroutedMessageDropped(t *testing.T) {
	h := startManager(t, Options{})
	customer := newEndpoint(t, member.Customer, "cus1")

	h.ReportClientMessage(customer.Member(), chat.NewChat("hello", "no-such-room"))

	assert.Eventually(t, func() bool {
		return h.Stats().MessagesDropped == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLeaveRemovesAgentFromPool(t *testing.T) {
	h := startManager(t, Options{})
	agent := newEndpoint(t, member.CustomerService, "agt1")

	h.AnnounceConnection(agent)
	assert.Eventually(t, func() bool {
		return h.Stats().AgentsOnline == 1
	}, 2*time.Second, 10*time.Millisecond)

	h.ReportLeave(agent.Member())
	assert.Eventually(t, func() bool {
		return h.Stats().AgentsOnline == 0
	}, 2*time.Second, 10*time.Millisecond)

	// The next customer has nobody to pair with.
	customer := newEndpoint(t, member.Customer, "cus1")
	h.AnnounceConnection(customer)
	assert.Eventually(t, func() bool {
		return h.Stats().CustomersWaiting == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFullWaitingQueueRejectsCustomer(t *testing.T) {
	h := startManager(t, Options{WaitingQueueSize: 1})
	first := newEndpoint(t, member.Customer, "cus1")
	second := newEndpoint(t, member.Customer, "cus2")

	h.AnnounceConnection(first)
	h.AnnounceConnection(second)

	ev := recvEvent(t, second).(connection.Notice)
	assert.Equal(t, chat.QueueFull(), ev.Payload)
	assertNoEvent(t, first)
}

func TestAgentLeaveClosesEveryServedRoom(t *testing.T) {
	h := startManager(t, Options{})
	agent := newEndpoint(t, member.CustomerService, "agt1")
	cus1 := newEndpoint(t, member.Customer, "cus1")
	cus2 := newEndpoint(t, member.Customer, "cus2")

	// One agent serves both customers, so it sits in two rooms at once.
	h.AnnounceConnection(agent)
	h.AnnounceConnection(cus1)
	h.AnnounceConnection(cus2)

	assert.Eventually(t, func() bool {
		return h.Stats().RoomsActive == 2
	}, 2*time.Second, 10*time.Millisecond)

	h.ReportLeave(agent.Member())
	h.ReportLeave(cus1.Member())
	h.ReportLeave(cus2.Member())

	// Both rooms drain and leave the registry, not just the newest one.
	assert.Eventually(t, func() bool {
		return h.Stats().RoomsActive == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomCloseNoticeNeverBlocks(t *testing.T) {
	// Not started: the client-event mailbox stays full, as it would when
	// the manager is itself blocked sending into a room.
	m, h := New(supervisor.NewOneForOneSupervisor(), Options{MailboxSize: 1})
	require.True(t, h.conns.TrySend(ClientLeave{}))

	done := make(chan struct{})
	go func() {
		m.notifyRoomClosed("r1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("close notice blocked on a full mailbox")
	}
}

func TestRoomTeardownEvictsRegistry(t *testing.T) {
	h := startManager(t, Options{})
	agent := newEndpoint(t, member.CustomerService, "agt1")
	customer := newEndpoint(t, member.Customer, "cus1")

	h.AnnounceConnection(agent)
	h.AnnounceConnection(customer)

	joined := recvEvent(t, customer).(connection.Joined)
	assert.Eventually(t, func() bool {
		return h.Stats().RoomsActive == 1
	}, 2*time.Second, 10*time.Millisecond)

	h.ReportLeave(customer.Member())
	h.ReportLeave(agent.Member())

	assert.Eventually(t, func() bool {
		return h.Stats().RoomsActive == 0
	}, 2*time.Second, 10*time.Millisecond)

	// Messages for the drained room are dropped, not delivered.
	h.ReportClientMessage(customer.Member(), chat.NewChat("late", joined.RoomID))
	assert.Eventually(t, func() bool {
		return h.Stats().MessagesDropped == 1
	}, 2*time.Second, 10*time.Millisecond)
}
