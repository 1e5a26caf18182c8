package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxDeliversInSendOrder(t *testing.T) {
	mb := NewMailbox(10)
	for i := 0; i < 5; i++ {
		mb.Send(i)
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		msg, err := mb.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, msg)
	}
}

func TestTrySendFullMailbox(t *testing.T) {
	mb := NewMailbox(1)
	assert.True(t, mb.TrySend("first"))
	assert.False(t, mb.TrySend("second"))

	msg, err := mb.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", msg)
}

func TestReceiveCanceledContext(t *testing.T) {
	mb := NewMailbox(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mb.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChanSelectsWithOtherSources(t *testing.T) {
	mb := NewMailbox(1)
	timer := time.After(2 * time.Second)

	go mb.Send("ping")

	select {
	case msg := <-mb.Chan():
		assert.Equal(t, "ping", msg)
	case <-timer:
		t.Fatal("mailbox message not observed via Chan()")
	}
}
