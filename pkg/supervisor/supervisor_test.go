package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/livechat-go/pkg/actor"
)

// countingChild counts its starts and delegates each life to run.
func countingChild(starts *atomic.Int32, run func(ctx context.Context) error) func(context.Context, *actor.Mailbox) error {
	return func(ctx context.Context, _ *actor.Mailbox) error {
		starts.Add(1)
		return run(ctx)
	}
}

func TestPermanentChildRestartsAfterPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var starts atomic.Int32
	sup := NewOneForOneSupervisor()
	sup.StartChild(ctx, Spec{
		ID:      "permanent-child",
		Restart: RestartPermanent,
		startFunc: countingChild(&starts, func(ctx context.Context) error {
			if starts.Load() == 1 {
				panic("first life fails")
			}
			<-ctx.Done()
			return ctx.Err()
		}),
	})

	assert.Eventually(t, func() bool {
		return starts.Load() >= 2
	}, 3*time.Second, 20*time.Millisecond)
}

func TestTemporaryChildStaysDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var starts atomic.Int32
	sup := NewOneForOneSupervisor()
	sup.StartChild(ctx, Spec{
		ID:      "temporary-child",
		Restart: RestartTemporary,
		startFunc: countingChild(&starts, func(context.Context) error {
			return errors.New("boom")
		}),
	})

	assert.Eventually(t, func() bool {
		return starts.Load() == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.Never(t, func() bool {
		return starts.Load() > 1
	}, 1500*time.Millisecond, 50*time.Millisecond)
}

func TestTransientChildRestartsOnErrorOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sup := NewOneForOneSupervisor()

	var failing atomic.Int32
	sup.StartChild(ctx, Spec{
		ID:      "transient-failing",
		Restart: RestartTransient,
		startFunc: countingChild(&failing, func(ctx context.Context) error {
			if failing.Load() == 1 {
				return errors.New("boom")
			}
			<-ctx.Done()
			return nil
		}),
	})

	var clean atomic.Int32
	sup.StartChild(ctx, Spec{
		ID:      "transient-clean",
		Restart: RestartTransient,
		startFunc: countingChild(&clean, func(context.Context) error {
			return nil
		}),
	})

	assert.Eventually(t, func() bool {
		return failing.Load() >= 2
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, int32(1), clean.Load())
}

func TestStartRequiresSpecs(t *testing.T) {
	sup := NewOneForOneSupervisor()
	assert.Error(t, sup.Start(context.Background(), nil))
}

func TestStartLaunchesAllChildren(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var a, b atomic.Int32
	blockUntilDone := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}

	sup := NewOneForOneSupervisor()
	assert.NoError(t, sup.Start(ctx, []Spec{
		{ID: "a", Restart: RestartTemporary, startFunc: countingChild(&a, blockUntilDone)},
		{ID: "b", Restart: RestartTemporary, startFunc: countingChild(&b, blockUntilDone)},
	}))

	assert.Eventually(t, func() bool {
		return a.Load() == 1 && b.Load() == 1
	}, 2*time.Second, 20*time.Millisecond)
}
