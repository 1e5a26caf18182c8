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

// Package supervisor provides one-for-one supervision for the service's
// actors: the dispatch manager runs as a permanent child, while room and
// connection actors are temporary children that are allowed to finish.
package supervisor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/turtacn/livechat-go/pkg/actor"
	"github.com/turtacn/livechat-go/pkg/metrics"
)

// RestartStrategy decides what happens after a supervised child stops.
type RestartStrategy int

const (
	// RestartPermanent restarts the child no matter how it stopped. Used
	// for the dispatch manager, which must outlive any single failure.
	RestartPermanent RestartStrategy = iota
	// RestartTransient restarts the child only after an abnormal stop
	// (error return or panic); a clean return is final.
	RestartTransient
	// RestartTemporary never restarts the child. Rooms and connections
	// stop when their conversation or socket ends.
	RestartTemporary
)

// restartAfter reports whether a child that stopped with err should be
// started again.
func (s RestartStrategy) restartAfter(err error) bool {
	switch s {
	case RestartPermanent:
		return true
	case RestartTransient:
		return err != nil
	default:
		return false
	}
}

// restartDelay spaces consecutive restarts of the same child so a child
// that fails immediately cannot spin the supervisor.
const restartDelay = time.Second

// Spec describes one supervised child.
type Spec struct {
	// ID identifies the child in logs and the restart metric.
	ID string
	// Actor is the child to run.
	Actor actor.Actor
	// Restart is the child's restart strategy.
	Restart RestartStrategy
	// Mailbox feeds the child's processing loop.
	Mailbox *actor.Mailbox
	// startFunc, when set, runs in place of Actor.Start. Tests use it to
	// stand in for a real actor.
	startFunc func(context.Context, *actor.Mailbox) error
}

// Supervisor starts children and applies their restart strategies.
type Supervisor interface {
	// Start launches an initial set of children. Non-blocking.
	Start(ctx context.Context, specs []Spec) error
	// StartChild launches and monitors one child. Non-blocking.
	StartChild(ctx context.Context, spec Spec)
}

// OneForOneSupervisor restarts each failed child on its own; siblings
// are untouched.
type OneForOneSupervisor struct{}

// NewOneForOneSupervisor creates a one-for-one supervisor.
func NewOneForOneSupervisor() *OneForOneSupervisor {
	return &OneForOneSupervisor{}
}

// Start launches the given children.
func (s *OneForOneSupervisor) Start(ctx context.Context, specs []Spec) error {
	if len(specs) == 0 {
		return fmt.Errorf("no child specs provided")
	}
	for _, spec := range specs {
		s.StartChild(ctx, spec)
	}
	return nil
}

// StartChild launches one child and monitors it in its own goroutine.
func (s *OneForOneSupervisor) StartChild(ctx context.Context, spec Spec) {
	childCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		s.monitor(childCtx, spec)
	}()
}

// monitor runs the child, and re-runs it for as long as its strategy
// asks for a restart and the context is alive.
func (s *OneForOneSupervisor) monitor(ctx context.Context, spec Spec) {
	for {
		err := s.runChild(ctx, spec)
		log.Printf("Actor %s stopped: %v", spec.ID, err)

		select {
		case <-ctx.Done():
			return
		default:
		}

		if !spec.Restart.restartAfter(err) {
			return
		}

		metrics.SupervisorRestartsTotal.WithLabelValues(spec.ID).Inc()
		log.Printf("Restarting actor %s", spec.ID)
		time.Sleep(restartDelay)
	}
}

// runChild executes one life of the child, converting a panic into an
// error so the strategy can act on it.
func (s *OneForOneSupervisor) runChild(ctx context.Context, spec Spec) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actor %s panicked: %v", spec.ID, r)
		}
	}()
	log.Printf("Starting actor %s", spec.ID)
	if spec.startFunc != nil {
		return spec.startFunc(ctx, spec.Mailbox)
	}
	return spec.Actor.Start(ctx, spec.Mailbox)
}
