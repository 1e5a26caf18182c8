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

// Package actor provides the mailbox substrate every actor in the chat
// service is built on. An actor owns its private state and mutates it only
// from its own processing loop; all cross-actor communication happens by
// sending an immutable message value into the target's mailbox.
package actor

import "context"

// Actor defines the interface for an actor process.
// An actor is an entity that, in response to a message it receives,
// can concurrently:
//   - send a finite number of messages to other actors;
//   - create a finite number of new actors;
//   - designate the behavior to be used for the next message it receives.
type Actor interface {
	// Start runs the actor's processing loop. The context controls the
	// lifecycle of the actor and the mailbox delivers its incoming
	// messages. The method blocks until the actor terminates and returns
	// an error if it terminates abnormally.
	Start(ctx context.Context, mb *Mailbox) error
}

// Mailbox is a bounded, ordered, multi-producer/single-consumer message
// queue feeding one actor's processing loop. Messages sent by a single
// producer are delivered in send order; no ordering holds across
// producers.
type Mailbox struct {
	messages chan any
}

// NewMailbox creates a new mailbox with the given buffer capacity. When
// the buffer is full, Send blocks producers, applying backpressure.
func NewMailbox(size int) *Mailbox {
	return &Mailbox{
		messages: make(chan any, size),
	}
}

// Send puts a message into the mailbox, blocking while the buffer is full.
func (mb *Mailbox) Send(msg any) {
	mb.messages <- msg
}

// TrySend puts a message into the mailbox without blocking and reports
// whether it was accepted. A false return means the mailbox was full and
// the message was dropped. Best-effort paths (room broadcasts) use this so
// one slow consumer cannot stall the sender.
func (mb *Mailbox) TrySend(msg any) bool {
	select {
	case mb.messages <- msg:
		return true
	default:
		return false
	}
}

// Receive blocks until a message arrives or the context is canceled. On
// cancellation it returns nil and the context's error.
func (mb *Mailbox) Receive(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-mb.messages:
		return msg, nil
	}
}

// Chan returns the underlying message channel read-only, so an actor loop
// can select over its mailbox together with timers and transport streams.
func (mb *Mailbox) Chan() <-chan any {
	return mb.messages
}
