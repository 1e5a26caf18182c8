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

// Package connection implements the actor that bridges one websocket
// client to the routing core. It owns the socket's read and write halves,
// forwards client frames to the dispatch manager, and relays room events
// back out to the client.
package connection

import (
	"context"
	"log"

	"github.com/gorilla/websocket"

	"github.com/turtacn/livechat-go/pkg/actor"
	"github.com/turtacn/livechat-go/pkg/member"
	"github.com/turtacn/livechat-go/pkg/protocol/chat"
)

// Dispatcher is the slice of the dispatch manager a connection needs:
// fire-and-forget reporting of client activity.
type Dispatcher interface {
	ReportClientMessage(m member.Member, msg chat.Message)
	ReportLeave(m member.Member)
}

// Conn is the actor managing a single client connection.
type Conn struct {
	member     member.Member
	ws         *websocket.Conn
	dispatcher Dispatcher
	handle     Handle
}

// New creates a connection actor for an authenticated websocket and
// returns it together with its handle. The caller is expected to start
// the actor (typically under a supervisor, passing handle.Mailbox()) and
// announce the handle to the dispatch manager.
func New(m member.Member, ws *websocket.Conn, d Dispatcher, mailboxSize int) (*Conn, Handle) {
	h := NewHandle(m, actor.NewMailbox(mailboxSize))
	return &Conn{
		member:     m,
		ws:         ws,
		dispatcher: d,
		handle:     h,
	}, h
}

type inboundFrame struct {
	messageType int
	data        []byte
	err         error
}

// Start runs the connection's processing loop: it waits, without priority
// ordering, on the room-event mailbox and the client's inbound frames.
// The loop terminates when the client closes, the read side fails, or the
// context is canceled; the leave event is reported on the first two.
func (c *Conn) Start(ctx context.Context, mb *actor.Mailbox) error {
	done := make(chan struct{})
	frames := make(chan inboundFrame)
	go c.readLoop(frames, done)

	defer close(done)
	defer c.ws.Close()
	defer c.handle.markClosed()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-mb.Chan():
			c.handleRoomEvent(msg)

		case f := <-frames:
			if f.err != nil {
				if !websocket.IsCloseError(f.err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("Read error on connection %s: %v", c.member.ID, f.err)
				}
				c.dispatcher.ReportLeave(c.member)
				return nil
			}
			c.handleClientFrame(f.messageType, f.data)
		}
	}
}

// readLoop pumps inbound frames from the socket into the actor loop.
// Control frames (ping/pong) are answered by gorilla's default handlers
// inside ReadMessage and never surface here.
func (c *Conn) readLoop(frames chan<- inboundFrame, done <-chan struct{}) {
	for {
		mt, data, err := c.ws.ReadMessage()
		select {
		case frames <- inboundFrame{messageType: mt, data: data, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

// handleRoomEvent forwards a room-originated event out to the client.
func (c *Conn) handleRoomEvent(event any) {
	switch ev := event.(type) {
	case Joined:
		if ev.Member.Same(c.member) {
			c.writeMessage(chat.SelfJoin(ev.RoomID))
			return
		}
		c.writeMessage(chat.Join(ev.Member, ev.RoomID))

	case Left:
		if ev.Member.Same(c.member) {
			return
		}
		c.writeMessage(chat.Leave(ev.Member, ev.RoomID))

	case MessageEvent:
		// No echo to the author.
		if ev.From.Same(c.member) {
			return
		}
		c.writeMessage(ev.Payload)

	case Notice:
		c.writeMessage(ev.Payload)

	default:
		log.Printf("Connection %s received unknown event type: %T", c.member.ID, ev)
	}
}

// handleClientFrame parses a client frame and forwards it to the dispatch
// manager. Malformed payloads are dropped and the connection stays open;
// binary frames are dropped by policy.
func (c *Conn) handleClientFrame(messageType int, data []byte) {
	switch messageType {
	case websocket.TextMessage:
		msg, err := chat.Decode(data)
		if err != nil {
			log.Printf("Dropping malformed payload from %s: %v", c.member.ID, err)
			return
		}
		c.dispatcher.ReportClientMessage(c.member, msg)

	case websocket.BinaryMessage:
		log.Printf("Dropping binary frame from %s (unsupported)", c.member.ID)

	default:
		log.Printf("Dropping frame type %d from %s", messageType, c.member.ID)
	}
}

func (c *Conn) writeMessage(msg chat.Message) {
	data, err := msg.Encode()
	if err != nil {
		log.Printf("Encoding message for %s failed: %v", c.member.ID, err)
		return
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("Writing to client %s failed: %v", c.member.ID, err)
	}
}
