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

package room

import (
	"context"

	"github.com/turtacn/livechat-go/pkg/actor"
	"github.com/turtacn/livechat-go/pkg/connection"
	"github.com/turtacn/livechat-go/pkg/member"
	"github.com/turtacn/livechat-go/pkg/protocol/chat"
)

// Handle is the cloneable reference to a room actor held by the dispatch
// manager's registry.
type Handle struct {
	id string
	mb *actor.Mailbox
}

// NewHandle builds a handle around a room id and the room's mailbox.
func NewHandle(id string, mb *actor.Mailbox) Handle {
	return Handle{id: id, mb: mb}
}

// ID returns the room's id.
func (h Handle) ID() string {
	return h.id
}

// OnJoin asks the room to admit a connection.
func (h Handle) OnJoin(conn connection.Handle) {
	h.mb.Send(Join{Conn: conn})
}

// OnLeave asks the room to remove a member.
func (h Handle) OnLeave(m member.Member) {
	h.mb.Send(Leave{Member: m})
}

// OnNewMessage asks the room to broadcast a chat payload.
func (h Handle) OnNewMessage(from member.Member, payload chat.Message) {
	h.mb.Send(NewMessage{From: from, Payload: payload})
}

// MemberCount asks the room for its current member count and waits for the
// answer. This is the only request/response interaction in the core; every
// other operation is fire-and-forget.
func (h Handle) MemberCount(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	h.mb.Send(memberCount{reply: reply})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case n := <-reply:
		return n, nil
	}
}
