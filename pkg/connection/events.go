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

package connection

import (
	"github.com/turtacn/livechat-go/pkg/member"
	"github.com/turtacn/livechat-go/pkg/protocol/chat"
)

// Joined is delivered to a connection's mailbox when a member joins the
// room the connection belongs to. When Member is the connection's own
// identity the client is told it joined; otherwise it is told who did.
type Joined struct {
	RoomID string
	Member member.Member
}

// Left is delivered when a member leaves the room. A connection ignores
// its own leave notification.
type Left struct {
	RoomID string
	Member member.Member
}

// MessageEvent carries one chat payload broadcast by a room. Events
// authored by the connection's own member are suppressed (no echo).
type MessageEvent struct {
	RoomID  string
	From    member.Member
	Payload chat.Message
}

// Notice carries a system tip addressed directly to this connection,
// outside any room (e.g. a waiting-queue-full rejection).
type Notice struct {
	Payload chat.Message
}
