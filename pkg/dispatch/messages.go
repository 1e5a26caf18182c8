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

package dispatch

import (
	"github.com/turtacn/livechat-go/pkg/connection"
	"github.com/turtacn/livechat-go/pkg/member"
	"github.com/turtacn/livechat-go/pkg/protocol/chat"
)

// SessionAccepted announces a newly authenticated connection to the
// dispatch manager. Sent by the transport layer after the handshake.
type SessionAccepted struct {
	// Conn is the handle of the accepted connection.
	Conn connection.Handle
}

// ClientMessage reports one chat payload received from a client. The
// manager routes it to the room named by the payload's room id, or drops
// it silently when no such room exists.
type ClientMessage struct {
	// Member is the verified identity of the sender.
	Member member.Member
	// Payload is the parsed chat protocol payload.
	Payload chat.Message
}

// ClientLeave reports that a client's connection terminated. The manager
// releases the member's pool slot and room membership.
type ClientLeave struct {
	// Member is the identity of the departed client.
	Member member.Member
}

// roomClosed is the room actor's terminal notification, sent when its
// membership drains so the manager can evict the registry entry.
type roomClosed struct {
	roomID string
}
