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

// Package chat defines the client-facing chat protocol payload. The wire
// form is JSON with exactly three fields (body, msg_type, room_id) and must
// stay byte-compatible with existing clients.
package chat

import (
	"encoding/json"
	"fmt"

	"github.com/turtacn/livechat-go/pkg/member"
)

// MessageType tags a payload as a system notice or user-authored content.
type MessageType string

const (
	// Tips is a system-generated notice, e.g. a join/leave announcement.
	Tips MessageType = "Tips"
	// Chat is user-authored message content.
	Chat MessageType = "Chat"
)

// Message is one chat protocol payload.
type Message struct {
	Body    string      `json:"body"`
	MsgType MessageType `json:"msg_type"`
	RoomID  string      `json:"room_id"`
}

// NewChat creates a user-authored message addressed to a room.
func NewChat(body, roomID string) Message {
	return Message{Body: body, MsgType: Chat, RoomID: roomID}
}

// NewTips creates a system notice addressed to a room.
func NewTips(body, roomID string) Message {
	return Message{Body: body, MsgType: Tips, RoomID: roomID}
}

// SelfJoin is the notice shown to a member who just joined a room.
func SelfJoin(roomID string) Message {
	return NewTips("you joined the chat", roomID)
}

// Join is the notice shown to existing members when someone else joins.
func Join(m member.Member, roomID string) Message {
	return NewTips(fmt.Sprintf("%s joined the chat", m.Name), roomID)
}

// Leave is the notice shown to remaining members when someone leaves.
func Leave(m member.Member, roomID string) Message {
	return NewTips(fmt.Sprintf("%s left the chat", m.Name), roomID)
}

// QueueFull is the notice shown to a customer rejected because the waiting
// queue is at capacity.
func QueueFull() Message {
	return NewTips("all agents are busy, please try again later", "")
}

// Encode serializes the message to its JSON wire form.
func (m Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode chat message: %w", err)
	}
	return data, nil
}

// Decode parses a JSON wire payload into a message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode chat message: %w", err)
	}
	return m, nil
}
