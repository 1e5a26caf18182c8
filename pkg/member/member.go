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

// Package member defines the identity value attached to every live
// connection. Identities are created during authentication and are
// immutable afterwards; the core trusts them completely.
package member

// Role distinguishes the two participant kinds the service routes between.
type Role string

const (
	// Customer is an end user asking for support.
	Customer Role = "Customer"
	// CustomerService is a support agent serving customers.
	CustomerService Role = "CustomerService"
)

// Member identifies one participant: role, unique id, and display name.
// Two members are the same participant when role and id match; the display
// name carries no identity weight.
type Member struct {
	Role Role
	ID   string
	Name string
}

// New creates a member identity.
func New(role Role, id, name string) Member {
	return Member{Role: role, ID: id, Name: name}
}

// Key is the comparable identity key of a member. It deliberately omits
// the display name so maps keyed by it treat renamed participants as the
// same member.
type Key struct {
	Role Role
	ID   string
}

// Key returns the (role, id) map key for this member.
func (m Member) Key() Key {
	return Key{Role: m.Role, ID: m.ID}
}

// Same reports whether two members are the same participant.
func (m Member) Same(other Member) bool {
	return m.Role == other.Role && m.ID == other.ID
}

// IsCustomerService reports whether the member is a support agent.
func (m Member) IsCustomerService() bool {
	return m.Role == CustomerService
}

// IsCustomer reports whether the member is an end user.
func (m Member) IsCustomer() bool {
	return m.Role == Customer
}
