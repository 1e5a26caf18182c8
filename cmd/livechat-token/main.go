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

// package main is a helper CLI that mints signed bearer tokens so clients
// can be connected to a running livechat-go instance for testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/livechat-go/pkg/auth"
	"github.com/turtacn/livechat-go/pkg/member"
)

func main() {
	var (
		id       = flag.String("id", "", "participant id (generated when empty)")
		name     = flag.String("name", "anonymous", "display name")
		userType = flag.String("type", "Customer", "participant role: Customer or CustomerService")
		secret   = flag.String("secret", "aoquoquoeq", "HMAC secret the server is configured with")
		ttl      = flag.Duration("ttl", 24*time.Hour, "token validity")
	)
	flag.Parse()

	role := member.Role(*userType)
	if role != member.Customer && role != member.CustomerService {
		log.Fatalf("Unknown type %q (want Customer or CustomerService)", *userType)
	}

	participantID := *id
	if participantID == "" {
		participantID = uuid.NewString()
	}

	m := member.New(role, participantID, *name)
	token, err := auth.NewJWT(*secret).Sign(m, *ttl)
	if err != nil {
		log.Fatalf("Signing token failed: %v", err)
	}

	fmt.Printf("id:    %s\n", participantID)
	fmt.Printf("token: %s\n", token)
	fmt.Printf("\nconnect with:\n  Authorization: Bearer %s\n", token)
}
