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

// package transport is responsible for the network edge of the chat
// service. It accepts websocket connections, authenticates them before
// the upgrade, spawns a connection actor for each, and announces the
// accepted session to the dispatch manager.
package transport

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/turtacn/livechat-go/pkg/auth"
	"github.com/turtacn/livechat-go/pkg/connection"
	"github.com/turtacn/livechat-go/pkg/dispatch"
	"github.com/turtacn/livechat-go/pkg/metrics"
	"github.com/turtacn/livechat-go/pkg/supervisor"
)

// Server accepts and authenticates websocket connections.
type Server struct {
	authenticator auth.Authenticator
	dispatch      dispatch.Handle
	sup           supervisor.Supervisor
	mailboxSize   int

	upgrader websocket.Upgrader
	listener net.Listener
	httpSrv  *http.Server

	// baseCtx is the lifecycle context connection actors run under.
	baseCtx context.Context
}

// NewServer creates a transport server. Connection actors are supervised
// as temporary children under sup and announced to the dispatch handle.
func NewServer(authenticator auth.Authenticator, d dispatch.Handle, sup supervisor.Supervisor, mailboxSize int) *Server {
	return &Server{
		authenticator: authenticator,
		dispatch:      d,
		sup:           sup,
		mailboxSize:   mailboxSize,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start begins listening for websocket connections on the given address.
// It is non-blocking; the accept loop runs until Stop or ctx cancellation.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.baseCtx = ctx

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWebsocket)
	s.httpSrv = &http.Server{Handler: mux}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("Websocket server stopped: %v", err)
		}
	}()

	log.Printf("Websocket server listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound listen address, useful when addr was ":0".
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the server down and stops accepting connections. Actors for
// established connections terminate through their own contexts.
func (s *Server) Stop() {
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
	log.Println("Websocket server stopped")
}

// handleWebsocket authenticates the request, upgrades it, and hands the
// socket to a new connection actor. Authentication happens before the
// upgrade so rejected clients never enter the core.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		metrics.AuthFailuresTotal.Inc()
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	m, err := s.authenticator.Verify(token)
	if err != nil {
		metrics.AuthFailuresTotal.Inc()
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade for %s failed: %v", m.ID, err)
		return
	}

	conn, handle := connection.New(m, ws, s.dispatch, s.mailboxSize)
	s.sup.StartChild(s.baseCtx, supervisor.Spec{
		ID:      "conn-" + string(m.Role) + "-" + m.ID,
		Actor:   conn,
		Restart: supervisor.RestartTemporary,
		Mailbox: handle.Mailbox(),
	})
	s.dispatch.AnnounceConnection(handle)

	metrics.ConnectionsTotal.Inc()
	log.Printf("Accepted %s connection for %s (%s)", m.Role, m.ID, m.Name)
}
