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

// Package admin provides REST endpoints for monitoring the chat service.
package admin

import (
	"encoding/json"
	"log"
	"net"
	"net/http"

	"github.com/turtacn/livechat-go/pkg/dispatch"
)

// StatsSource yields a point-in-time view of the dispatch manager.
type StatsSource interface {
	Stats() dispatch.Snapshot
}

// APIServer serves the admin API.
type APIServer struct {
	source   StatsSource
	listener net.Listener
	httpSrv  *http.Server
}

// NewAPIServer creates an admin API server reading from the given source.
func NewAPIServer(source StatsSource) *APIServer {
	return &APIServer{source: source}
}

// Start begins serving on addr. Non-blocking.
func (s *APIServer) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/healthz", s.handleHealth)
	s.httpSrv = &http.Server{Handler: mux}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("Admin server stopped: %v", err)
		}
	}()

	log.Printf("Admin server listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound listen address.
func (s *APIServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the server down.
func (s *APIServer) Stop() {
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
}

func (s *APIServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.source.Stats()); err != nil {
		log.Printf("Encoding stats response failed: %v", err)
	}
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
