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

// package metrics provides Prometheus metrics for the application.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsTotal is a counter for the total number of websocket
	// connections accepted after authentication.
	ConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livechat_connections_total",
		Help: "The total number of authenticated connections accepted.",
	})

	// AuthFailuresTotal is a counter for rejected handshakes.
	AuthFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livechat_auth_failures_total",
		Help: "The total number of connections rejected during authentication.",
	})

	// MessagesRoutedTotal is a counter for chat messages forwarded to a room.
	MessagesRoutedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livechat_messages_routed_total",
		Help: "The total number of client messages routed to a room.",
	})

	// MessagesDroppedTotal is a counter for messages dropped because their
	// room was unknown or a receiver mailbox was full.
	MessagesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livechat_messages_dropped_total",
		Help: "The total number of messages dropped instead of delivered.",
	})

	// RoomsActive is a gauge for the number of rooms in the registry.
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livechat_rooms_active",
		Help: "The number of active conversation rooms.",
	})

	// AgentsOnline is a gauge for the number of agents in the round-robin pool.
	AgentsOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livechat_agents_online",
		Help: "The number of customer-service agents available for pairing.",
	})

	// CustomersWaiting is a gauge for the waiting-queue depth.
	CustomersWaiting = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "livechat_customers_waiting",
		Help: "The number of customers waiting for an agent.",
	})

	// SupervisorRestartsTotal is a counter for the total number of supervisor restarts.
	SupervisorRestartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livechat_supervisor_restarts_total",
		Help: "The total number of times a supervised actor has been restarted.",
	},
		[]string{"actor_id"},
	)
)

// Serve starts an HTTP server to expose the Prometheus metrics.
func Serve(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	log.Printf("Metrics server listening on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logFatalf("Metrics server failed: %v", err)
	}
}

// logFatalf can be replaced by tests to prevent process exit.
var logFatalf = log.Fatalf
