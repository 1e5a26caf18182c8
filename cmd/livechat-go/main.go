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

// package main is the entrypoint for the livechat-go service.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/livechat-go/pkg/admin"
	"github.com/turtacn/livechat-go/pkg/auth"
	"github.com/turtacn/livechat-go/pkg/config"
	"github.com/turtacn/livechat-go/pkg/dispatch"
	"github.com/turtacn/livechat-go/pkg/metrics"
	"github.com/turtacn/livechat-go/pkg/supervisor"
	"github.com/turtacn/livechat-go/pkg/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Loading config failed: %v", err)
	}

	log.Println("Starting livechat-go...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sup := supervisor.NewOneForOneSupervisor()

	// The dispatch manager is the one system-wide actor; everything else
	// reaches it through its handle.
	manager, handle := dispatch.New(sup, dispatch.Options{
		RematchInterval:  cfg.RematchInterval(),
		MailboxSize:      cfg.Server.MailboxSize,
		WaitingQueueSize: cfg.Server.WaitingQueueSize,
	})
	sup.StartChild(ctx, supervisor.Spec{
		ID:      "dispatch",
		Actor:   manager,
		Restart: supervisor.RestartPermanent,
		Mailbox: handle.Mailbox(),
	})

	authenticator := auth.NewJWT(cfg.Server.AuthSecret)
	server := transport.NewServer(authenticator, handle, sup, cfg.Server.MailboxSize)
	if err := server.Start(ctx, cfg.Server.ListenAddr); err != nil {
		log.Fatalf("Websocket server failed to start: %v", err)
	}
	defer server.Stop()

	adminSrv := admin.NewAPIServer(handle)
	if err := adminSrv.Start(cfg.Server.AdminAddr); err != nil {
		log.Fatalf("Admin server failed to start: %v", err)
	}
	defer adminSrv.Stop()

	go metrics.Serve(cfg.Server.MetricsAddr)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	<-shutdownChan

	log.Println("Shutdown signal received. Shutting down...")
}
