// Command lurkd-demo runs the LURK engine against a minimal lobby
// Behavior, wiring together the pieces cmd/lurkd-demo exists to
// exercise: flag parsing, the engine's accept/update/drain/reap loop,
// the admin introspection surface, and graceful shutdown on interrupt.
// It is a demo host, not a game: see lobby.go for how little game logic
// it actually contains.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"lurkd/admin"
	"lurkd/server"
)

// Version is the current build's version string, overridable via
// -ldflags at build time.
var Version = "0.1.0-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("lurkd-demo %s\n", Version)
		return
	}

	addr := flag.String("addr", ":5050", "LURK protocol listen address")
	adminAddr := flag.String("admin-addr", "", "admin/introspection HTTP listen address (empty to disable)")
	timeout := flag.Duration("timeout", defaultTimeout, "session inactivity timeout")
	frameTime := flag.Duration("frame-time", defaultFrameTime, "engine drain/reap/sweep pacing interval")
	maxConnections := flag.Int("max-connections", defaultMaxConnections, "maximum concurrently served sessions")
	rateLimit := flag.Float64("rate-limit", 0, "maximum frames per second per session (0 disables rate limiting)")
	rateBurst := flag.Int("rate-burst", 20, "token-bucket burst size when -rate-limit is set")
	flag.Parse()

	opts := []server.Option{
		server.WithBehavior(newLobby()),
		server.WithTimeout(*timeout),
		server.WithFrameTime(*frameTime),
		server.WithMaxConnections(*maxConnections),
	}
	if *rateLimit > 0 {
		opts = append(opts, server.WithRateLimit(*rateLimit, *rateBurst))
	}
	if *adminAddr != "" {
		opts = append(opts, server.WithAdminAddr(*adminAddr))
	}

	srv, err := server.Create(*addr, opts...)
	if err != nil {
		log.Fatalf("[lurkd] %v", err)
	}

	var adminSrv *admin.Server
	if *adminAddr != "" {
		adminSrv = admin.New(srv, *adminAddr)
		srv.SetAdmin(adminSrv)
		go func() {
			log.Printf("[lurkd] admin surface listening on %s", *adminAddr)
			if err := adminSrv.Start(); err != nil {
				log.Printf("[lurkd] admin surface: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Println("[lurkd] shutting down...")
		cancel()
	}()

	log.Printf("[lurkd] listening on %s", *addr)
	if err := srv.Start(ctx); err != nil && err != server.ErrServerClosed {
		log.Fatalf("[lurkd] %v", err)
	}
}
