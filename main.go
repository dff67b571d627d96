package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/amirhomidov08-cmyk/videoserver/modules/presence"
	"github.com/amirhomidov08-cmyk/videoserver/modules/signaling"
	"github.com/amirhomidov08-cmyk/videoserver/modules/wsserver"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== WebRTC Signaling Relay ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	signalingModule := signaling.NewModule()
	presenceModule := presence.NewModule()
	serverModule := wsserver.NewModule()

	// Inject the signaling core into the transport module.
	// (This is done manually because the router is not exposed via ServiceContainer.)
	serverModule.SetSignaling(signalingModule)

	// Register modules with the framework.
	// Order: core state machine first, then the event consumer, then the
	// transport that feeds them both.
	app.Register(signalingModule) // registry + rooms + router, event emitter
	app.Register(presenceModule)  // occupancy tracking via event bus
	app.Register(serverModule)    // Fiber WebSocket server

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("")
	log.Println("Signaling relay started!")
	log.Println("")
	log.Printf("  WebSocket endpoint: ws://localhost:%s/ws", port)
	log.Printf("  Health check:       http://localhost:%s/health", port)
	log.Println("")
	log.Println("Protocol:")
	log.Println("  -> {type: \"join\", roomId}                  join a room")
	log.Println("  -> {type: \"offer\"|\"answer\"|\"candidate\", to}  relay to one peer")
	log.Println("  <- {type: \"your-id\"|\"user-joined\"|\"user-left\", userId}")
}
