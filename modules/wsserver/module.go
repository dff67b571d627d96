package wsserver

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/amirhomidov08-cmyk/videoserver/modules/signaling"
	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Module is the WebSocket transport boundary built on Fiber. It accepts
// connections, feeds raw frames to the signaling router and reports
// close/error events back to it.
type Module struct {
	app       *fiber.App
	signaling *signaling.Module
	port      string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the transport module. The listening port comes from the
// PORT environment variable, falling back to 8080.
func NewModule() *Module {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return &Module{port: port}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "ws-server"
}

// SetSignaling injects the signaling module (called from main.go).
func (m *Module) SetSignaling(s *signaling.Module) {
	m.signaling = s
}

// Start initializes and starts the Fiber server.
func (m *Module) Start(_ context.Context) error {
	if m.signaling == nil {
		return fmt.Errorf("signaling module dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(loggerMiddleware())

	m.registerRoutes()

	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			log.Printf("[ws-server] listener error: %v", err)
		}
	}()

	log.Printf("[ws-server] listening on :%s", m.port)
	return nil
}

// Stop gracefully shuts down the Fiber server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[ws-server] shutting down listener...")
	return m.app.Shutdown()
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":  m.port,
			"peers": m.signaling.PeerCount(),
		},
	}
}

// registerRoutes sets up the health check and the WebSocket endpoint. The
// relay has no other network-facing surface.
func (m *Module) registerRoutes() {
	m.app.Get("/health", m.healthHandler)

	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"peers":  m.signaling.PeerCount(),
		"rooms":  m.signaling.RoomCount(),
	})
}

// errorHandler handles Fiber errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}

// loggerMiddleware logs plain HTTP requests. WebSocket traffic is logged by
// the connection handler instead.
func loggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Upgrade") == "websocket" {
			return c.Next()
		}
		err := c.Next()
		log.Printf("[ws-server] %s %s %d", c.Method(), c.Path(), c.Response().StatusCode())
		return err
	}
}
