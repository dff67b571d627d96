package signaling

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirhomidov08-cmyk/videoserver/events"
	"github.com/go-monolith/mono"
)

// Module wires the signaling core into the application. It owns the store
// and router and publishes membership events on the event bus. The bus is
// not on the routing path; it carries observability notifications only.
type Module struct {
	store    *Store
	router   *Router
	eventBus mono.EventBus
	logger   *slog.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ Notifier                   = (*Module)(nil)
)

// NewModule creates a new signaling module.
func NewModule() *Module {
	m := &Module{
		store:  NewStore(),
		logger: slog.Default(),
	}
	m.router = NewRouter(m.store, m)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "signaling"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.PeerConnectedV1.ToBase(),
		events.PeerJoinedV1.ToBase(),
		events.PeerLeftV1.ToBase(),
		events.PeerDisconnectedV1.ToBase(),
	}
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("signaling module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("signaling module stopped", "peers", m.store.PeerCount())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"peers": m.store.PeerCount(),
			"rooms": m.store.RoomCount(),
		},
	}
}

// Router returns the message router for the transport layer.
func (m *Module) Router() *Router {
	return m.router
}

// PeerCount returns the number of registered connections.
func (m *Module) PeerCount() int {
	return m.store.PeerCount()
}

// RoomCount returns the number of active rooms.
func (m *Module) RoomCount() int {
	return m.store.RoomCount()
}

// Notifier implementation. Publish failures are logged and swallowed so the
// routing path never depends on the bus.

// PeerConnected publishes a PeerConnected event.
func (m *Module) PeerConnected(peerID string) {
	if m.eventBus == nil {
		return
	}
	event := events.PeerConnectedEvent{PeerID: peerID, Timestamp: time.Now()}
	if err := events.PeerConnectedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("failed to publish PeerConnected event", "error", err)
	}
}

// PeerJoined publishes a PeerJoined event.
func (m *Module) PeerJoined(roomID, peerID string) {
	if m.eventBus == nil {
		return
	}
	event := events.PeerJoinedEvent{RoomID: roomID, PeerID: peerID, Timestamp: time.Now()}
	if err := events.PeerJoinedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("failed to publish PeerJoined event", "error", err)
	}
}

// PeerLeft publishes a PeerLeft event.
func (m *Module) PeerLeft(roomID, peerID string) {
	if m.eventBus == nil {
		return
	}
	event := events.PeerLeftEvent{RoomID: roomID, PeerID: peerID, Timestamp: time.Now()}
	if err := events.PeerLeftV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("failed to publish PeerLeft event", "error", err)
	}
}

// PeerDisconnected publishes a PeerDisconnected event.
func (m *Module) PeerDisconnected(peerID string) {
	if m.eventBus == nil {
		return
	}
	event := events.PeerDisconnectedEvent{PeerID: peerID, Timestamp: time.Now()}
	if err := events.PeerDisconnectedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("failed to publish PeerDisconnected event", "error", err)
	}
}
