package presence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirhomidov08-cmyk/videoserver/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Module consumes membership events and keeps occupancy counters for health
// reporting. It observes the signaling module through the event bus only, so
// its numbers trail the store by the bus latency.
type Module struct {
	mu        sync.Mutex
	peers     int
	occupancy map[string]int // roomID -> member count
	logger    *slog.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new presence module.
func NewModule() *Module {
	return &Module{
		occupancy: make(map[string]int),
		logger:    slog.Default(),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "presence"
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("presence module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.mu.Lock()
	peers := m.peers
	m.mu.Unlock()
	m.logger.Info("presence module stopped", "peers", peers)
	return nil
}

// Health returns the health status with current occupancy details.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make(map[string]any, len(m.occupancy))
	for roomID, count := range m.occupancy {
		rooms[roomID] = count
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_peers": m.peers,
			"active_rooms":    len(rooms),
			"room_occupancy":  rooms,
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.PeerConnectedV1, m.handlePeerConnected, m,
	); err != nil {
		return fmt.Errorf("failed to register PeerConnected consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PeerJoinedV1, m.handlePeerJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register PeerJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PeerLeftV1, m.handlePeerLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register PeerLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PeerDisconnectedV1, m.handlePeerDisconnected, m,
	); err != nil {
		return fmt.Errorf("failed to register PeerDisconnected consumer: %w", err)
	}

	m.logger.Info("registered presence event consumers")
	return nil
}

// Event handlers

func (m *Module) handlePeerConnected(_ context.Context, event events.PeerConnectedEvent, _ *mono.Msg) error {
	m.mu.Lock()
	m.peers++
	m.mu.Unlock()

	m.logger.Debug("peer connected", "peerID", event.PeerID)
	return nil
}

func (m *Module) handlePeerJoined(_ context.Context, event events.PeerJoinedEvent, _ *mono.Msg) error {
	m.mu.Lock()
	m.occupancy[event.RoomID]++
	count := m.occupancy[event.RoomID]
	m.mu.Unlock()

	m.logger.Debug("peer joined room", "peerID", event.PeerID, "roomID", event.RoomID, "occupancy", count)
	return nil
}

func (m *Module) handlePeerLeft(_ context.Context, event events.PeerLeftEvent, _ *mono.Msg) error {
	m.mu.Lock()
	if count := m.occupancy[event.RoomID]; count <= 1 {
		delete(m.occupancy, event.RoomID)
	} else {
		m.occupancy[event.RoomID] = count - 1
	}
	m.mu.Unlock()

	m.logger.Debug("peer left room", "peerID", event.PeerID, "roomID", event.RoomID)
	return nil
}

func (m *Module) handlePeerDisconnected(_ context.Context, event events.PeerDisconnectedEvent, _ *mono.Msg) error {
	m.mu.Lock()
	if m.peers > 0 {
		m.peers--
	}
	m.mu.Unlock()

	m.logger.Debug("peer disconnected", "peerID", event.PeerID)
	return nil
}
