package presence

import (
	"context"
	"testing"
	"time"

	"github.com/amirhomidov08-cmyk/videoserver/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connected(t *testing.T, m *Module, peerID string) {
	t.Helper()
	err := m.handlePeerConnected(context.Background(), events.PeerConnectedEvent{PeerID: peerID, Timestamp: time.Now()}, nil)
	require.NoError(t, err)
}

func joined(t *testing.T, m *Module, roomID, peerID string) {
	t.Helper()
	err := m.handlePeerJoined(context.Background(), events.PeerJoinedEvent{RoomID: roomID, PeerID: peerID, Timestamp: time.Now()}, nil)
	require.NoError(t, err)
}

func left(t *testing.T, m *Module, roomID, peerID string) {
	t.Helper()
	err := m.handlePeerLeft(context.Background(), events.PeerLeftEvent{RoomID: roomID, PeerID: peerID, Timestamp: time.Now()}, nil)
	require.NoError(t, err)
}

func disconnected(t *testing.T, m *Module, peerID string) {
	t.Helper()
	err := m.handlePeerDisconnected(context.Background(), events.PeerDisconnectedEvent{PeerID: peerID, Timestamp: time.Now()}, nil)
	require.NoError(t, err)
}

func TestModule_TracksOccupancy(t *testing.T) {
	m := NewModule()

	connected(t, m, "a")
	connected(t, m, "b")
	joined(t, m, "r1", "a")
	joined(t, m, "r1", "b")

	health := m.Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Equal(t, 2, health.Details["connected_peers"])
	assert.Equal(t, 1, health.Details["active_rooms"])
	occupancy := health.Details["room_occupancy"].(map[string]any)
	assert.Equal(t, 2, occupancy["r1"])

	left(t, m, "r1", "a")
	disconnected(t, m, "a")

	health = m.Health(context.Background())
	assert.Equal(t, 1, health.Details["connected_peers"])
	occupancy = health.Details["room_occupancy"].(map[string]any)
	assert.Equal(t, 1, occupancy["r1"])
}

func TestModule_DropsEmptiedRooms(t *testing.T) {
	m := NewModule()

	connected(t, m, "a")
	joined(t, m, "r1", "a")
	left(t, m, "r1", "a")
	disconnected(t, m, "a")

	health := m.Health(context.Background())
	assert.Equal(t, 0, health.Details["connected_peers"])
	assert.Equal(t, 0, health.Details["active_rooms"])
}

func TestModule_CountersNeverGoNegative(t *testing.T) {
	m := NewModule()

	disconnected(t, m, "ghost")
	left(t, m, "r1", "ghost")

	health := m.Health(context.Background())
	assert.Equal(t, 0, health.Details["connected_peers"])
	assert.Equal(t, 0, health.Details["active_rooms"])
}
