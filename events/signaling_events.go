package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// PeerConnectedEvent is emitted when a connection registers and is told its identity.
type PeerConnectedEvent struct {
	PeerID    string    `json:"peer_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PeerJoinedEvent is emitted when a peer joins a room.
type PeerJoinedEvent struct {
	RoomID    string    `json:"room_id"`
	PeerID    string    `json:"peer_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PeerLeftEvent is emitted when a peer leaves a room, either by moving to
// another room or by disconnecting.
type PeerLeftEvent struct {
	RoomID    string    `json:"room_id"`
	PeerID    string    `json:"peer_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PeerDisconnectedEvent is emitted when a connection goes away.
type PeerDisconnectedEvent struct {
	PeerID    string    `json:"peer_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the signaling domain.
var (
	PeerConnectedV1 = helper.EventDefinition[PeerConnectedEvent](
		"signaling",
		"PeerConnected",
		"v1",
	)

	PeerJoinedV1 = helper.EventDefinition[PeerJoinedEvent](
		"signaling",
		"PeerJoined",
		"v1",
	)

	PeerLeftV1 = helper.EventDefinition[PeerLeftEvent](
		"signaling",
		"PeerLeft",
		"v1",
	)

	PeerDisconnectedV1 = helper.EventDefinition[PeerDisconnectedEvent](
		"signaling",
		"PeerDisconnected",
		"v1",
	)
)
