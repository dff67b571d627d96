package signaling

import "encoding/json"

// Conn is the write side of one client connection. The transport layer owns
// the read side; the router only ever sends. Implementations must be safe
// for concurrent use, since several peers may deliver to the same connection
// at once.
type Conn interface {
	Send(data []byte) error
}

// Message types recognized on inbound frames.
const (
	TypeJoin      = "join"
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeCandidate = "candidate"
)

// Message types generated by the server.
const (
	TypeYourID     = "your-id"
	TypeUserJoined = "user-joined"
	TypeUserLeft   = "user-left"
)

// notice is a server-generated notification about a peer.
type notice struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

func encodeNotice(msgType, userID string) []byte {
	data, _ := json.Marshal(notice{Type: msgType, UserID: userID})
	return data
}

// envelope holds one decoded wire message. Values stay raw so that opaque
// negotiation fields (SDP, ICE candidates, anything else the clients agree
// on) survive forwarding byte for byte.
type envelope map[string]json.RawMessage

// decodeEnvelope parses a frame into an envelope. Frames that are not a JSON
// object are reported as undecodable.
func decodeEnvelope(raw []byte) (envelope, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env == nil {
		return nil, false
	}
	return env, true
}

// stringField returns the named field when it is present and a JSON string,
// empty otherwise.
func (e envelope) stringField(key string) string {
	raw, ok := e[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// forward re-encodes the message for delivery to its target: the routing
// target is dropped and the sender identity stamped on. Every other field is
// preserved unchanged.
func (e envelope) forward(from string) ([]byte, error) {
	delete(e, "to")
	id, err := json.Marshal(from)
	if err != nil {
		return nil, err
	}
	e["from"] = id
	return json.Marshal(e)
}
