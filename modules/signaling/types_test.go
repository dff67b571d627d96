package signaling

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "object", raw: `{"type":"join","roomId":"r1"}`, ok: true},
		{name: "empty object", raw: `{}`, ok: true},
		{name: "truncated", raw: `{"type":`, ok: false},
		{name: "string", raw: `"join"`, ok: false},
		{name: "number", raw: `7`, ok: false},
		{name: "array", raw: `[1,2]`, ok: false},
		{name: "null", raw: `null`, ok: false},
		{name: "empty", raw: ``, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := decodeEnvelope([]byte(tt.raw))
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestEnvelope_StringField(t *testing.T) {
	env, ok := decodeEnvelope([]byte(`{"type":"join","roomId":"r1","n":5,"obj":{}}`))
	require.True(t, ok)

	assert.Equal(t, "join", env.stringField("type"))
	assert.Equal(t, "r1", env.stringField("roomId"))
	assert.Empty(t, env.stringField("missing"))
	assert.Empty(t, env.stringField("n"), "non-string values read as empty")
	assert.Empty(t, env.stringField("obj"))
}

func TestEnvelope_Forward(t *testing.T) {
	env, ok := decodeEnvelope([]byte(`{"type":"offer","to":"peer-b","sdp":"v=0\r\no=-","ice":{"c":"candidate:1"}}`))
	require.True(t, ok)

	data, err := env.forward("peer-a")
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))

	assert.Equal(t, "offer", msg["type"])
	assert.Equal(t, "peer-a", msg["from"])
	assert.NotContains(t, msg, "to")
	assert.Equal(t, "v=0\r\no=-", msg["sdp"])
	assert.Equal(t, map[string]any{"c": "candidate:1"}, msg["ice"])
}

func TestEncodeNotice(t *testing.T) {
	var msg notice
	require.NoError(t, json.Unmarshal(encodeNotice(TypeUserJoined, "peer-a"), &msg))
	assert.Equal(t, "user-joined", msg.Type)
	assert.Equal(t, "peer-a", msg.UserID)
}
