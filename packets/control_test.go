package packets_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/packets"
)

func TestNewMessageEnvelopeWrapsContentAsJSONString(t *testing.T) {
	env, err := packets.NewMessageEnvelope("id-1", "/streaming/characteristics/dimensionschanged", packets.DefaultDimensions())
	require.NoError(t, err)
	require.Equal(t, "Message", env.Type)
	require.Equal(t, "/streaming/characteristics/dimensionschanged", env.Target)

	var dims packets.Dimensions
	require.NoError(t, json.Unmarshal([]byte(env.Content), &dims))
	require.Equal(t, packets.DefaultDimensions(), dims)
}

func TestDefaultSystemUIConfiguration(t *testing.T) {
	cfg := packets.DefaultSystemUIConfiguration()
	require.Equal(t, []int{10, 19, 31, 27, 32, -41}, cfg.SystemUIs)
	require.Equal(t, []int{0, 1, 0}, cfg.Version)
}

func TestHandshakeEnvelope(t *testing.T) {
	env := packets.NewHandshakeEnvelope("abc")
	require.Equal(t, "Handshake", env.Type)
	require.Equal(t, "messageV1", env.Version)
	require.Equal(t, "abc", env.ID)
}
