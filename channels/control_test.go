package channels_test

import (
	"encoding/json"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/channels"
	"github.com/xcloudgo/gssv-stream/packets"
)

func TestControlProcessorStartSendsAuthAndGamepad(t *testing.T) {
	sink := make(channels.Sink, 2)
	var sent []packets.Envelope
	p := channels.NewControlProcessor(sink, func(data []byte) error {
		var env packets.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return err
		}
		sent = append(sent, env)
		return nil
	}, zerolog.Nop())

	p.Start()
	require.Len(t, sent, 2)
	require.Equal(t, "/streaming/authorization/authorizationrequest", sent[0].Target)
	require.Equal(t, "/streaming/input/gamepadchanged", sent[1].Target)
}

func TestControlProcessorRequestKeyframe(t *testing.T) {
	sink := make(channels.Sink, 1)
	var sent packets.Envelope
	p := channels.NewControlProcessor(sink, func(data []byte) error {
		return json.Unmarshal(data, &sent)
	}, zerolog.Nop())

	p.RequestKeyframe()
	require.Equal(t, "/streaming/video/videokeyframerequested", sent.Target)
}

func TestControlProcessorOnMessageIgnoredNoError(t *testing.T) {
	p := channels.NewControlProcessor(make(channels.Sink, 1), func(data []byte) error { return nil }, zerolog.Nop())
	err := p.OnMessage(webrtc.DataChannelMessage{Data: []byte("whatever")})
	require.NoError(t, err)
}
