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

func TestMessageProcessorOnOpenSendsHandshake(t *testing.T) {
	sink := make(channels.Sink, 1)
	var sent packets.Envelope
	p := channels.NewMessageProcessor(sink, func(data []byte) error {
		return json.Unmarshal(data, &sent)
	}, zerolog.Nop())

	p.OnOpen()
	require.Equal(t, "Handshake", sent.Type)

	ev := <-sink
	require.Equal(t, channels.TypeMessage, ev.Channel)
	require.Equal(t, channels.EventChannelOpen, ev.Kind)
}

func TestMessageProcessorHandshakeAckTriggersConfigBundle(t *testing.T) {
	sink := make(channels.Sink, 1)
	var sent []packets.Envelope
	p := channels.NewMessageProcessor(sink, func(data []byte) error {
		var env packets.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return err
		}
		sent = append(sent, env)
		return nil
	}, zerolog.Nop())

	ack, err := json.Marshal(packets.Envelope{Type: "HandshakeAck", ID: "1", CV: ""})
	require.NoError(t, err)

	err = p.OnMessage(webrtc.DataChannelMessage{Data: ack})
	require.NoError(t, err)
	require.Len(t, sent, 6)
	require.Equal(t, "/streaming/systemUi/configuration", sent[0].Target)
	require.Equal(t, "/streaming/characteristics/dimensionschanged", sent[5].Target)
}

func TestMessageProcessorUnhandledTypeReturnsError(t *testing.T) {
	p := channels.NewMessageProcessor(make(channels.Sink, 1), func(data []byte) error { return nil }, zerolog.Nop())

	msg, err := json.Marshal(packets.Envelope{Type: "SomethingElse", ID: "1"})
	require.NoError(t, err)

	err = p.OnMessage(webrtc.DataChannelMessage{Data: msg})
	require.Error(t, err)
}
