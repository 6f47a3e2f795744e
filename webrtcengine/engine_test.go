package webrtcengine_test

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/webrtcengine"
)

func TestNewRegistersFixedDataChannels(t *testing.T) {
	e, err := webrtcengine.New("stun:stun.l.google.com:19302", zerolog.Nop())
	require.NoError(t, err)
	defer e.Close()

	for _, label := range []string{"input", "control", "message", "chat"} {
		require.NotNilf(t, e.Channel(label), "channel %q should exist", label)
	}
	require.Nil(t, e.Channel("video"))
}

func TestCreateOfferProducesSDP(t *testing.T) {
	e, err := webrtcengine.New("stun:stun.l.google.com:19302", zerolog.Nop())
	require.NoError(t, err)
	defer e.Close()

	offer, err := e.CreateOffer()
	require.NoError(t, err)
	require.NotEmpty(t, offer.SDP)
}

func TestCallbackRegistrationDoesNotPanic(t *testing.T) {
	e, err := webrtcengine.New("stun:stun.l.google.com:19302", zerolog.Nop())
	require.NoError(t, err)
	defer e.Close()

	e.OnChannelOpen(func(label string, dc *webrtc.DataChannel) {})
	e.OnChannelClose(func(label string) {})
	e.OnChannelMessage(func(label string, msg webrtc.DataChannelMessage) {})
	e.OnRemoteTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {})
}
