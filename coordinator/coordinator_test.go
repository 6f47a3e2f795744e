package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/xcloudgo/gssv-stream/channels"
	"github.com/xcloudgo/gssv-stream/gssv"
	"github.com/xcloudgo/gssv-stream/webrtcengine"
)

func testEngine(t *testing.T) *webrtcengine.Engine {
	t.Helper()
	e, err := webrtcengine.New("stun:stun.l.google.com:19302", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestSenderForErrorsWhenChannelNotYetOpen(t *testing.T) {
	client, err := gssv.NewClient(gssv.PlatformHome, "token")
	require.NoError(t, err)

	c := New(client, testEngine(t), Config{}, zerolog.Nop())
	send := c.senderFor("nonexistent")
	err = send([]byte("x"))
	require.Error(t, err)
}

func TestConsumeEventsStopsOnCancel(t *testing.T) {
	client, err := gssv.NewClient(gssv.PlatformHome, "token")
	require.NoError(t, err)

	c := New(client, testEngine(t), Config{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.consumeEvents(ctx)
		close(done)
	}()

	c.sink.Send(channels.Event{Channel: channels.TypeMessage, Kind: channels.EventChannelOpen})
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumeEvents did not stop after cancel")
	}
}

func TestOpenChannelsWiresAllFourProcessors(t *testing.T) {
	client, err := gssv.NewClient(gssv.PlatformHome, "token")
	require.NoError(t, err)

	c := New(client, testEngine(t), Config{}, zerolog.Nop())
	c.openChannels()

	require.NotNil(t, c.message)
	require.NotNil(t, c.control)
	require.NotNil(t, c.input)
	require.NotNil(t, c.chat)
}
