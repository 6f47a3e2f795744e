package channels_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/channels"
)

func TestKeepaliveStopsOnContextCancel(t *testing.T) {
	sink := make(channels.Sink, 1)
	var calls int32
	k := channels.NewKeepalive(sink, 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	require.Greater(t, atomic.LoadInt32(&calls), int32(0))
}

func TestKeepaliveGivesUpAfterRepeatedFailures(t *testing.T) {
	sink := make(channels.Sink, 1)
	k := channels.NewKeepalive(sink, 2*time.Millisecond, func(ctx context.Context) error {
		return errors.New("boom")
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not give up after repeated failures")
	}

	ev := <-sink
	require.Equal(t, channels.TypeMessage, ev.Channel)
	require.Equal(t, channels.EventChannelClose, ev.Kind)
}
