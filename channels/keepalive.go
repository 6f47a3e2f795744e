package channels

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// maxKeepaliveFailures bounds how many consecutive keepalive failures are
// tolerated before Keepalive gives up and reports the session dead,
// matching client.rs's keepalive loop terminating after repeated
// send_keepalive errors rather than retrying forever.
const maxKeepaliveFailures = 3

// Keepalive drives the periodic session-keepalive POST. Unlike the other
// processors it is not attached to a WebRTC data channel; it runs its own
// ticker against the gssv.Client, grounded on client.rs's keepalive task
// and on the ticker-goroutine shape used for PLI in webrtcengine.
type Keepalive struct {
	sink     Sink
	log      zerolog.Logger
	interval time.Duration
	send     func(ctx context.Context) error
}

// NewKeepalive builds a Keepalive that calls send every interval. send is
// typically gssv.Client.SendKeepalive bound to a session ID.
func NewKeepalive(sink Sink, interval time.Duration, send func(ctx context.Context) error, log zerolog.Logger) *Keepalive {
	return &Keepalive{
		sink:     sink,
		log:      log.With().Str("component", "keepalive").Logger(),
		interval: interval,
		send:     send,
	}
}

// Run ticks until ctx is canceled or maxKeepaliveFailures consecutive
// sends fail, at which point it reports a channel-close event for
// TypeMessage to signal the coordinator the session should tear down.
func (k *Keepalive) Run(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := k.send(ctx); err != nil {
				failures++
				k.log.Warn().Err(err).Int("failures", failures).Msg("keepalive failed")
				if failures >= maxKeepaliveFailures {
					k.log.Error().Msg("keepalive giving up after repeated failures")
					k.sink.Send(Event{Channel: TypeMessage, Kind: EventChannelClose})
					return
				}
				continue
			}
			failures = 0
		}
	}
}
