package channels

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

// ChatProcessor implements the chat data channel, which exists only to
// signal presence: the GSSV server never sends meaningful traffic over it
// and the client never sends voice data client-side, matching
// gamestreaming_webrtc/src/channels/chat.rs's no-op ChatChannel.
type ChatProcessor struct {
	sink Sink
	log  zerolog.Logger
}

func NewChatProcessor(sink Sink, log zerolog.Logger) *ChatProcessor {
	return &ChatProcessor{sink: sink, log: log.With().Str("channel", "chat").Logger()}
}

func (p *ChatProcessor) Type() Type { return TypeChat }

func (p *ChatProcessor) OnOpen() {
	p.sink.Send(Event{Channel: TypeChat, Kind: EventChannelOpen})
}

func (p *ChatProcessor) OnClose() {
	p.sink.Send(Event{Channel: TypeChat, Kind: EventChannelClose})
}

func (p *ChatProcessor) OnMessage(msg webrtc.DataChannelMessage) error {
	p.log.Debug().Int("bytes", len(msg.Data)).Msg("chat channel message ignored")
	return nil
}
