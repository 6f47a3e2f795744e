package channels

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/xcloudgo/gssv-stream/packets"
)

// ControlProcessor implements the control data channel: the shared
// authorization/gamepad-presence start sequence and keyframe requests.
// Grounded on gamestreaming_webrtc/src/channels/control.rs.
type ControlProcessor struct {
	sink Sink
	log  zerolog.Logger
	send func(data []byte) error
}

func NewControlProcessor(sink Sink, send func(data []byte) error, log zerolog.Logger) *ControlProcessor {
	return &ControlProcessor{sink: sink, send: send, log: log.With().Str("channel", "control").Logger()}
}

func (p *ControlProcessor) Type() Type { return TypeControl }

func (p *ControlProcessor) OnOpen() {
	p.sink.Send(Event{Channel: TypeControl, Kind: EventChannelOpen})
}

func (p *ControlProcessor) OnClose() {
	p.sink.Send(Event{Channel: TypeControl, Kind: EventChannelClose})
}

// Start sends the same authorizationRequest/gamepadChanged bundle the
// message channel sends, matching control.rs's start().
func (p *ControlProcessor) Start() {
	p.sendMessage("/streaming/authorization/authorizationrequest", packets.AuthorizationRequest{AccessKey: packets.GSSVAccessKey})
	p.sendMessage("/streaming/input/gamepadchanged", packets.GamepadChanged{GamepadIndex: 0, WasAdded: true})
}

// RequestKeyframe asks the server for an IDR frame, matching control.rs's
// request_keyframe.
func (p *ControlProcessor) RequestKeyframe() {
	p.sendEnvelope(func(id string) (packets.Envelope, error) {
		return packets.NewMessageEnvelope(id, "/streaming/video/videokeyframerequested", packets.NewVideoKeyframeRequested())
	})
}

// OnMessage currently has no inbound control messages to handle;
// anything received is logged and dropped.
func (p *ControlProcessor) OnMessage(msg webrtc.DataChannelMessage) error {
	p.log.Debug().Int("bytes", len(msg.Data)).Msg("control channel message ignored")
	return nil
}

func (p *ControlProcessor) sendMessage(target string, data any) {
	p.sendEnvelope(func(id string) (packets.Envelope, error) {
		return packets.NewMessageEnvelope(id, target, data)
	})
}

func (p *ControlProcessor) sendEnvelope(build func(id string) (packets.Envelope, error)) {
	env, err := build(uuid.NewString())
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to encode control envelope")
		return
	}
	raw, err := json.Marshal(env)
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to encode control envelope")
		return
	}
	if err := p.send(raw); err != nil {
		p.log.Warn().Err(err).Msg("failed to send on control channel")
	}
}
