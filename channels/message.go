package channels

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/xcloudgo/gssv-stream/packets"
)

// MessageProcessor implements the message data channel: handshake,
// authorization, and the fixed configuration-message bundle sent after
// HandshakeAck. Grounded on
// gamestreaming_webrtc/src/channels/message.rs.
type MessageProcessor struct {
	sink Sink
	log  zerolog.Logger
	send func(data []byte) error
}

// NewMessageProcessor builds a MessageProcessor that writes outbound
// frames via send and reports events on sink.
func NewMessageProcessor(sink Sink, send func(data []byte) error, log zerolog.Logger) *MessageProcessor {
	return &MessageProcessor{sink: sink, send: send, log: log.With().Str("channel", "message").Logger()}
}

func (p *MessageProcessor) Type() Type { return TypeMessage }

// OnOpen sends the initial Handshake envelope, matching message.rs's
// on_open.
func (p *MessageProcessor) OnOpen() {
	env := packets.NewHandshakeEnvelope(uuid.NewString())
	p.sendEnvelope(env)
	p.sink.Send(Event{Channel: TypeMessage, Kind: EventChannelOpen})
}

func (p *MessageProcessor) OnClose() {
	p.sink.Send(Event{Channel: TypeMessage, Kind: EventChannelClose})
}

// Start sends the authorization request and gamepad-presence
// announcement, matching message.rs's start().
func (p *MessageProcessor) Start() {
	p.sendMessage("/streaming/authorization/authorizationrequest", packets.AuthorizationRequest{AccessKey: packets.GSSVAccessKey})
	p.sendMessage("/streaming/input/gamepadchanged", packets.GamepadChanged{GamepadIndex: 0, WasAdded: true})
}

// OnMessage dispatches an inbound JSON envelope. A HandshakeAck triggers
// the fixed client-configuration bundle message.rs sends in response;
// any other message type is unhandled.
func (p *MessageProcessor) OnMessage(msg webrtc.DataChannelMessage) error {
	var env packets.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		return errors.Wrap(err, "channels: decode message envelope")
	}
	switch env.Type {
	case "HandshakeAck":
		p.sendConfigurationBundle()
		return nil
	default:
		return errors.Errorf("channels: unhandled message type %q", env.Type)
	}
}

func (p *MessageProcessor) sendConfigurationBundle() {
	p.sendMessage("/streaming/systemUi/configuration", packets.DefaultSystemUIConfiguration())
	p.sendMessage("/streaming/properties/clientappinstallidchanged", packets.ClientAppInstallIDChanged{ClientAppInstallID: uuid.NewString()})
	p.sendMessage("/streaming/characteristics/orientationchanged", packets.OrientationChanged{Orientation: 0})
	p.sendMessage("/streaming/characteristics/touchinputenabledchanged", packets.TouchInputEnabledChanged{TouchInputEnabled: false})
	p.sendMessage("/streaming/characteristics/clientdevicecapabilities", struct{}{})
	p.sendMessage("/streaming/characteristics/dimensionschanged", packets.DefaultDimensions())
}

func (p *MessageProcessor) sendMessage(target string, data any) {
	env, err := packets.NewMessageEnvelope(uuid.NewString(), target, data)
	if err != nil {
		p.log.Warn().Err(err).Str("target", target).Msg("failed to encode message envelope")
		return
	}
	p.sendEnvelope(env)
}

func (p *MessageProcessor) sendEnvelope(env packets.Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to encode envelope")
		return
	}
	if err := p.send(raw); err != nil {
		p.log.Warn().Err(err).Msg("failed to send on message channel")
	}
}
