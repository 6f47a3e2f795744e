package channels

import (
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/xcloudgo/gssv-stream/packets"
)

// InputProcessor owns the strictly-monotonic sequence number and the
// pending gamepad/metadata queues for the input data channel. Grounded on
// gamestreaming_webrtc/src/channels/input.rs's InputChannel.
type InputProcessor struct {
	sink      Sink
	log       zerolog.Logger
	send      func(data []byte) error
	timeOrigin time.Time

	mu             sync.Mutex
	sequenceNum    uint32
	metadataQueue  []packets.InputMetadataEntry
	inputFrames    []packets.GamepadData
	rumbleEnabled  bool
}

func NewInputProcessor(sink Sink, send func(data []byte) error, log zerolog.Logger) *InputProcessor {
	return &InputProcessor{
		sink:       sink,
		send:       send,
		log:        log.With().Str("channel", "input").Logger(),
		timeOrigin: time.Now(),
	}
}

func (p *InputProcessor) Type() Type { return TypeInput }

func (p *InputProcessor) OnOpen() {
	p.sink.Send(Event{Channel: TypeInput, Kind: EventChannelOpen})
}

func (p *InputProcessor) OnClose() {
	p.sink.Send(Event{Channel: TypeInput, Kind: EventChannelClose})
}

// Start sends an initial client-metadata report, matching input.rs's
// start().
func (p *InputProcessor) Start() {
	report := packets.InputClientMetadata{
		ReportType:  packets.InputReportClientMetadata,
		SequenceNum: p.nextSequenceNum(),
		Timestamp:   p.timestamp(),
	}
	p.sendFrame(report.Marshal())
}

func (p *InputProcessor) nextSequenceNum() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	seq := p.sequenceNum
	p.sequenceNum++
	return seq
}

func (p *InputProcessor) timestamp() float64 {
	return time.Since(p.timeOrigin).Seconds()
}

// OnButtonPress records a new gamepad sample and immediately flushes a
// packet, matching input.rs's on_button_press.
func (p *InputProcessor) OnButtonPress(sample packets.GamepadData) {
	p.mu.Lock()
	p.inputFrames = append(p.inputFrames, sample)
	p.mu.Unlock()
	p.flush()
}

// OnMetadata queues a latency sample without flushing immediately,
// matching input.rs's on_metadata.
func (p *InputProcessor) OnMetadata(entry packets.InputMetadataEntry) {
	p.mu.Lock()
	p.metadataQueue = append(p.metadataQueue, entry)
	p.mu.Unlock()
}

// flush drains both queues and emits one InputGamepad and/or
// InputMetadata packet per non-empty queue, matching
// create_input_packet's drain-then-wrap behavior.
func (p *InputProcessor) flush() {
	p.mu.Lock()
	frames := p.inputFrames
	p.inputFrames = nil
	metadata := p.metadataQueue
	p.metadataQueue = nil
	p.mu.Unlock()

	if len(frames) > 0 {
		pkt := packets.InputGamepad{
			ReportType:  packets.InputReportGamepad,
			SequenceNum: p.nextSequenceNum(),
			Timestamp:   p.timestamp(),
			Gamepads:    frames,
		}
		p.sendFrame(pkt.Marshal())
	}
	if len(metadata) > 0 {
		pkt := packets.InputMetadata{
			ReportType:  packets.InputReportMetadata,
			SequenceNum: p.nextSequenceNum(),
			Timestamp:   p.timestamp(),
			Metadata:    metadata,
		}
		p.sendFrame(pkt.Marshal())
	}
}

// OnMessage parses an inbound InputRumblePacket and forwards it as a
// GamepadRumble event, matching GssvChannel::on_message's vibration_report
// forwarding.
func (p *InputProcessor) OnMessage(msg webrtc.DataChannelMessage) error {
	pkt, err := packets.UnmarshalInputRumblePacket(msg.Data)
	if err != nil {
		return errors.Wrap(err, "channels: decode rumble packet")
	}
	if pkt.ReportType&packets.InputReportVibration == 0 {
		return errors.New("channels: input channel message without vibration report")
	}
	p.sink.Send(Event{Channel: TypeInput, Kind: EventGamepadRumble, Payload: pkt})
	return nil
}

func (p *InputProcessor) sendFrame(data []byte) {
	if err := p.send(data); err != nil {
		p.log.Warn().Err(err).Msg("failed to send on input channel")
	}
}
