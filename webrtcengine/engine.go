// Package webrtcengine wires up the pion/webrtc/v4 PeerConnection used by
// the WebRTC transport: codec registration, the recvonly video /
// sendrecv audio transceivers, the four fixed data channels, and a
// periodic PLI sender. Grounded on
// n0remac-robot-webrtc/webrtc/client.go's MediaEngine/transceiver setup
// and client/client.go's CreateDataChannel/OnTrack wiring, generalized
// from that repo's ad hoc two-track video-conferencing demo to the GSSV
// channel layout in spec.md §4.G.
package webrtcengine

import (
	"sync"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/webrtc/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	h264PayloadType = 102
	opusPayloadType = 111

	pliInterval = 3 * time.Second
)

// ChannelSpec names the four fixed GSSV data channels, per spec.md §4.G.
type ChannelSpec struct {
	Label    string
	ID       uint16
	Protocol string
	Ordered  bool
}

var channelSpecs = []ChannelSpec{
	{Label: "input", ID: 3, Protocol: "1.0", Ordered: true},
	{Label: "control", ID: 4, Protocol: "controlV1", Ordered: true},
	{Label: "message", ID: 5, Protocol: "messageV1", Ordered: true},
	{Label: "chat", ID: 6, Protocol: "chatV1", Ordered: true},
}

// Engine wraps one PeerConnection and the channel/track callbacks layered
// on top of it.
type Engine struct {
	pc  *webrtc.PeerConnection
	log zerolog.Logger

	mu       sync.Mutex
	channels map[string]*webrtc.DataChannel

	onChannelOpen    func(label string, dc *webrtc.DataChannel)
	onChannelClose   func(label string)
	onChannelMessage func(label string, msg webrtc.DataChannelMessage)
	onRemoteTrack    func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)

	stopPLI chan struct{}
}

// New builds an Engine with one STUN server and the standard GSSV codec
// registrations: H264 payload type 102 clock 90000 (recvonly video),
// Opus payload type 111 clock 48000/2ch (sendrecv audio).
func New(stunURL string, log zerolog.Logger) (*Engine, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType: webrtc.MimeTypeH264, ClockRate: 90000, Channels: 0,
			SDPFmtpLine: "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f",
		},
		PayloadType: h264PayloadType,
	}, webrtc.RTPCodecTypeVideo); err != nil {
		return nil, errors.Wrap(err, "webrtcengine: register H264 codec")
	}
	if err := m.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2,
		},
		PayloadType: opusPayloadType,
	}, webrtc.RTPCodecTypeAudio); err != nil {
		return nil, errors.Wrap(err, "webrtcengine: register Opus codec")
	}

	api := webrtc.NewAPI(webrtc.WithMediaEngine(m))

	pc, err := api.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: []string{stunURL}}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "webrtcengine: create peer connection")
	}

	e := &Engine{
		pc:       pc,
		log:      log.With().Str("component", "webrtcengine").Logger(),
		channels: make(map[string]*webrtc.DataChannel),
		stopPLI:  make(chan struct{}),
	}

	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	}); err != nil {
		return nil, errors.Wrap(err, "webrtcengine: add video transceiver")
	}
	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionSendrecv,
	}); err != nil {
		return nil, errors.Wrap(err, "webrtcengine: add audio transceiver")
	}

	for _, spec := range channelSpecs {
		id := spec.ID
		ordered := spec.Ordered
		dc, err := pc.CreateDataChannel(spec.Label, &webrtc.DataChannelInit{
			ID:       &id,
			Protocol: &spec.Protocol,
			Ordered:  &ordered,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "webrtcengine: create %s data channel", spec.Label)
		}
		e.wireChannel(spec.Label, dc)
	}

	pc.OnTrack(e.handleTrack)

	return e, nil
}

func (e *Engine) wireChannel(label string, dc *webrtc.DataChannel) {
	e.mu.Lock()
	e.channels[label] = dc
	e.mu.Unlock()

	dc.OnOpen(func() {
		e.log.Debug().Str("channel", label).Msg("data channel open")
		if e.onChannelOpen != nil {
			e.onChannelOpen(label, dc)
		}
	})
	dc.OnClose(func() {
		e.log.Debug().Str("channel", label).Msg("data channel closed")
		if e.onChannelClose != nil {
			e.onChannelClose(label)
		}
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		if e.onChannelMessage != nil {
			e.onChannelMessage(label, msg)
		}
	})
}

func (e *Engine) handleTrack(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
	e.log.Info().Str("kind", track.Kind().String()).Uint32("ssrc", uint32(track.SSRC())).Msg("remote track started")
	go e.sendPLIPeriodically(track.SSRC())
	if e.onRemoteTrack != nil {
		e.onRemoteTrack(track, receiver)
	}
}

// sendPLIPeriodically requests a keyframe every pliInterval for ssrc,
// grounded on the ticker-goroutine shape of the deleted
// client/motorshield.go's PWM.run(), repurposed here for a network timer
// instead of a hardware duty cycle.
func (e *Engine) sendPLIPeriodically(ssrc webrtc.SSRC) {
	ticker := time.NewTicker(pliInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := e.pc.WriteRTCP([]rtcp.Packet{&rtcp.PictureLossIndication{MediaSSRC: uint32(ssrc)}}); err != nil {
				e.log.Warn().Err(err).Msg("failed to send PLI")
				return
			}
		case <-e.stopPLI:
			return
		}
	}
}

// OnChannelOpen registers a callback invoked when any data channel opens.
func (e *Engine) OnChannelOpen(f func(label string, dc *webrtc.DataChannel)) { e.onChannelOpen = f }

// OnChannelClose registers a callback invoked when any data channel closes.
func (e *Engine) OnChannelClose(f func(label string)) { e.onChannelClose = f }

// OnChannelMessage registers a callback invoked on any data channel
// message.
func (e *Engine) OnChannelMessage(f func(label string, msg webrtc.DataChannelMessage)) {
	e.onChannelMessage = f
}

// OnRemoteTrack registers a callback invoked when a remote media track
// starts.
func (e *Engine) OnRemoteTrack(f func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)) {
	e.onRemoteTrack = f
}

// Channel returns the named data channel, or nil if unknown.
func (e *Engine) Channel(label string) *webrtc.DataChannel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.channels[label]
}

// CreateOffer creates and sets the local SDP offer.
func (e *Engine) CreateOffer() (webrtc.SessionDescription, error) {
	offer, err := e.pc.CreateOffer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, errors.Wrap(err, "webrtcengine: create offer")
	}
	if err := e.pc.SetLocalDescription(offer); err != nil {
		return webrtc.SessionDescription{}, errors.Wrap(err, "webrtcengine: set local description")
	}
	return offer, nil
}

// SetRemoteAnswer applies the server's SDP answer.
func (e *Engine) SetRemoteAnswer(sdp string) error {
	return e.pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: sdp})
}

// AddICECandidate applies one remote ICE candidate.
func (e *Engine) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	return e.pc.AddICECandidate(candidate)
}

// Close tears down the peer connection, cascading to every data channel
// and stopping all PLI tickers.
func (e *Engine) Close() error {
	close(e.stopPLI)
	return e.pc.Close()
}
