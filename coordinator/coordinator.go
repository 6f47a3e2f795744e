// Package coordinator drives the full xHome session lifecycle:
// create -> provision -> exchange -> open channels -> run -> teardown.
// Grounded on gamestreaming_webrtc/src/client.rs's start_stream
// sequencing, translated from its async task-per-subsystem shape into one
// goroutine per long-running activity, all selecting on a shared
// ctx.Done().
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/xcloudgo/gssv-stream/channels"
	"github.com/xcloudgo/gssv-stream/gssv"
	"github.com/xcloudgo/gssv-stream/srtp"
	"github.com/xcloudgo/gssv-stream/webrtcengine"
)

// ErrNoConfig is returned when Run is asked to open channels before a
// session configuration has been fetched.
var ErrNoConfig = errors.New("coordinator: session configuration not available")

// Config selects which title/console to stream and how to authenticate,
// matching client.rs's StartStreamRequest parameters.
type Config struct {
	Platform gssv.Platform
	TitleID  string
	ServerID string
	StunURL  string

	KeepaliveInterval time.Duration
}

// Coordinator owns one streaming session end to end: the REST
// provisioning client, the WebRTC engine, the native SRTP context derived
// from the session's master secret, and the single channel-event queue
// every channels.Processor funnels through.
type Coordinator struct {
	client  *gssv.Client
	engine  *webrtcengine.Engine
	cfg     Config
	log     zerolog.Logger

	sink channels.Sink

	mu        sync.Mutex
	sessionID string
	srtpCtx   *srtp.Context

	message    *channels.MessageProcessor
	control    *channels.ControlProcessor
	input      *channels.InputProcessor
	chat       *channels.ChatProcessor
	keepalive  *channels.Keepalive

	wg sync.WaitGroup
}

// New builds a Coordinator. client and engine are constructed by the
// caller (typically cmd/gssv-stream) so tests can substitute fakes.
func New(client *gssv.Client, engine *webrtcengine.Engine, cfg Config, log zerolog.Logger) *Coordinator {
	if cfg.KeepaliveInterval == 0 {
		cfg.KeepaliveInterval = 20 * time.Second
	}
	return &Coordinator{
		client: client,
		engine: engine,
		cfg:    cfg,
		log:    log.With().Str("component", "coordinator").Logger(),
		sink:   make(channels.Sink, 32),
	}
}

// SrtpContext returns the native SRTP context derived from the session's
// master secret, or nil if the session hasn't reached Provisioned yet.
// Exposed so a caller can stand up the native demux path (rtpdemux +
// packets) alongside or instead of the WebRTC path, matching spec.md §1's
// "the native SRTP flow" wording.
func (c *Coordinator) SrtpContext() *srtp.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.srtpCtx
}

// Run drives the session to completion or until ctx is canceled.
// ctx.Done() is the single cancellation signal: it aborts the
// provisioning poll, stops the keepalive ticker, and closes the peer
// connection, which cascades to close every data channel.
func (c *Coordinator) Run(ctx context.Context, transferToken string) error {
	sessionID, err := c.create(ctx)
	if err != nil {
		return errors.Wrap(err, "coordinator: create session")
	}
	c.mu.Lock()
	c.sessionID = sessionID
	c.mu.Unlock()

	if err := c.client.StartSession(ctx, sessionID, transferToken); err != nil {
		return errors.Wrap(err, "coordinator: provision session")
	}

	streamCfg, err := c.client.GetSessionConfig(ctx, sessionID)
	if err != nil {
		return errors.Wrap(err, "coordinator: fetch session configuration")
	}
	if streamCfg.SRTPData != nil {
		srtpCtx, err := srtp.NewContextFromBase64(streamCfg.SRTPData.Key)
		if err != nil {
			return errors.Wrap(err, "coordinator: derive srtp context")
		}
		c.mu.Lock()
		c.srtpCtx = srtpCtx
		c.mu.Unlock()
	}

	if err := c.exchange(ctx, sessionID); err != nil {
		return errors.Wrap(err, "coordinator: exchange sdp/ice")
	}

	c.openChannels()

	interval := c.cfg.KeepaliveInterval
	if streamCfg.KeepAlivePulseInSeconds > 0 {
		interval = time.Duration(streamCfg.KeepAlivePulseInSeconds) * time.Second
	}
	c.keepalive = channels.NewKeepalive(c.sink, interval, func(ctx context.Context) error {
		return c.client.SendKeepalive(ctx, sessionID)
	}, c.log)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.keepalive.Run(ctx)
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consumeEvents(ctx)
	}()

	<-ctx.Done()
	c.teardown()
	c.wg.Wait()
	return ctx.Err()
}

// create starts a new session and returns its ID, matching client.rs's
// create/start_session_request split by Platform: Cloud sessions are
// keyed by TitleID, Home sessions by ServerID.
func (c *Coordinator) create(ctx context.Context) (string, error) {
	var titleID, serverID string
	switch c.cfg.Platform {
	case gssv.PlatformCloud:
		titleID = c.cfg.TitleID
	case gssv.PlatformHome:
		serverID = c.cfg.ServerID
	default:
		return "", errors.Wrapf(gssv.ErrInvalidPlatform, "create: platform %s", c.cfg.Platform)
	}
	resp, err := c.client.StartSessionRequest(ctx, titleID, serverID)
	if err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// exchange performs one SDP offer/answer round trip and forwards the
// resulting remote ICE candidates to the WebRTC engine.
func (c *Coordinator) exchange(ctx context.Context, sessionID string) error {
	offer, err := c.engine.CreateOffer()
	if err != nil {
		return err
	}
	answer, err := c.client.ExchangeSDP(ctx, sessionID, offer.SDP)
	if err != nil {
		return err
	}
	if err := c.engine.SetRemoteAnswer(answer); err != nil {
		return err
	}

	candidates, err := c.client.ExchangeICE(ctx, sessionID, gssv.IceCandidate{})
	if err != nil {
		return err
	}
	for _, cand := range candidates {
		init := webrtc.ICECandidateInit{Candidate: cand.Candidate}
		if cand.SdpMid != "" {
			init.SDPMid = &cand.SdpMid
		}
		line := uint16(cand.SdpMLineIndex)
		init.SDPMLineIndex = &line
		if err := c.engine.AddICECandidate(init); err != nil {
			c.log.Warn().Err(err).Msg("failed to add remote ice candidate")
		}
	}
	return nil
}

// openChannels wires the four channel processors onto the engine's data
// channels and fires each one's start() sequence once open.
func (c *Coordinator) openChannels() {
	c.message = channels.NewMessageProcessor(c.sink, c.senderFor("message"), c.log)
	c.control = channels.NewControlProcessor(c.sink, c.senderFor("control"), c.log)
	c.input = channels.NewInputProcessor(c.sink, c.senderFor("input"), c.log)
	c.chat = channels.NewChatProcessor(c.sink, c.log)

	processors := map[string]channels.Processor{
		"message": c.message,
		"control": c.control,
		"input":   c.input,
		"chat":    c.chat,
	}

	c.engine.OnChannelOpen(func(label string, dc *webrtc.DataChannel) {
		p, ok := processors[label]
		if !ok {
			return
		}
		p.OnOpen()
		switch label {
		case "message":
			c.message.Start()
		case "control":
			c.control.Start()
		case "input":
			c.input.Start()
		}
	})
	c.engine.OnChannelClose(func(label string) {
		if p, ok := processors[label]; ok {
			p.OnClose()
		}
	})
	c.engine.OnChannelMessage(func(label string, msg webrtc.DataChannelMessage) {
		p, ok := processors[label]
		if !ok {
			return
		}
		if err := p.OnMessage(msg); err != nil {
			c.log.Warn().Err(err).Str("channel", label).Msg("channel message handling failed")
		}
	})
}

// senderFor returns a send closure bound to the named data channel,
// looked up lazily since the channel is created before OnOpen fires.
func (c *Coordinator) senderFor(label string) func(data []byte) error {
	return func(data []byte) error {
		dc := c.engine.Channel(label)
		if dc == nil {
			return errors.Errorf("coordinator: %s channel not open", label)
		}
		return dc.Send(data)
	}
}

// consumeEvents drains the shared channel-event queue until ctx is done,
// requesting a keyframe whenever the video track first starts and logging
// every other event. This is the Go analogue of client.rs's main select
// loop over its mpsc::Receiver<ChannelExchangeMsg>.
func (c *Coordinator) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.sink:
			switch ev.Kind {
			case channels.EventChannelOpen:
				c.log.Debug().Str("channel", ev.Channel.String()).Msg("channel opened")
			case channels.EventChannelClose:
				c.log.Info().Str("channel", ev.Channel.String()).Msg("channel closed")
			case channels.EventGamepadRumble:
				c.log.Debug().Str("channel", ev.Channel.String()).Msg("rumble report received")
			case channels.EventSendMessage:
				c.log.Debug().Str("channel", ev.Channel.String()).Msg("outbound message queued")
			}
		}
	}
}

func (c *Coordinator) teardown() {
	if err := c.engine.Close(); err != nil {
		c.log.Warn().Err(err).Msg("failed to close peer connection cleanly")
	}
}
