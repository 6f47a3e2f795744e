// Package channels implements the GSSV channel processors that sit on
// top of the WebRTC data channels: message, control, input, chat, and
// the separate keepalive timer. Grounded on
// gamestreaming_webrtc/src/channels/{base,message,control,chat,input}.rs;
// the Rust GssvChannel/GssvChannelProperties trait pair is translated
// into a Go Processor interface, and the mpsc::Sender every channel held
// becomes a single shared Go channel of Event.
package channels

import "github.com/pion/webrtc/v4"

// Type identifies which GSSV channel an Event or Processor belongs to.
type Type int

const (
	TypeChat Type = iota
	TypeControl
	TypeInput
	TypeMessage
	TypeAudio
	TypeVideo
)

func (t Type) String() string {
	switch t {
	case TypeChat:
		return "chat"
	case TypeControl:
		return "control"
	case TypeInput:
		return "input"
	case TypeMessage:
		return "message"
	case TypeAudio:
		return "audio"
	case TypeVideo:
		return "video"
	default:
		return "unknown"
	}
}

// EventKind distinguishes the event variants a Processor can emit back to
// the coordinator, mirroring base.rs's GssvChannelEvent/GssvClientEvent.
type EventKind int

const (
	EventChannelOpen EventKind = iota
	EventChannelClose
	EventGamepadRumble
	EventSendMessage
)

// Event is one tagged message placed on the shared channel-event queue,
// the Go equivalent of base.rs's ChannelExchangeMsg.
type Event struct {
	Channel Type
	Kind    EventKind
	Payload any
}

// Sink is the single queue every Processor funnels events through,
// mirroring every Rust channel's mpsc::Sender<(ChannelType,
// ChannelExchangeMsg)> field.
type Sink chan Event

// Send enqueues ev, blocking only as long as the coordinator's consumer
// takes to drain it.
func (s Sink) Send(ev Event) {
	s <- ev
}

// Processor is the common interface every GSSV channel implements,
// mirroring the default async on_open/on_close/on_message methods
// base.rs's GssvChannel trait provides.
type Processor interface {
	Type() Type
	OnOpen()
	OnClose()
	OnMessage(msg webrtc.DataChannelMessage) error
}
