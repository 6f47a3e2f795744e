package packets

import (
	"github.com/pkg/errors"
	"github.com/xcloudgo/gssv-stream/codec"
)

// ControlProtocolPacketType mirrors
// gamestreaming_native/src/packets/mux_dct_control.rs's
// ControlProtocolPacketType.
type ControlProtocolPacketType byte

const (
	ControlProtocolCreate ControlProtocolPacketType = 2
	ControlProtocolOpen   ControlProtocolPacketType = 3
	ControlProtocolClose  ControlProtocolPacketType = 4
)

// ChannelClassName enumerates the nine MuxDCT channel class strings
// advertised during channel establishment, from
// gamestreaming_native/src/packets/mux_dct_channel.rs's doc comment.
const (
	ChannelClassAudio         = "Microsoft::Basix::Dct::Channel::Class::Audio"
	ChannelClassVideo         = "Microsoft::Basix::Dct::Channel::Class::Video"
	ChannelClassInput         = "Microsoft::Basix::Dct::Channel::Class::Input"
	ChannelClassInputV2       = "Microsoft::Basix::Dct::Channel::Class::InputV2"
	ChannelClassInputFeedback = "Microsoft::Basix::Dct::Channel::Class::Input Feedback"
	ChannelClassChatAudio     = "Microsoft::Basix::Dct::Channel::Class::ChatAudio"
	ChannelClassControl       = "Microsoft::Basix::Dct::Channel::Class::Control"
	ChannelClassMessaging     = "Microsoft::Basix::Dct::Channel::Class::Messaging"
	ChannelClassQoS           = "Microsoft::Basix::Dct::Channel::Class::QoS"
)

// MuxDCTControlHeader is the 8-byte fixed prefix of every MuxDCTControl
// payload. Upstream (mux_dct_control.rs) names these fields bla/bla2/
// woop/woop2 without documenting their semantics; spec.md leaves their
// meaning as an open question, so they are kept strictly positional here
// (see DESIGN.md).
type MuxDCTControlHeader struct {
	Field0 uint16
	Field1 uint16
	Field2 uint16
	Field3 uint16
}

func (h MuxDCTControlHeader) marshal(w *codec.Writer) {
	w.PutU16(h.Field0)
	w.PutU16(h.Field1)
	w.PutU16(h.Field2)
	w.PutU16(h.Field3)
}

func unmarshalMuxDCTControlHeader(r *codec.Reader) (MuxDCTControlHeader, error) {
	var h MuxDCTControlHeader
	var err error
	if h.Field0, err = r.U16(); err != nil {
		return h, err
	}
	if h.Field1, err = r.U16(); err != nil {
		return h, err
	}
	if h.Field2, err = r.U16(); err != nil {
		return h, err
	}
	if h.Field3, err = r.U16(); err != nil {
		return h, err
	}
	return h, nil
}

// MuxDCTControl is one channel-establishment message: the fixed header,
// a one-byte operation (Create/Open/Close), and a u16-length-prefixed
// channel class name string, matching the wire hexdumps documented in
// mux_dct_control.rs.
type MuxDCTControl struct {
	Header      MuxDCTControlHeader
	Op          ControlProtocolPacketType
	ChannelName string
}

func (c MuxDCTControl) Marshal() []byte {
	w := codec.NewWriter()
	c.Header.marshal(w)
	w.PutU8(byte(c.Op))
	w.PutU16(uint16(len(c.ChannelName)))
	w.PutBytes([]byte(c.ChannelName))
	return w.Bytes()
}

func UnmarshalMuxDCTControl(b []byte) (MuxDCTControl, error) {
	var c MuxDCTControl
	r := codec.NewReader(b)
	var err error
	if c.Header, err = unmarshalMuxDCTControlHeader(r); err != nil {
		return c, err
	}
	op, err := r.U8()
	if err != nil {
		return c, err
	}
	c.Op = ControlProtocolPacketType(op)
	nameLen, err := r.U16()
	if err != nil {
		return c, err
	}
	nameBytes, err := r.Bytes(int(nameLen))
	if err != nil {
		return c, err
	}
	c.ChannelName = string(nameBytes)
	return c, nil
}

var errUnknownControlOp = errors.New("packets: unrecognized MuxDCT control op")

// ValidateOp checks that Op is one of the three recognized control
// protocol operations.
func (c MuxDCTControl) ValidateOp() error {
	switch c.Op {
	case ControlProtocolCreate, ControlProtocolOpen, ControlProtocolClose:
		return nil
	default:
		return errors.Wrapf(errUnknownControlOp, "op %d", c.Op)
	}
}
