package packets

import (
	"github.com/pkg/errors"
	"github.com/xcloudgo/gssv-stream/codec"
)

// MessagePacketType mirrors gamestreaming_native/src/packets/message.rs's
// MessagePacketType — the binary message subprotocol carried over the
// native SRTP transport, distinct from the JSON message-channel envelope
// the WebRTC transport uses (see control.go).
type MessagePacketType uint32

const (
	MessageHandshakeType      MessagePacketType = 1
	MessageDataType           MessagePacketType = 2
	MessageCancelRequestType  MessagePacketType = 3
)

type MessageHandshake struct {
	Unknown uint32
}

func (h MessageHandshake) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(MessageHandshakeType))
	w.PutU32(h.Unknown)
	return w.Bytes()
}

func UnmarshalMessageHandshake(b []byte) (MessageHandshake, error) {
	var h MessageHandshake
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return h, err
	}
	if MessagePacketType(typ) != MessageHandshakeType {
		return h, errors.Errorf("packets: expected MessageHandshake, got type %d", typ)
	}
	if h.Unknown, err = r.U32(); err != nil {
		return h, err
	}
	return h, nil
}

// MessageData carries six opaque u32 fields, matching message.rs's
// MessageData exactly; upstream never resolved their semantics.
type MessageData struct {
	Unknown1, Unknown2, Unknown3, Unknown4, Unknown5, Unknown6 uint32
}

func (d MessageData) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(MessageDataType))
	w.PutU32(d.Unknown1)
	w.PutU32(d.Unknown2)
	w.PutU32(d.Unknown3)
	w.PutU32(d.Unknown4)
	w.PutU32(d.Unknown5)
	w.PutU32(d.Unknown6)
	return w.Bytes()
}

func UnmarshalMessageData(b []byte) (MessageData, error) {
	var d MessageData
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return d, err
	}
	if MessagePacketType(typ) != MessageDataType {
		return d, errors.Errorf("packets: expected MessageData, got type %d", typ)
	}
	fields := []*uint32{&d.Unknown1, &d.Unknown2, &d.Unknown3, &d.Unknown4, &d.Unknown5, &d.Unknown6}
	for _, f := range fields {
		if *f, err = r.U32(); err != nil {
			return d, err
		}
	}
	return d, nil
}

type MessageCancelRequest struct {
	Unknown uint32
}

func (c MessageCancelRequest) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(MessageCancelRequestType))
	w.PutU32(c.Unknown)
	return w.Bytes()
}

func UnmarshalMessageCancelRequest(b []byte) (MessageCancelRequest, error) {
	var c MessageCancelRequest
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return c, err
	}
	if MessagePacketType(typ) != MessageCancelRequestType {
		return c, errors.Errorf("packets: expected MessageCancelRequest, got type %d", typ)
	}
	if c.Unknown, err = r.U32(); err != nil {
		return c, err
	}
	return c, nil
}
