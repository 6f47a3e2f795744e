package packets

import (
	"github.com/pkg/errors"
	"github.com/xcloudgo/gssv-stream/codec"
)

// ConnectionProbingType mirrors udp_connection_probing.rs's
// ConnectionProbingType, a u16 tag.
type ConnectionProbingType uint16

const (
	ConnectionProbingSynType ConnectionProbingType = 1
	ConnectionProbingAckType ConnectionProbingType = 2
)

// ConnectionProbingSyn carries a fixed 5-byte probe payload used to
// measure path MTU, per udp_connection_probing.rs's ConnectionProbingSyn.
type ConnectionProbingSyn struct {
	ProbeData [5]byte
}

func (s ConnectionProbingSyn) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU16(uint16(ConnectionProbingSynType))
	w.PutBytes(s.ProbeData[:])
	return w.Bytes()
}

func UnmarshalConnectionProbingSyn(b []byte) (ConnectionProbingSyn, error) {
	var s ConnectionProbingSyn
	r := codec.NewReader(b)
	typ, err := r.U16()
	if err != nil {
		return s, err
	}
	if ConnectionProbingType(typ) != ConnectionProbingSynType {
		return s, errors.Errorf("packets: expected ConnectionProbingSyn, got type %d", typ)
	}
	data, err := r.Bytes(5)
	if err != nil {
		return s, err
	}
	copy(s.ProbeData[:], data)
	return s, nil
}

// ConnectionProbingAck reports the accepted packet size back to the
// sender.
type ConnectionProbingAck struct {
	AcceptedPacketSize uint16
	Appendix           uint16
}

func (a ConnectionProbingAck) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU16(uint16(ConnectionProbingAckType))
	w.PutU16(a.AcceptedPacketSize)
	w.PutU16(a.Appendix)
	return w.Bytes()
}

func UnmarshalConnectionProbingAck(b []byte) (ConnectionProbingAck, error) {
	var a ConnectionProbingAck
	r := codec.NewReader(b)
	typ, err := r.U16()
	if err != nil {
		return a, err
	}
	if ConnectionProbingType(typ) != ConnectionProbingAckType {
		return a, errors.Errorf("packets: expected ConnectionProbingAck, got type %d", typ)
	}
	if a.AcceptedPacketSize, err = r.U16(); err != nil {
		return a, err
	}
	if a.Appendix, err = r.U16(); err != nil {
		return a, err
	}
	return a, nil
}
