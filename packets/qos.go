package packets

import (
	"github.com/pkg/errors"
	"github.com/xcloudgo/gssv-stream/codec"
)

// QosPacketType mirrors qos.rs's QosPacketType.
type QosPacketType uint32

const (
	QosServerHandshakeType QosPacketType = 1
	QosClientHandshakeType QosPacketType = 2
	QosControlType         QosPacketType = 3
	QosDataType            QosPacketType = 4
	QosServerPolicyType    QosPacketType = 5
	QosClientPolicyType    QosPacketType = 6
)

// QosControlFlags is a 32-bit little-endian word with bit 0 meaning
// Reinitialize, per spec.md's explicit redesign decision overriding
// qos.rs's single-byte interpretation (see DESIGN.md, Open Question
// resolutions).
type QosControlFlags struct {
	Reinitialize bool
}

func ParseQosControlFlags(v uint32) QosControlFlags {
	return QosControlFlags{Reinitialize: v&0x1 != 0}
}

func (f QosControlFlags) Encode() uint32 {
	if f.Reinitialize {
		return 0x1
	}
	return 0
}

// QosServerPolicy fragments a forward-error-correction policy blob across
// multiple packets, grounded on qos.rs's QosServerPolicy.
type QosServerPolicy struct {
	SchemaVersion uint32
	PolicyLength  uint32
	FragmentCount uint32
	Offset        uint32
	FragmentSize  uint32
	Fragment      []byte
}

func (p QosServerPolicy) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(QosServerPolicyType))
	w.PutU32(p.SchemaVersion)
	w.PutU32(p.PolicyLength)
	w.PutU32(p.FragmentCount)
	w.PutU32(p.Offset)
	w.PutU32(p.FragmentSize)
	w.PutBytes(p.Fragment)
	return w.Bytes()
}

func UnmarshalQosServerPolicy(b []byte) (QosServerPolicy, error) {
	var p QosServerPolicy
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return p, err
	}
	if QosPacketType(typ) != QosServerPolicyType {
		return p, errors.Errorf("packets: expected QosServerPolicy, got type %d", typ)
	}
	if p.SchemaVersion, err = r.U32(); err != nil {
		return p, err
	}
	if p.PolicyLength, err = r.U32(); err != nil {
		return p, err
	}
	if p.FragmentCount, err = r.U32(); err != nil {
		return p, err
	}
	if p.Offset, err = r.U32(); err != nil {
		return p, err
	}
	if p.FragmentSize, err = r.U32(); err != nil {
		return p, err
	}
	if p.Fragment, err = r.Bytes(int(p.FragmentSize)); err != nil {
		return p, err
	}
	return p, nil
}

// QosServerHandshake advertises the protocol version and, from version 1
// onward, the minimum client version the server will accept.
type QosServerHandshake struct {
	ProtocolVersion          uint32
	MinSupportedClientVersion *uint32 // present iff ProtocolVersion >= 1
}

func (h QosServerHandshake) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(QosServerHandshakeType))
	w.PutU32(h.ProtocolVersion)
	if h.ProtocolVersion >= 1 && h.MinSupportedClientVersion != nil {
		w.PutU32(*h.MinSupportedClientVersion)
	}
	return w.Bytes()
}

func UnmarshalQosServerHandshake(b []byte) (QosServerHandshake, error) {
	var h QosServerHandshake
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return h, err
	}
	if QosPacketType(typ) != QosServerHandshakeType {
		return h, errors.Errorf("packets: expected QosServerHandshake, got type %d", typ)
	}
	if h.ProtocolVersion, err = r.U32(); err != nil {
		return h, err
	}
	if h.ProtocolVersion >= 1 {
		v, err := r.U32()
		if err != nil {
			return h, err
		}
		h.MinSupportedClientVersion = &v
	}
	return h, nil
}

// QosClientPolicy acknowledges receipt of a fragmented server policy.
type QosClientPolicy struct {
	SchemaVersion uint32
}

func (p QosClientPolicy) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(QosClientPolicyType))
	w.PutU32(p.SchemaVersion)
	return w.Bytes()
}

func UnmarshalQosClientPolicy(b []byte) (QosClientPolicy, error) {
	var p QosClientPolicy
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return p, err
	}
	if QosPacketType(typ) != QosClientPolicyType {
		return p, errors.Errorf("packets: expected QosClientPolicy, got type %d", typ)
	}
	if p.SchemaVersion, err = r.U32(); err != nil {
		return p, err
	}
	return p, nil
}

// QosClientHandshake replies to QosServerHandshake.
type QosClientHandshake struct {
	ProtocolVersion uint32
	InitialFrameID  uint32
}

func (h QosClientHandshake) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(QosClientHandshakeType))
	w.PutU32(h.ProtocolVersion)
	w.PutU32(h.InitialFrameID)
	return w.Bytes()
}

func UnmarshalQosClientHandshake(b []byte) (QosClientHandshake, error) {
	var h QosClientHandshake
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return h, err
	}
	if QosPacketType(typ) != QosClientHandshakeType {
		return h, errors.Errorf("packets: expected QosClientHandshake, got type %d", typ)
	}
	if h.ProtocolVersion, err = r.U32(); err != nil {
		return h, err
	}
	if h.InitialFrameID, err = r.U32(); err != nil {
		return h, err
	}
	return h, nil
}

// QosControl carries a flags-only control message.
type QosControl struct {
	Flags QosControlFlags
}

func (c QosControl) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(QosControlType))
	w.PutU32(c.Flags.Encode())
	return w.Bytes()
}

func UnmarshalQosControl(b []byte) (QosControl, error) {
	var c QosControl
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return c, err
	}
	if QosPacketType(typ) != QosControlType {
		return c, errors.Errorf("packets: expected QosControl, got type %d", typ)
	}
	flags, err := r.U32()
	if err != nil {
		return c, err
	}
	c.Flags = ParseQosControlFlags(flags)
	return c, nil
}

// QosData reports one QoS measurement sample tied to a frame id.
type QosData struct {
	Flags   uint32
	FrameID uint32
}

func (d QosData) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(QosDataType))
	w.PutU32(d.Flags)
	w.PutU32(d.FrameID)
	return w.Bytes()
}

func UnmarshalQosData(b []byte) (QosData, error) {
	var d QosData
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return d, err
	}
	if QosPacketType(typ) != QosDataType {
		return d, errors.Errorf("packets: expected QosData, got type %d", typ)
	}
	if d.Flags, err = r.U32(); err != nil {
		return d, err
	}
	if d.FrameID, err = r.U32(); err != nil {
		return d, err
	}
	return d, nil
}
