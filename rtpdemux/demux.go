// Package rtpdemux dispatches RTP packets carrying GSSV channel traffic by
// their leading payload-type byte, as described in
// gamestreaming_native/src/packets/mod.rs's PayloadType enum.
package rtpdemux

import (
	"github.com/pion/rtp"
	"github.com/pkg/errors"
)

// ErrUnknownPayloadType is returned for a payload-type byte outside the
// known GSSV range. Callers are expected to log and drop, per spec.md §7.
var ErrUnknownPayloadType = errors.New("rtpdemux: unknown payload type")

// PayloadType identifies which channel codec a demuxed RTP payload
// belongs to.
type PayloadType byte

const (
	Unknown                  PayloadType = 0x00
	MuxDCTChannelRangeStart  PayloadType = 0x23
	MuxDCTChannelRangeEnd    PayloadType = 0x3f
	BaseLinkControl          PayloadType = 0x60
	MuxDCTControl            PayloadType = 0x61
	FECControl               PayloadType = 0x62
	SecurityLayerControl     PayloadType = 0x63
	URCPControl              PayloadType = 0x64
	UDPKeepAlive             PayloadType = 0x65
	UDPConnectionProbing     PayloadType = 0x66
	URCPDummyPacket          PayloadType = 0x68
	MockUDPDctControl        PayloadType = 0x7f
)

// ParsePayloadType classifies a raw payload-type byte. Values inside the
// MuxDCT channel range resolve to MuxDCTChannelRangeStart; anything else
// unrecognized yields ErrUnknownPayloadType.
func ParsePayloadType(b byte) (PayloadType, error) {
	switch {
	case b >= byte(MuxDCTChannelRangeStart) && b <= byte(MuxDCTChannelRangeEnd):
		return MuxDCTChannelRangeStart, nil
	case b == byte(BaseLinkControl), b == byte(MuxDCTControl), b == byte(FECControl),
		b == byte(SecurityLayerControl), b == byte(URCPControl), b == byte(UDPKeepAlive),
		b == byte(UDPConnectionProbing), b == byte(URCPDummyPacket), b == byte(MockUDPDctControl):
		return PayloadType(b), nil
	case b == byte(Unknown):
		return Unknown, nil
	default:
		return Unknown, errors.Wrapf(ErrUnknownPayloadType, "payload type 0x%02x", b)
	}
}

// Demuxed is the result of splitting an RTP packet into its GSSV payload
// type and the channel payload that follows the leading type byte.
type Demuxed struct {
	Type    PayloadType
	Header  rtp.Header
	Payload []byte
}

// Demux parses pkt as an RTP packet and classifies its first payload byte.
func Demux(pkt *rtp.Packet) (*Demuxed, error) {
	if len(pkt.Payload) < 1 {
		return nil, errors.New("rtpdemux: empty RTP payload")
	}
	pt, err := ParsePayloadType(pkt.Payload[0])
	if err != nil {
		return nil, err
	}
	return &Demuxed{Type: pt, Header: pkt.Header, Payload: pkt.Payload[1:]}, nil
}
