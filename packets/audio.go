// Package packets implements the binary and JSON wire codecs for each
// GSSV channel subprotocol: audio, video, input, QoS, the native message
// variant, connection probing and MuxDCT channel establishment, plus the
// JSON envelope shared by the control/message/chat WebRTC data channels.
package packets

import (
	"github.com/pkg/errors"
	"github.com/xcloudgo/gssv-stream/codec"
)

// AudioPacketType distinguishes the four audio subprotocol messages.
// Grounded on gamestreaming_webrtc/src/packets/audio.rs's AudioPacketType.
type AudioPacketType uint32

const (
	AudioServerHandshakeType AudioPacketType = 1
	AudioClientHandshakeType AudioPacketType = 2
	AudioControlType         AudioPacketType = 3
	AudioDataType            AudioPacketType = 4
)

// AudioCodec identifies the sample encoding carried by an audio format.
type AudioCodec uint32

const (
	AudioCodecOpus AudioCodec = 0
	AudioCodecPCM  AudioCodec = 1
	AudioCodecAAC  AudioCodec = 2
)

// PCMAudioFormat is only present when AudioFormat.Codec == AudioCodecPCM.
type PCMAudioFormat struct {
	Bits    uint32
	IsFloat bool
}

// AudioFormat describes one server-offered or client-selected audio
// format option.
type AudioFormat struct {
	Channels   uint32
	Frequency  uint32
	Codec      AudioCodec
	PCMFormat  *PCMAudioFormat // present iff Codec == AudioCodecPCM
}

func (f *AudioFormat) marshal(w *codec.Writer) {
	w.PutU32(f.Channels)
	w.PutU32(f.Frequency)
	w.PutU32(uint32(f.Codec))
	if f.Codec == AudioCodecPCM {
		var bits uint32
		var isFloat uint32
		if f.PCMFormat != nil {
			bits = f.PCMFormat.Bits
			if f.PCMFormat.IsFloat {
				isFloat = 1
			}
		}
		w.PutU32(bits)
		w.PutU32(isFloat)
	}
}

func unmarshalAudioFormat(r *codec.Reader) (AudioFormat, error) {
	var f AudioFormat
	var err error
	ch, err := r.U32()
	if err != nil {
		return f, err
	}
	freq, err := r.U32()
	if err != nil {
		return f, err
	}
	codecVal, err := r.U32()
	if err != nil {
		return f, err
	}
	f.Channels = ch
	f.Frequency = freq
	f.Codec = AudioCodec(codecVal)
	if f.Codec == AudioCodecPCM {
		bits, err := r.U32()
		if err != nil {
			return f, err
		}
		isFloat, err := r.U32()
		if err != nil {
			return f, err
		}
		f.PCMFormat = &PCMAudioFormat{Bits: bits, IsFloat: isFloat != 0}
	}
	return f, nil
}

// AudioServerHandshake is sent once by the server to advertise the
// formats it can stream.
type AudioServerHandshake struct {
	ProtocolVersion   uint32
	ReferenceTimestamp uint64
	Formats           []AudioFormat
}

func (h AudioServerHandshake) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(AudioServerHandshakeType))
	w.PutU32(h.ProtocolVersion)
	w.PutU64(h.ReferenceTimestamp)
	w.PutU32(uint32(len(h.Formats)))
	for i := range h.Formats {
		h.Formats[i].marshal(w)
	}
	return w.Bytes()
}

func UnmarshalAudioServerHandshake(b []byte) (AudioServerHandshake, error) {
	var h AudioServerHandshake
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return h, err
	}
	if AudioPacketType(typ) != AudioServerHandshakeType {
		return h, errors.Errorf("packets: expected AudioServerHandshake, got type %d", typ)
	}
	if h.ProtocolVersion, err = r.U32(); err != nil {
		return h, err
	}
	if h.ReferenceTimestamp, err = r.U64(); err != nil {
		return h, err
	}
	count, err := r.U32()
	if err != nil {
		return h, err
	}
	h.Formats = make([]AudioFormat, count)
	for i := range h.Formats {
		if h.Formats[i], err = unmarshalAudioFormat(r); err != nil {
			return h, err
		}
	}
	return h, nil
}

// AudioClientHandshake is the client's reply selecting one format.
type AudioClientHandshake struct {
	InitialFrameID  uint32
	RequestedFormat AudioFormat
}

func (h AudioClientHandshake) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(AudioClientHandshakeType))
	w.PutU32(h.InitialFrameID)
	h.RequestedFormat.marshal(w)
	return w.Bytes()
}

func UnmarshalAudioClientHandshake(b []byte) (AudioClientHandshake, error) {
	var h AudioClientHandshake
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return h, err
	}
	if AudioPacketType(typ) != AudioClientHandshakeType {
		return h, errors.Errorf("packets: expected AudioClientHandshake, got type %d", typ)
	}
	if h.InitialFrameID, err = r.U32(); err != nil {
		return h, err
	}
	if h.RequestedFormat, err = unmarshalAudioFormat(r); err != nil {
		return h, err
	}
	return h, nil
}

// AudioControlFlags mirrors audio.rs's AudioControlFlags bitflags, packed
// into the low byte of a 32-bit little-endian word. Bit positions are
// taken directly from the original source's own test vectors.
type AudioControlFlags struct {
	Reinitialize bool // bit 6, 0x40
	StartStream  bool // bit 4, 0x10
	StopStream   bool // bit 3, 0x08
}

const (
	audioFlagReinitialize uint32 = 0x40
	audioFlagStartStream  uint32 = 0x10
	audioFlagStopStream   uint32 = 0x08
)

func ParseAudioControlFlags(v uint32) AudioControlFlags {
	return AudioControlFlags{
		Reinitialize: v&audioFlagReinitialize != 0,
		StartStream:  v&audioFlagStartStream != 0,
		StopStream:   v&audioFlagStopStream != 0,
	}
}

func (f AudioControlFlags) Encode() uint32 {
	var v uint32
	if f.Reinitialize {
		v |= audioFlagReinitialize
	}
	if f.StartStream {
		v |= audioFlagStartStream
	}
	if f.StopStream {
		v |= audioFlagStopStream
	}
	return v
}

// AudioControl carries a flags-only control message.
type AudioControl struct {
	Flags AudioControlFlags
}

func (c AudioControl) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(AudioControlType))
	w.PutU32(c.Flags.Encode())
	return w.Bytes()
}

func UnmarshalAudioControl(b []byte) (AudioControl, error) {
	var c AudioControl
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return c, err
	}
	if AudioPacketType(typ) != AudioControlType {
		return c, errors.Errorf("packets: expected AudioControl, got type %d", typ)
	}
	flags, err := r.U32()
	if err != nil {
		return c, err
	}
	c.Flags = ParseAudioControlFlags(flags)
	return c, nil
}

// AudioData carries one encoded audio frame.
type AudioData struct {
	Flags     uint32
	FrameID   uint32
	Timestamp uint64
	Data      []byte
}

func (d AudioData) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(AudioDataType))
	w.PutU32(d.Flags)
	w.PutU32(d.FrameID)
	w.PutU64(d.Timestamp)
	w.PutU32(uint32(len(d.Data)))
	w.PutBytes(d.Data)
	return w.Bytes()
}

func UnmarshalAudioData(b []byte) (AudioData, error) {
	var d AudioData
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return d, err
	}
	if AudioPacketType(typ) != AudioDataType {
		return d, errors.Errorf("packets: expected AudioData, got type %d", typ)
	}
	if d.Flags, err = r.U32(); err != nil {
		return d, err
	}
	if d.FrameID, err = r.U32(); err != nil {
		return d, err
	}
	if d.Timestamp, err = r.U64(); err != nil {
		return d, err
	}
	size, err := r.U32()
	if err != nil {
		return d, err
	}
	if d.Data, err = r.Bytes(int(size)); err != nil {
		return d, err
	}
	return d, nil
}
