package packets

import (
	"github.com/pkg/errors"
	"github.com/xcloudgo/gssv-stream/codec"
)

// VideoPacketType mirrors video.rs's VideoPacketType.
type VideoPacketType uint32

const (
	VideoServerHandshakeType VideoPacketType = 1
	VideoClientHandshakeType VideoPacketType = 2
	VideoControlType         VideoPacketType = 3
	VideoDataType            VideoPacketType = 4
)

// VideoCodec identifies the pixel/frame encoding of a video format.
type VideoCodec uint32

const (
	VideoCodecH264 VideoCodec = 0
	VideoCodecH265 VideoCodec = 1
	VideoCodecYUV  VideoCodec = 2
	VideoCodecRGB  VideoCodec = 3
)

// RGBVideoFormat is only present when VideoFormat.Codec == VideoCodecRGB.
type RGBVideoFormat struct {
	BitsPerPixel uint32
	Unknown      uint32
	RedMask      uint64
	GreenMask    uint64
	BlueMask     uint64
}

// VideoFormat describes one server-offered or client-selected video
// resolution/codec combination.
type VideoFormat struct {
	FPS        uint32
	Width      uint32
	Height     uint32
	Codec      VideoCodec
	RGBFormat  *RGBVideoFormat // present iff Codec == VideoCodecRGB
}

func (f *VideoFormat) marshal(w *codec.Writer) {
	w.PutU32(f.FPS)
	w.PutU32(f.Width)
	w.PutU32(f.Height)
	w.PutU32(uint32(f.Codec))
	if f.Codec == VideoCodecRGB {
		var rf RGBVideoFormat
		if f.RGBFormat != nil {
			rf = *f.RGBFormat
		}
		w.PutU32(rf.BitsPerPixel)
		w.PutU32(rf.Unknown)
		w.PutU64(rf.RedMask)
		w.PutU64(rf.GreenMask)
		w.PutU64(rf.BlueMask)
	}
}

func unmarshalVideoFormat(r *codec.Reader) (VideoFormat, error) {
	var f VideoFormat
	var err error
	if f.FPS, err = r.U32(); err != nil {
		return f, err
	}
	if f.Width, err = r.U32(); err != nil {
		return f, err
	}
	if f.Height, err = r.U32(); err != nil {
		return f, err
	}
	codecVal, err := r.U32()
	if err != nil {
		return f, err
	}
	f.Codec = VideoCodec(codecVal)
	if f.Codec == VideoCodecRGB {
		var rf RGBVideoFormat
		if rf.BitsPerPixel, err = r.U32(); err != nil {
			return f, err
		}
		if rf.Unknown, err = r.U32(); err != nil {
			return f, err
		}
		if rf.RedMask, err = r.U64(); err != nil {
			return f, err
		}
		if rf.GreenMask, err = r.U64(); err != nil {
			return f, err
		}
		if rf.BlueMask, err = r.U64(); err != nil {
			return f, err
		}
		f.RGBFormat = &rf
	}
	return f, nil
}

// VideoServerHandshake is the server's one-time format advertisement,
// grounded on video.rs's own test vector: protocol_version=6, 1280x720,
// fps=60, reference_timestamp=1613399625116, a single H264 format.
type VideoServerHandshake struct {
	Unknown1           uint32
	Unknown2           uint32
	ProtocolVersion    uint32
	ScreenWidth        uint32
	ScreenHeight       uint32
	FPS                uint32
	ReferenceTimestamp uint64
	Formats            []VideoFormat
}

func (h VideoServerHandshake) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(VideoServerHandshakeType))
	w.PutU32(h.Unknown1)
	w.PutU32(h.Unknown2)
	w.PutU32(h.ProtocolVersion)
	w.PutU32(h.ScreenWidth)
	w.PutU32(h.ScreenHeight)
	w.PutU32(h.FPS)
	w.PutU64(h.ReferenceTimestamp)
	w.PutU32(uint32(len(h.Formats)))
	for i := range h.Formats {
		h.Formats[i].marshal(w)
	}
	return w.Bytes()
}

func UnmarshalVideoServerHandshake(b []byte) (VideoServerHandshake, error) {
	var h VideoServerHandshake
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return h, err
	}
	if VideoPacketType(typ) != VideoServerHandshakeType {
		return h, errors.Errorf("packets: expected VideoServerHandshake, got type %d", typ)
	}
	for _, dst := range []*uint32{&h.Unknown1, &h.Unknown2, &h.ProtocolVersion, &h.ScreenWidth, &h.ScreenHeight, &h.FPS} {
		if *dst, err = r.U32(); err != nil {
			return h, err
		}
	}
	if h.ReferenceTimestamp, err = r.U64(); err != nil {
		return h, err
	}
	count, err := r.U32()
	if err != nil {
		return h, err
	}
	h.Formats = make([]VideoFormat, count)
	for i := range h.Formats {
		if h.Formats[i], err = unmarshalVideoFormat(r); err != nil {
			return h, err
		}
	}
	return h, nil
}

// VideoClientHandshake is the client's reply selecting one format.
type VideoClientHandshake struct {
	Unknown1        uint32
	Unknown2        uint32
	InitialFrameID  uint32
	RequestedFormat VideoFormat
}

func (h VideoClientHandshake) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(VideoClientHandshakeType))
	w.PutU32(h.Unknown1)
	w.PutU32(h.Unknown2)
	w.PutU32(h.InitialFrameID)
	h.RequestedFormat.marshal(w)
	return w.Bytes()
}

func UnmarshalVideoClientHandshake(b []byte) (VideoClientHandshake, error) {
	var h VideoClientHandshake
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return h, err
	}
	if VideoPacketType(typ) != VideoClientHandshakeType {
		return h, errors.Errorf("packets: expected VideoClientHandshake, got type %d", typ)
	}
	if h.Unknown1, err = r.U32(); err != nil {
		return h, err
	}
	if h.Unknown2, err = r.U32(); err != nil {
		return h, err
	}
	if h.InitialFrameID, err = r.U32(); err != nil {
		return h, err
	}
	if h.RequestedFormat, err = unmarshalVideoFormat(r); err != nil {
		return h, err
	}
	return h, nil
}

// VideoControlFlags mirrors video.rs's VideoControlFlags bit layout. Bit
// positions come directly from the original source's test vector table.
type VideoControlFlags struct {
	LastDisplayedFrameRendered bool // bit 7, 0x80
	RequestKeyframes           bool // bit 5, 0x20
	StartStream                bool // bit 4, 0x10
	StopStream                  bool // bit 3, 0x08
	QueueDepth                  bool // bit 2, 0x04
	LostFrames                  bool // bit 1, 0x02
	LastDisplayedFrame           bool // bit 0, 0x01
	SmoothRenderingSettingsSent bool // bit 12, 0x1000
	BitrateUpdate                bool // bit 10, 0x400
	VideoFormatChange            bool // bit 9, 0x200
}

const (
	videoFlagLastDisplayedFrameRendered uint32 = 0x80
	videoFlagRequestKeyframes           uint32 = 0x20
	videoFlagStartStream                uint32 = 0x10
	videoFlagStopStream                 uint32 = 0x08
	videoFlagQueueDepth                 uint32 = 0x04
	videoFlagLostFrames                 uint32 = 0x02
	videoFlagLastDisplayedFrame         uint32 = 0x01
	videoFlagSmoothRenderingSettingsSent uint32 = 0x1000
	videoFlagBitrateUpdate               uint32 = 0x400
	videoFlagVideoFormatChange           uint32 = 0x200
)

func ParseVideoControlFlags(v uint32) VideoControlFlags {
	return VideoControlFlags{
		LastDisplayedFrameRendered:  v&videoFlagLastDisplayedFrameRendered != 0,
		RequestKeyframes:            v&videoFlagRequestKeyframes != 0,
		StartStream:                 v&videoFlagStartStream != 0,
		StopStream:                  v&videoFlagStopStream != 0,
		QueueDepth:                  v&videoFlagQueueDepth != 0,
		LostFrames:                  v&videoFlagLostFrames != 0,
		LastDisplayedFrame:          v&videoFlagLastDisplayedFrame != 0,
		SmoothRenderingSettingsSent: v&videoFlagSmoothRenderingSettingsSent != 0,
		BitrateUpdate:               v&videoFlagBitrateUpdate != 0,
		VideoFormatChange:           v&videoFlagVideoFormatChange != 0,
	}
}

func (f VideoControlFlags) Encode() uint32 {
	var v uint32
	if f.LastDisplayedFrameRendered {
		v |= videoFlagLastDisplayedFrameRendered
	}
	if f.RequestKeyframes {
		v |= videoFlagRequestKeyframes
	}
	if f.StartStream {
		v |= videoFlagStartStream
	}
	if f.StopStream {
		v |= videoFlagStopStream
	}
	if f.QueueDepth {
		v |= videoFlagQueueDepth
	}
	if f.LostFrames {
		v |= videoFlagLostFrames
	}
	if f.LastDisplayedFrame {
		v |= videoFlagLastDisplayedFrame
	}
	if f.SmoothRenderingSettingsSent {
		v |= videoFlagSmoothRenderingSettingsSent
	}
	if f.BitrateUpdate {
		v |= videoFlagBitrateUpdate
	}
	if f.VideoFormatChange {
		v |= videoFlagVideoFormatChange
	}
	return v
}

// VideoControl carries the conditional payload blocks gated by
// VideoControlFlags, matching video.rs's VideoControl layout exactly:
// fields are present, in order, only when their corresponding flag bit
// (or combination) is set.
type VideoControl struct {
	Flags VideoControlFlags

	LastDisplayedFrame *struct {
		FrameID   uint32
		Timestamp int64
	}
	QueueDepth *uint32
	LostFrames *struct {
		First uint32
		Count uint32
	}
	BitrateUpdate     *uint32
	VideoFormatUpdate *VideoFormat
	SmoothRenderingSettings *struct {
		A, B, C uint64
	}
}

func (c VideoControl) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(VideoControlType))
	w.PutU32(c.Flags.Encode())
	if c.Flags.LastDisplayedFrame && c.Flags.LastDisplayedFrameRendered && c.LastDisplayedFrame != nil {
		w.PutU32(c.LastDisplayedFrame.FrameID)
		w.PutI64(c.LastDisplayedFrame.Timestamp)
	}
	if c.Flags.QueueDepth && c.QueueDepth != nil {
		w.PutU32(*c.QueueDepth)
	}
	if c.Flags.LostFrames && c.LostFrames != nil {
		w.PutU32(c.LostFrames.First)
		w.PutU32(c.LostFrames.Count)
	}
	if c.Flags.BitrateUpdate && c.BitrateUpdate != nil {
		w.PutU32(*c.BitrateUpdate)
	}
	if c.Flags.VideoFormatChange && c.VideoFormatUpdate != nil {
		c.VideoFormatUpdate.marshal(w)
	}
	if c.Flags.SmoothRenderingSettingsSent && c.SmoothRenderingSettings != nil {
		w.PutU64(c.SmoothRenderingSettings.A)
		w.PutU64(c.SmoothRenderingSettings.B)
		w.PutU64(c.SmoothRenderingSettings.C)
	}
	return w.Bytes()
}

func UnmarshalVideoControl(b []byte) (VideoControl, error) {
	var c VideoControl
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return c, err
	}
	if VideoPacketType(typ) != VideoControlType {
		return c, errors.Errorf("packets: expected VideoControl, got type %d", typ)
	}
	flagsVal, err := r.U32()
	if err != nil {
		return c, err
	}
	c.Flags = ParseVideoControlFlags(flagsVal)

	if c.Flags.LastDisplayedFrame && c.Flags.LastDisplayedFrameRendered {
		frameID, err := r.U32()
		if err != nil {
			return c, err
		}
		ts, err := r.I64()
		if err != nil {
			return c, err
		}
		c.LastDisplayedFrame = &struct {
			FrameID   uint32
			Timestamp int64
		}{frameID, ts}
	}
	if c.Flags.QueueDepth {
		v, err := r.U32()
		if err != nil {
			return c, err
		}
		c.QueueDepth = &v
	}
	if c.Flags.LostFrames {
		first, err := r.U32()
		if err != nil {
			return c, err
		}
		count, err := r.U32()
		if err != nil {
			return c, err
		}
		c.LostFrames = &struct {
			First uint32
			Count uint32
		}{first, count}
	}
	if c.Flags.BitrateUpdate {
		v, err := r.U32()
		if err != nil {
			return c, err
		}
		c.BitrateUpdate = &v
	}
	if c.Flags.VideoFormatChange {
		f, err := unmarshalVideoFormat(r)
		if err != nil {
			return c, err
		}
		c.VideoFormatUpdate = &f
	}
	if c.Flags.SmoothRenderingSettingsSent {
		a, err := r.U64()
		if err != nil {
			return c, err
		}
		b, err := r.U64()
		if err != nil {
			return c, err
		}
		cc, err := r.U64()
		if err != nil {
			return c, err
		}
		c.SmoothRenderingSettings = &struct{ A, B, C uint64 }{a, b, cc}
	}
	return c, nil
}

// VideoDataFlags mirrors video.rs's VideoDataFlags.
type VideoDataFlags struct {
	JitterInfo bool // bit 28, 0x10000000
	Hashed     bool // bit 27, 0x08000000
}

const (
	videoDataFlagJitterInfo uint32 = 0x10000000
	videoDataFlagHashed     uint32 = 0x08000000
)

func ParseVideoDataFlags(v uint32) VideoDataFlags {
	return VideoDataFlags{
		JitterInfo: v&videoDataFlagJitterInfo != 0,
		Hashed:     v&videoDataFlagHashed != 0,
	}
}

func (f VideoDataFlags) Encode() uint32 {
	var v uint32
	if f.JitterInfo {
		v |= videoDataFlagJitterInfo
	}
	if f.Hashed {
		v |= videoDataFlagHashed
	}
	return v
}

// VideoData carries one fragment of an encoded video frame.
type VideoData struct {
	Unknown1     uint32
	Unknown2     uint32
	Flags        VideoDataFlags
	FrameID      uint32
	Timestamp    uint64
	PacketCount  uint32
	TotalSize    uint32
	MetadataSize uint32
	Offset       uint32
	Unknown3     uint32
	Data         []byte
}

func (d VideoData) Marshal() []byte {
	w := codec.NewWriter()
	w.PutU32(uint32(VideoDataType))
	w.PutU32(d.Unknown1)
	w.PutU32(d.Unknown2)
	w.PutU32(d.Flags.Encode())
	w.PutU32(d.FrameID)
	w.PutU64(d.Timestamp)
	w.PutU32(d.PacketCount)
	w.PutU32(d.TotalSize)
	w.PutU32(d.MetadataSize)
	w.PutU32(d.Offset)
	w.PutU32(d.Unknown3)
	w.PutU32(uint32(len(d.Data)))
	w.PutBytes(d.Data)
	return w.Bytes()
}

func UnmarshalVideoData(b []byte) (VideoData, error) {
	var d VideoData
	r := codec.NewReader(b)
	typ, err := r.U32()
	if err != nil {
		return d, err
	}
	if VideoPacketType(typ) != VideoDataType {
		return d, errors.Errorf("packets: expected VideoData, got type %d", typ)
	}
	if d.Unknown1, err = r.U32(); err != nil {
		return d, err
	}
	if d.Unknown2, err = r.U32(); err != nil {
		return d, err
	}
	flagsVal, err := r.U32()
	if err != nil {
		return d, err
	}
	d.Flags = ParseVideoDataFlags(flagsVal)
	if d.FrameID, err = r.U32(); err != nil {
		return d, err
	}
	if d.Timestamp, err = r.U64(); err != nil {
		return d, err
	}
	if d.PacketCount, err = r.U32(); err != nil {
		return d, err
	}
	if d.TotalSize, err = r.U32(); err != nil {
		return d, err
	}
	if d.MetadataSize, err = r.U32(); err != nil {
		return d, err
	}
	if d.Offset, err = r.U32(); err != nil {
		return d, err
	}
	if d.Unknown3, err = r.U32(); err != nil {
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
