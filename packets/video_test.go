package packets_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/packets"
)

// TestVideoServerHandshakeVectors reproduces video.rs's own test vector:
// protocol_version=6, screen 1280x720, fps=60,
// reference_timestamp=1613399625116, one H264 format matching the screen
// dimensions.
func TestVideoServerHandshakeVectors(t *testing.T) {
	h := packets.VideoServerHandshake{
		ProtocolVersion:    6,
		ScreenWidth:        1280,
		ScreenHeight:       720,
		FPS:                60,
		ReferenceTimestamp: 1613399625116,
		Formats: []packets.VideoFormat{
			{FPS: 60, Width: 1280, Height: 720, Codec: packets.VideoCodecH264},
		},
	}
	got, err := packets.UnmarshalVideoServerHandshake(h.Marshal())
	require.NoError(t, err)
	require.Equal(t, h, got)
}

// TestVideoControlFlagBoundaries reproduces video.rs's flag test table:
// each of these values maps to exactly one named flag.
func TestVideoControlFlagBoundaries(t *testing.T) {
	cases := []struct {
		v    uint32
		want packets.VideoControlFlags
	}{
		{0x20, packets.VideoControlFlags{RequestKeyframes: true}},
		{0x10, packets.VideoControlFlags{StartStream: true}},
		{0x08, packets.VideoControlFlags{StopStream: true}},
		{0x04, packets.VideoControlFlags{QueueDepth: true}},
		{0x02, packets.VideoControlFlags{LostFrames: true}},
		{0x01, packets.VideoControlFlags{LastDisplayedFrame: true}},
		{0x80, packets.VideoControlFlags{LastDisplayedFrameRendered: true}},
		{0x1000, packets.VideoControlFlags{SmoothRenderingSettingsSent: true}},
		{0x400, packets.VideoControlFlags{BitrateUpdate: true}},
		{0x200, packets.VideoControlFlags{VideoFormatChange: true}},
	}
	for _, c := range cases {
		require.Equal(t, c.want, packets.ParseVideoControlFlags(c.v))
		require.Equal(t, c.v, c.want.Encode())
	}
}

func TestVideoControlConditionalFieldsRoundTrip(t *testing.T) {
	depth := uint32(5)
	c := packets.VideoControl{
		Flags:      packets.VideoControlFlags{QueueDepth: true},
		QueueDepth: &depth,
	}
	got, err := packets.UnmarshalVideoControl(c.Marshal())
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestVideoDataRoundTrip(t *testing.T) {
	d := packets.VideoData{
		Flags:        packets.VideoDataFlags{Hashed: true},
		FrameID:      99,
		Timestamp:    42,
		PacketCount:  1,
		TotalSize:    4,
		MetadataSize: 0,
		Data:         []byte{9, 8, 7, 6},
	}
	got, err := packets.UnmarshalVideoData(d.Marshal())
	require.NoError(t, err)
	require.Equal(t, d, got)
}
