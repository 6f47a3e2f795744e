package packets_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/packets"
)

// TestAudioControlFlagBoundaries reproduces audio.rs's byte-level flag
// vectors: 0x10 start_stream, 0x08 stop_stream, 0x40 reinitialize, 0x50
// start+reinitialize.
func TestAudioControlFlagBoundaries(t *testing.T) {
	cases := []struct {
		v    uint32
		want packets.AudioControlFlags
	}{
		{0x10, packets.AudioControlFlags{StartStream: true}},
		{0x08, packets.AudioControlFlags{StopStream: true}},
		{0x40, packets.AudioControlFlags{Reinitialize: true}},
		{0x50, packets.AudioControlFlags{StartStream: true, Reinitialize: true}},
	}
	for _, c := range cases {
		require.Equal(t, c.want, packets.ParseAudioControlFlags(c.v))
		require.Equal(t, c.v, c.want.Encode())
	}
}

func TestAudioDataRoundTrip(t *testing.T) {
	d := packets.AudioData{Flags: 0, FrameID: 7, Timestamp: 123456789, Data: []byte{1, 2, 3, 4}}
	got, err := packets.UnmarshalAudioData(d.Marshal())
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestAudioClientHandshakeRoundTrip(t *testing.T) {
	h := packets.AudioClientHandshake{
		InitialFrameID: 1,
		RequestedFormat: packets.AudioFormat{
			Channels: 2, Frequency: 48000, Codec: packets.AudioCodecOpus,
		},
	}
	got, err := packets.UnmarshalAudioClientHandshake(h.Marshal())
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestAudioFormatPCMConditionalField(t *testing.T) {
	h := packets.AudioClientHandshake{
		InitialFrameID: 0,
		RequestedFormat: packets.AudioFormat{
			Channels: 2, Frequency: 48000, Codec: packets.AudioCodecPCM,
			PCMFormat: &packets.PCMAudioFormat{Bits: 16, IsFloat: false},
		},
	}
	got, err := packets.UnmarshalAudioClientHandshake(h.Marshal())
	require.NoError(t, err)
	require.NotNil(t, got.RequestedFormat.PCMFormat)
	require.Equal(t, h, got)
}
