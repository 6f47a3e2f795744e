package rtpdemux_test

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/rtpdemux"
)

func TestParsePayloadTypeKnownValues(t *testing.T) {
	pt, err := rtpdemux.ParsePayloadType(0x65)
	require.NoError(t, err)
	require.Equal(t, rtpdemux.UDPKeepAlive, pt)

	pt, err = rtpdemux.ParsePayloadType(0x30)
	require.NoError(t, err)
	require.Equal(t, rtpdemux.MuxDCTChannelRangeStart, pt)
}

func TestParsePayloadTypeUnknown(t *testing.T) {
	_, err := rtpdemux.ParsePayloadType(0x99)
	require.ErrorIs(t, err, rtpdemux.ErrUnknownPayloadType)
}

func TestDemuxSplitsPayloadType(t *testing.T) {
	pkt := &rtp.Packet{
		Header:  rtp.Header{SSRC: 42},
		Payload: append([]byte{0x65}, []byte{1, 2, 3}...),
	}
	d, err := rtpdemux.Demux(pkt)
	require.NoError(t, err)
	require.Equal(t, rtpdemux.UDPKeepAlive, d.Type)
	require.Equal(t, []byte{1, 2, 3}, d.Payload)
}
