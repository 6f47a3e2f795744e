package packets_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/packets"
)

func TestMessageDataRoundTrip(t *testing.T) {
	d := packets.MessageData{Unknown1: 1, Unknown2: 2, Unknown3: 3, Unknown4: 4, Unknown5: 5, Unknown6: 6}
	got, err := packets.UnmarshalMessageData(d.Marshal())
	require.NoError(t, err)
	require.Equal(t, d, got)
}

func TestMessageHandshakeRoundTrip(t *testing.T) {
	h := packets.MessageHandshake{Unknown: 42}
	got, err := packets.UnmarshalMessageHandshake(h.Marshal())
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestMuxDCTControlRoundTrip(t *testing.T) {
	c := packets.MuxDCTControl{
		Header:      packets.MuxDCTControlHeader{Field0: 1, Field1: 2, Field2: 3, Field3: 4},
		Op:          packets.ControlProtocolCreate,
		ChannelName: packets.ChannelClassControl,
	}
	got, err := packets.UnmarshalMuxDCTControl(c.Marshal())
	require.NoError(t, err)
	require.Equal(t, c, got)
	require.NoError(t, got.ValidateOp())
}
