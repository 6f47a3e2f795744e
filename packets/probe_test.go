package packets_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/packets"
)

// TestConnectionProbingVectors reproduces
// udp_connection_probing.rs's own test vectors: [1,0,2,3,4,5,6] -> Syn,
// [2,0,5,0,0,0] -> Ack{accepted_packet_size:5, appendix:0}.
func TestConnectionProbingVectors(t *testing.T) {
	syn, err := packets.UnmarshalConnectionProbingSyn([]byte{1, 0, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Equal(t, [5]byte{2, 3, 4, 5, 6}, syn.ProbeData)

	ack, err := packets.UnmarshalConnectionProbingAck([]byte{2, 0, 5, 0, 0, 0})
	require.NoError(t, err)
	require.EqualValues(t, 5, ack.AcceptedPacketSize)
	require.EqualValues(t, 0, ack.Appendix)
}
