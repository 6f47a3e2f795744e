package srtp_test

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/srtp"
)

// These vectors are reproduced verbatim from
// gamestreaming/src/crypto.rs's #[cfg(test)] block
// (test_ping_key_derivation, test_keyed_hasher, test_get_ping_key_context)
// and gamestreaming_native/src/packets/ping.rs's deserialize_ping_packet.
const (
	pingMasterHex = "d7d27ce7dfc3ef499935fbbdb4451dc6"
	pingSaltHex   = "ffff"
	pingKeyHex    = "9dda3a76d9e73b41ad8b37881e9d5af973271573d2fd3783dd6650b9840afb94"
	pingSigHex    = "d0c87bfa07d4e7fc9909d96e3cb3977d5232bbb391932236d56411f82d103bd5"
	pingMasterB64 = "19J859/D70mZNfu9tEUdxgUVVMbRDkV/L2LavviX"
)

func TestDerivePingKey(t *testing.T) {
	master := mustHex(t, pingMasterHex)
	salt := mustHex(t, pingSaltHex)

	var saltArr [2]byte
	copy(saltArr[:], salt)

	key := srtp.DerivePingKey(master, saltArr)
	require.Equal(t, mustHex(t, pingKeyHex), key)
}

func TestPingSignatureOverZeroSequence(t *testing.T) {
	key := mustHex(t, pingKeyHex)

	frame := srtp.NewPingRequest(key, 0)
	require.Equal(t, mustHex(t, pingSigHex), frame.Signature[:])
	require.True(t, frame.Verify(key))
}

func TestDerivePingKeyFromBase64MasterSecret(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(pingMasterB64)
	require.NoError(t, err)
	require.Len(t, raw, 30)

	masterKey := raw[:16]
	salt := mustHex(t, pingSaltHex)
	var saltArr [2]byte
	copy(saltArr[:], salt)

	key := srtp.DerivePingKey(masterKey, saltArr)
	require.Equal(t, mustHex(t, pingKeyHex), key)
}

// TestUnmarshalPingFrame reproduces ping.rs's deserialize_ping_packet
// vector: the first two bytes are the connection-id salt and are not
// part of the PingFrame wire encoding.
func TestUnmarshalPingFrame(t *testing.T) {
	full := mustHex(t, "ffff010000000000"+pingSigHex)
	salt := full[:2]
	require.Equal(t, mustHex(t, pingSaltHex), salt)

	frame, err := srtp.UnmarshalPingFrame(full[2:])
	require.NoError(t, err)
	require.EqualValues(t, 0x01, frame.PingType)
	require.Equal(t, srtp.PingRequest, frame.Flags)
	require.EqualValues(t, 0, frame.SequenceNum)
	require.Equal(t, mustHex(t, pingSigHex), frame.Signature[:])
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}
