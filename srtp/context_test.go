package srtp_test

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/srtp"
)

func testContext(t *testing.T) *srtp.Context {
	t.Helper()
	var key [16]byte
	var salt [14]byte
	for i := range key {
		key[i] = byte(i + 1)
	}
	for i := range salt {
		salt[i] = byte(0xA0 + i)
	}
	ctx, err := srtp.NewContext(key, salt)
	require.NoError(t, err)
	return ctx
}

func TestProtectUnprotectRoundTrip(t *testing.T) {
	ctx := testContext(t)
	hdr := &rtp.Header{Version: 2, PayloadType: 102, SequenceNumber: 1, Timestamp: 1000, SSRC: 0xCAFEBABE}
	plaintext := []byte("a video payload, protected")

	protected, err := ctx.Protect(plaintext, hdr)
	require.NoError(t, err)

	recovered, err := ctx.Unprotect(protected, nil)
	require.NoError(t, err)
	require.Equal(t, plaintext, recovered)
}

func TestUnprotectRejectsReplay(t *testing.T) {
	ctx := testContext(t)
	hdr := &rtp.Header{Version: 2, PayloadType: 102, SequenceNumber: 5, Timestamp: 1000, SSRC: 0xCAFEBABE}

	protected, err := ctx.Protect([]byte("payload"), hdr)
	require.NoError(t, err)

	_, err = ctx.Unprotect(protected, nil)
	require.NoError(t, err)

	_, err = ctx.Unprotect(protected, nil)
	require.ErrorIs(t, err, srtp.ErrReplay)
}

func TestUnprotectRejectsTamperedCiphertext(t *testing.T) {
	ctx := testContext(t)
	hdr := &rtp.Header{Version: 2, PayloadType: 102, SequenceNumber: 1, Timestamp: 1000, SSRC: 0xCAFEBABE}

	protected, err := ctx.Protect([]byte("payload"), hdr)
	require.NoError(t, err)
	protected[len(protected)-1] ^= 0xFF

	_, err = ctx.Unprotect(protected, nil)
	require.ErrorIs(t, err, srtp.ErrAuthFailed)
}

func TestHostSwappedDirectionsRoundTrip(t *testing.T) {
	ctx := testContext(t)
	hdr := &rtp.Header{Version: 2, PayloadType: 102, SequenceNumber: 9, Timestamp: 500, SSRC: 0x1234}

	protected, err := ctx.ProtectAsHost([]byte("host capture"), hdr)
	require.NoError(t, err)

	recovered, err := ctx.UnprotectAsHost(protected, nil)
	require.NoError(t, err)
	require.Equal(t, []byte("host capture"), recovered)
}
