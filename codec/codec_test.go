package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xcloudgo/gssv-stream/codec"
)

func TestRoundTripFields(t *testing.T) {
	w := codec.NewWriter()
	w.PutU8(0x42)
	w.PutU16(0xBEEF)
	w.PutU32(0xDEADBEEF)
	w.PutU64(0x0102030405060708)
	w.PutI32(-1)
	w.PutF64(3.5)
	w.PutCString("hello")
	w.PutVarBytes([]byte{1, 2, 3})

	r := codec.NewReader(w.Bytes())

	u8, err := r.U8()
	require.NoError(t, err)
	require.Equal(t, byte(0x42), u8)

	u16, err := r.U16()
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), u16)

	u32, err := r.U32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), u32)

	u64, err := r.U64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), u64)

	i32, err := r.I32()
	require.NoError(t, err)
	require.Equal(t, int32(-1), i32)

	f64, err := r.F64()
	require.NoError(t, err)
	require.Equal(t, 3.5, f64)

	s, err := r.CString()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	vb, err := r.VarBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, vb)

	require.Equal(t, 0, r.Remaining())
}

func TestTruncatedReadIsMalformed(t *testing.T) {
	r := codec.NewReader([]byte{0x01})
	_, err := r.U32()
	require.ErrorIs(t, err, codec.ErrMalformed)
}
