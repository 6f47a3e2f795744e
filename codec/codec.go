// Package codec implements the little-endian binary reader/writer
// primitives shared by every channel packet format in package packets.
package codec

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrMalformed is returned whenever a packet is shorter than its declared
// fields require, or an enum byte falls outside its known range.
var ErrMalformed = errors.New("codec: malformed packet")

// Reader walks a byte slice field by field in little-endian order.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for sequential reads. b is not copied.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return errors.Wrapf(ErrMalformed, "need %d bytes, have %d", n, r.Remaining())
	}
	return nil
}

// U8 reads a single byte.
func (r *Reader) U8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// I16 reads a little-endian int16.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// I32 reads a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// I64 reads a little-endian int64.
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// F64 reads a little-endian IEEE-754 double.
func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Bytes reads exactly n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, r.buf[r.pos:r.pos+n])
	r.pos += n
	return v, nil
}

// Rest returns every remaining unread byte.
func (r *Reader) Rest() []byte {
	v := make([]byte, r.Remaining())
	copy(v, r.buf[r.pos:])
	r.pos = len(r.buf)
	return v
}

// VarBytes reads a u32-length-prefixed byte string.
func (r *Reader) VarBytes() ([]byte, error) {
	n, err := r.U32()
	if err != nil {
		return nil, err
	}
	return r.Bytes(int(n))
}

// CString reads a NUL-terminated UTF-8 string.
func (r *Reader) CString() (string, error) {
	start := r.pos
	for r.pos < len(r.buf) {
		if r.buf[r.pos] == 0 {
			s := string(r.buf[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
	return "", errors.Wrap(ErrMalformed, "unterminated string")
}

// Writer accumulates little-endian fields into a growable buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) PutU8(v byte) {
	w.buf = append(w.buf, v)
}

func (w *Writer) PutU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) PutU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) PutU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) PutI16(v int16) { w.PutU16(uint16(v)) }
func (w *Writer) PutI32(v int32) { w.PutU32(uint32(v)) }
func (w *Writer) PutI64(v int64) { w.PutU64(uint64(v)) }

func (w *Writer) PutF64(v float64) {
	w.PutU64(math.Float64bits(v))
}

func (w *Writer) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) PutVarBytes(b []byte) {
	w.PutU32(uint32(len(b)))
	w.PutBytes(b)
}

func (w *Writer) PutCString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}
