package srtp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	pingKeyIterations = 100000
	pingKeyLength     = 32
)

// PingFlag distinguishes a keepalive request from its acknowledgement,
// matching gamestreaming_native/src/packets/ping.rs's PingFlag.
type PingFlag byte

const (
	PingRequest  PingFlag = 0x00
	PingResponse PingFlag = 0xFF
)

// DerivePingKey derives the 32-byte HMAC-SHA256 signing key used by the
// ping keepalive layer from the session master key and a 2-byte
// connection-id salt, via PBKDF2-HMAC-SHA256 with 100000 iterations.
// Grounded on gamestreaming/src/crypto.rs's get_ping_signing_ctx; the
// iteration count, salt length and key length are all fixed by the
// embedded test vectors in that file.
func DerivePingKey(masterKey []byte, salt [2]byte) []byte {
	return pbkdf2.Key(masterKey, salt[:], pingKeyIterations, pingKeyLength, sha256.New)
}

// PingFrame is the ping payload that follows the 2-byte connection-id
// salt on the wire, per spec.md §4.C / gamestreaming_native ping.rs. The
// salt itself is stripped by the caller before PingFrame is parsed.
type PingFrame struct {
	PingType     byte
	Flags        PingFlag
	SequenceNum  uint32
	Signature    [32]byte
}

const pingPayloadType = 0x01

// NewPingRequest builds and signs a ping request for seq under key.
func NewPingRequest(key []byte, seq uint32) PingFrame {
	return newSignedPing(key, seq, PingRequest)
}

// NewPingResponse builds and signs a ping acknowledgement for seq under
// key.
func NewPingResponse(key []byte, seq uint32) PingFrame {
	return newSignedPing(key, seq, PingResponse)
}

func newSignedPing(key []byte, seq uint32, flag PingFlag) PingFrame {
	f := PingFrame{PingType: pingPayloadType, Flags: flag, SequenceNum: seq}
	copy(f.Signature[:], signSequence(key, seq))
	return f
}

func signSequence(key []byte, seq uint32) []byte {
	var seqBytes [4]byte
	binary.LittleEndian.PutUint32(seqBytes[:], seq)
	mac := hmac.New(sha256.New, key)
	mac.Write(seqBytes[:])
	return mac.Sum(nil)
}

// Verify checks f.Signature against a freshly computed HMAC over
// f.SequenceNum, using hmac.Equal for constant-time comparison.
func (f PingFrame) Verify(key []byte) bool {
	want := signSequence(key, f.SequenceNum)
	return hmac.Equal(want, f.Signature[:])
}

// Marshal encodes a PingFrame as ping_type(1) | flags(1) | seq(4 LE) |
// signature(32).
func (f PingFrame) Marshal() []byte {
	b := make([]byte, 0, 38)
	b = append(b, f.PingType, byte(f.Flags))
	var seq [4]byte
	binary.LittleEndian.PutUint32(seq[:], f.SequenceNum)
	b = append(b, seq[:]...)
	b = append(b, f.Signature[:]...)
	return b
}

// UnmarshalPingFrame decodes a PingFrame from the bytes following the
// 2-byte connection-id salt prefix.
func UnmarshalPingFrame(b []byte) (PingFrame, error) {
	if len(b) != 38 {
		return PingFrame{}, errors.Wrapf(ErrMalformed, "ping frame must be 38 bytes, got %d", len(b))
	}
	f := PingFrame{
		PingType: b[0],
		Flags:    PingFlag(b[1]),
	}
	f.SequenceNum = binary.LittleEndian.Uint32(b[2:6])
	copy(f.Signature[:], b[6:38])
	return f, nil
}
