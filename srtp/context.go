package srtp

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/binary"
	"sync"

	"github.com/pion/rtp"
	"github.com/pkg/errors"
)

const (
	// maxROCDisorder bounds how far a sequence number may appear to roll
	// backward before it is treated as a rollover rather than reordering,
	// mirroring cptpcrd-srtp's updateRolloverCount guard.
	maxROCDisorder     = 100
	maxSequenceNumber  = 1 << 16
	replayWindowWidth  = 64
	gcmTagSize         = 16
	nonceSize          = 12
)

// direction holds one AEAD_AES_128_GCM cipher plus the per-SSRC state
// needed to track rollover counters and replay windows independently for
// each direction of travel.
type direction struct {
	aead  cipher.AEAD
	salt  []byte // 14-byte derived session salt
	mu    sync.Mutex
	ssrcs map[uint32]*ssrcState
}

type ssrcState struct {
	rolloverCounter uint32
	highestSeq      uint16
	seen            bool
	replayWindow    uint64
}

// Context holds the independent inbound/outbound MS-SRTP cryptographic
// state for a single session, derived from one 16-byte master key plus a
// 14-byte master salt. Grounded on gamestreaming/src/crypto.rs's
// MsSrtpCryptoContext, which holds the equivalent crypto_ctx_in/
// crypto_ctx_out pair.
type Context struct {
	masterKey  []byte
	masterSalt []byte
	in         *direction
	out        *direction
}

// NewContext builds a Context from a 16-byte master key and 14-byte
// master salt.
func NewContext(masterKey [16]byte, masterSalt [14]byte) (*Context, error) {
	return newContext(masterKey[:], masterSalt[:])
}

func newContext(masterKey, masterSalt []byte) (*Context, error) {
	in, err := newDirection(masterKey, masterSalt)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: build inbound direction")
	}
	out, err := newDirection(masterKey, masterSalt)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: build outbound direction")
	}
	return &Context{masterKey: masterKey, masterSalt: masterSalt, in: in, out: out}, nil
}

// NewContextFromBase64 splits a base64-encoded 30-byte master secret into
// its 16-byte key and 14-byte salt halves, matching
// MsSrtpCryptoContext::from_base64.
func NewContextFromBase64(s string) (*Context, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: decode master secret")
	}
	if len(raw) != 30 {
		return nil, errors.Errorf("srtp: master secret must decode to 30 bytes, got %d", len(raw))
	}
	return newContext(raw[:16], raw[16:])
}

func newDirection(masterKey, masterSalt []byte) (*direction, error) {
	sessKey, err := deriveSessionKey(masterKey, masterSalt)
	if err != nil {
		return nil, err
	}
	sessSalt, err := deriveSessionSalt(masterKey, masterSalt)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(sessKey)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: build session AES cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: build GCM AEAD")
	}
	return &direction{aead: aead, salt: sessSalt, ssrcs: map[uint32]*ssrcState{}}, nil
}

func (d *direction) stateFor(ssrc uint32) *ssrcState {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.ssrcs[ssrc]
	if !ok {
		st = &ssrcState{}
		d.ssrcs[ssrc] = st
	}
	return st
}

// nonce builds the 12-byte AEAD nonce for a given SSRC/ROC/sequence
// triple, XORed against the direction's session salt, following the same
// SSRC|ROC|SEQ<<16 packing cptpcrd-srtp's generateCounter uses for its
// AES-CM IV.
func (d *direction) nonce(ssrc uint32, roc uint32, seq uint16) [nonceSize]byte {
	var iv [nonceSize]byte
	binary.BigEndian.PutUint32(iv[0:4], ssrc)
	binary.BigEndian.PutUint32(iv[4:8], roc)
	binary.BigEndian.PutUint16(iv[8:10], seq)
	for i := range iv {
		iv[i] ^= d.salt[i]
	}
	return iv
}

// updateRolloverCount adjusts the rollover counter for a newly observed
// sequence number, per RFC 3711 §3.3.1, guarding against more than
// maxROCDisorder packets of apparent reordering before treating a small
// sequence number as a genuine rollover.
func updateRolloverCount(st *ssrcState, seq uint16) uint32 {
	if !st.seen {
		st.seen = true
		st.highestSeq = seq
		return st.rolloverCounter
	}
	roc := st.rolloverCounter
	switch {
	case st.highestSeq > maxSequenceNumber-maxROCDisorder && int(seq) < int(st.highestSeq)-(maxSequenceNumber-maxROCDisorder):
		roc = st.rolloverCounter + 1
	case int(st.highestSeq) < maxROCDisorder && seq > maxSequenceNumber-maxROCDisorder:
		if st.rolloverCounter > 0 {
			roc = st.rolloverCounter - 1
		}
	}
	if seq > st.highestSeq || roc > st.rolloverCounter {
		st.highestSeq = seq
	}
	st.rolloverCounter = roc
	return roc
}

func checkReplay(st *ssrcState, seq uint16) error {
	if !st.seen {
		return nil
	}
	diff := int32(st.highestSeq) - int32(seq)
	if diff >= replayWindowWidth {
		return ErrReplay
	}
	if diff >= 0 {
		bit := uint64(1) << uint(diff)
		if st.replayWindow&bit != 0 {
			return ErrReplay
		}
		st.replayWindow |= bit
		return nil
	}
	shift := uint(-diff)
	if shift < replayWindowWidth {
		st.replayWindow <<= shift
	} else {
		st.replayWindow = 0
	}
	st.replayWindow |= 1
	return nil
}

// protect encrypts plaintext under the given direction for hdr's
// SSRC/sequence number, returning the RTP header bytes followed by
// ciphertext||tag.
func protect(d *direction, plaintext []byte, hdr *rtp.Header) ([]byte, error) {
	headerBytes, err := hdr.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "srtp: marshal RTP header")
	}
	st := d.stateFor(hdr.SSRC)
	roc := updateRolloverCount(st, hdr.SequenceNumber)
	nonce := d.nonce(hdr.SSRC, roc, hdr.SequenceNumber)
	ciphertext := d.aead.Seal(nil, nonce[:], plaintext, headerBytes)
	return append(headerBytes, ciphertext...), nil
}

// unprotect authenticates and decrypts a protected RTP packet under the
// given direction, returning the plaintext payload.
func unprotect(d *direction, packet []byte, hdr *rtp.Header) ([]byte, error) {
	var headerBytes []byte
	var body []byte
	if hdr == nil {
		hdr = &rtp.Header{}
		n, err := hdr.Unmarshal(packet)
		if err != nil {
			return nil, errors.Wrap(ErrMalformed, err.Error())
		}
		headerBytes = packet[:n]
		body = packet[n:]
	} else {
		var err error
		headerBytes, err = hdr.Marshal()
		if err != nil {
			return nil, errors.Wrap(err, "srtp: marshal RTP header")
		}
		body = packet
	}
	if len(body) < gcmTagSize {
		return nil, errors.Wrap(ErrMalformed, "ciphertext shorter than GCM tag")
	}

	st := d.stateFor(hdr.SSRC)
	if err := checkReplay(st, hdr.SequenceNumber); err != nil {
		return nil, err
	}
	roc := updateRolloverCount(st, hdr.SequenceNumber)
	nonce := d.nonce(hdr.SSRC, roc, hdr.SequenceNumber)

	plaintext, err := d.aead.Open(nil, nonce[:], body, headerBytes)
	if err != nil {
		return nil, errors.Wrap(ErrAuthFailed, err.Error())
	}
	return plaintext, nil
}

// Protect encrypts an outbound RTP payload.
func (c *Context) Protect(plaintext []byte, hdr *rtp.Header) ([]byte, error) {
	return protect(c.out, plaintext, hdr)
}

// Unprotect decrypts and authenticates an inbound RTP packet. If hdr is
// nil the RTP header is parsed from the leading bytes of ciphertext.
func (c *Context) Unprotect(ciphertext []byte, hdr *rtp.Header) ([]byte, error) {
	return unprotect(c.in, ciphertext, hdr)
}

// ProtectAsHost encrypts using the inbound context's keying material,
// modeling offline dual-role analysis where a capture is replayed as if
// this endpoint had been acting as the opposite side of the connection.
// Mirrors gamestreaming/src/crypto.rs's encrypt_rtp_as_host, which
// deliberately swaps in the "in" context rather than "out".
func (c *Context) ProtectAsHost(plaintext []byte, hdr *rtp.Header) ([]byte, error) {
	return protect(c.in, plaintext, hdr)
}

// UnprotectAsHost decrypts using the outbound context's keying material,
// the mirror image of ProtectAsHost, matching decrypt_rtp_as_host's use
// of crypto_ctx_out.
func (c *Context) UnprotectAsHost(ciphertext []byte, hdr *rtp.Header) ([]byte, error) {
	return unprotect(c.out, ciphertext, hdr)
}
