package srtp

import (
	"crypto/aes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Session key derivation labels, RFC 3711 §4.3.1. MS-SRTP reuses the same
// label scheme for its AEAD_AES_128_GCM profile; only the encryption and
// salt labels are needed since GCM folds authentication into the AEAD tag
// instead of deriving a separate auth key.
const (
	labelRTPEncryption byte = 0x00
	labelRTPSalt       byte = 0x02
)

// deriveSessionMaterial implements the RFC 3711 Appendix B.3 key-derivation
// function: x = master_salt XOR (label << 48), then AES-CM-encrypt the
// resulting counter block(s) under master_key to produce outLen bytes of
// keystream. Grounded on cptpcrd-srtp's generateSessionKey/
// generateSessionSalt, which implements the same construction for the
// AES-CM cipher suite this profile's key schedule descends from.
func deriveSessionMaterial(masterKey, masterSalt []byte, label byte, outLen int) ([]byte, error) {
	if len(masterSalt) != 14 {
		return nil, errors.Errorf("srtp: master salt must be 14 bytes, got %d", len(masterSalt))
	}
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: build AES cipher for KDF")
	}

	var x [16]byte
	copy(x[:14], masterSalt)
	// label occupies the byte immediately preceding the two zero
	// index/kdr octets RFC 3711 reserves at the end of the salt field.
	x[7] ^= label

	out := make([]byte, 0, outLen)
	counter := binary.BigEndian.Uint64(x[8:16])
	for len(out) < outLen {
		var ctrBlock [16]byte
		copy(ctrBlock[:8], x[:8])
		binary.BigEndian.PutUint64(ctrBlock[8:], counter)

		var ks [16]byte
		block.Encrypt(ks[:], ctrBlock[:])
		out = append(out, ks[:]...)
		counter++
	}
	return out[:outLen], nil
}

func deriveSessionKey(masterKey, masterSalt []byte) ([]byte, error) {
	return deriveSessionMaterial(masterKey, masterSalt, labelRTPEncryption, 16)
}

func deriveSessionSalt(masterKey, masterSalt []byte) ([]byte, error) {
	return deriveSessionMaterial(masterKey, masterSalt, labelRTPSalt, 14)
}
