// Package srtp implements the MS-SRTP media-protection profile (AEAD
// AES-128-GCM with a 14-byte master salt) and the signed-ping keepalive
// layer that runs alongside it.
package srtp

import "github.com/pkg/errors"

var (
	// ErrAuthFailed is returned when GCM tag verification fails.
	ErrAuthFailed = errors.New("srtp: authentication failed")
	// ErrReplay is returned when a packet's sequence number falls outside
	// the current replay window for its SSRC.
	ErrReplay = errors.New("srtp: replayed packet")
	// ErrMalformed is returned when a packet is too short to contain a
	// valid RTP header and GCM tag.
	ErrMalformed = errors.New("srtp: malformed packet")
)
