package gssv

import "github.com/pkg/errors"

var (
	// ErrInvalidPlatform is returned by ParsePlatform for an unrecognized
	// platform string.
	ErrInvalidPlatform = errors.New("gssv: invalid platform")
	// ErrAPI wraps a non-2xx HTTP response from the GSSV REST API.
	ErrAPI = errors.New("gssv: api error")
)

// ProvisioningError reports a session that ended in the Failed state, or
// that reported an unrecognized state label.
type ProvisioningError struct {
	State   StreamState
	Details *StreamErrorDetails
}

func (e *ProvisioningError) Error() string {
	if e.Details != nil {
		return "gssv: provisioning failed (" + string(e.State) + "): " + e.Details.Message
	}
	return "gssv: provisioning failed: " + string(e.State)
}

// ConnectionExchangeError reports a failed SDP or ICE exchange.
type ConnectionExchangeError struct {
	Stage  string
	Status string
}

func (e *ConnectionExchangeError) Error() string {
	return "gssv: " + e.Stage + " exchange failed with status " + e.Status
}
