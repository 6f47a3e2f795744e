package gssv

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Tokens is the persisted SISU/GSSV/transfer token bundle, per spec.md §6
// "Persisted state".
type Tokens struct {
	SisuToken     string    `json:"sisuToken"`
	GssvToken     string    `json:"gssvToken"`
	TransferToken string    `json:"transferToken"`
	RefreshedAt   time.Time `json:"refreshedAt"`
}

// TokenStore persists Tokens to a flat JSON file, rewritten in full on
// every Save call. No database dependency is warranted for a single
// small file (see DESIGN.md).
type TokenStore struct {
	path string
}

// NewTokenStore returns a TokenStore backed by path (conventionally
// tokens.json).
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load reads the persisted tokens. Returns os.ErrNotExist if no tokens
// have been saved yet.
func (s *TokenStore) Load() (*Tokens, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var t Tokens
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, errors.Wrap(err, "gssv: decode token store")
	}
	return &t, nil
}

// Save writes t to disk, setting RefreshedAt to now.
func (s *TokenStore) Save(t Tokens, now time.Time) error {
	t.RefreshedAt = now
	raw, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return errors.Wrap(err, "gssv: encode token store")
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return errors.Wrap(err, "gssv: write token store")
	}
	return nil
}
