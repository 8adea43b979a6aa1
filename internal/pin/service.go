// Package pin implements the shared-secret gate that protects the whole
// application: a single 4-6 digit PIN stored as a salted SHA-256 digest.
package pin

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	"github.com/dukerupert/darzi/internal/store"
)

// settingKey is the app_settings row holding the secret. Upserts on this key
// keep the invariant of at most one secret record.
const settingKey = "pin"

// fixedSalt must never change: every stored digest was computed against it,
// including digests written by earlier deployments.
const fixedSalt = "tailor_master_salt_2024"

var pinPattern = regexp.MustCompile(`^\d{4,6}$`)

var (
	// ErrInvalidFormat rejects a PIN that is not 4-6 digits.
	ErrInvalidFormat = errors.New("pin must be 4-6 digits")
	// ErrNotConfigured means verify was called before any PIN was set.
	// Callers must present it to users exactly like a wrong PIN.
	ErrNotConfigured = errors.New("pin not configured")
)

// secretKind tags the stored value: early deployments wrote the raw digits,
// current ones write a 64-char hex digest.
type secretKind int

const (
	secretDigest secretKind = iota
	secretPlaintext
)

func classify(stored string) secretKind {
	if pinPattern.MatchString(stored) {
		return secretPlaintext
	}
	return secretDigest
}

// Digest returns the lowercase hex SHA-256 of the PIN concatenated with the
// fixed salt.
func Digest(pin string) string {
	sum := sha256.Sum256([]byte(pin + fixedSalt))
	return hex.EncodeToString(sum[:])
}

// Service performs PIN existence checks, sets, and verifications against the
// settings store. It is stateless; every call is a fresh read or write.
type Service struct {
	settings *store.SettingsStore
}

func NewService(settings *store.SettingsStore) *Service {
	return &Service{settings: settings}
}

// Exists reports whether a PIN has ever been configured.
func (s *Service) Exists() (bool, error) {
	exists, err := s.settings.Exists(settingKey)
	if err != nil {
		return false, fmt.Errorf("check pin: %w", err)
	}
	return exists, nil
}

// Set validates the PIN format and upserts its digest, unconditionally
// overwriting any prior secret.
func (s *Service) Set(pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidFormat
	}
	if err := s.settings.Set(settingKey, Digest(pin)); err != nil {
		return fmt.Errorf("store pin: %w", err)
	}
	return nil
}

// Verify checks the presented PIN against the stored secret. A legacy
// plaintext secret that matches is rewritten to digest form, so each
// successful legacy verification is the last one to see plaintext.
//
// Once format validation has passed, a mismatch is reported as (false, nil)
// with no distinction between "wrong PIN" and any other compare failure.
func (s *Service) Verify(pin string) (bool, error) {
	if !pinPattern.MatchString(pin) {
		return false, ErrInvalidFormat
	}

	stored, err := s.settings.Get(settingKey)
	if errors.Is(err, store.ErrSettingNotFound) {
		return false, ErrNotConfigured
	}
	if err != nil {
		return false, fmt.Errorf("load pin: %w", err)
	}

	switch classify(stored) {
	case secretPlaintext:
		if subtle.ConstantTimeCompare([]byte(stored), []byte(pin)) != 1 {
			return false, nil
		}
		if err := s.settings.Set(settingKey, Digest(pin)); err != nil {
			return false, fmt.Errorf("migrate pin: %w", err)
		}
		return true, nil
	default:
		return subtle.ConstantTimeCompare([]byte(stored), []byte(Digest(pin))) == 1, nil
	}
}
