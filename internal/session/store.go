package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/repository"
)

// Slot keys. All of them are session-scoped and cleared on teardown.
const (
	KeyCredential   = "token"
	KeyProfile      = "user"
	KeyPendingEmail = "pending_email"
)

var sessionKeys = []string{KeyCredential, KeyProfile, KeyPendingEmail}

var (
	// ErrNoCredential is returned when no credential is stored.
	ErrNoCredential = errors.New("no credential stored")
	// ErrNoPendingEmail is returned when no activation is in progress.
	ErrNoPendingEmail = errors.New("no account pending activation")
)

// CredentialStore owns the persisted session credential and the other
// session-scoped slots. Every other component reads through it.
type CredentialStore struct {
	slots  repository.SlotRepository
	logger *zap.Logger
}

// NewCredentialStore wraps slots.
func NewCredentialStore(slots repository.SlotRepository, logger *zap.Logger) *CredentialStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialStore{slots: slots, logger: logger.Named("credential_store")}
}

// Set stores credential as is. Validation is the decoder's job.
func (s *CredentialStore) Set(ctx context.Context, credential string) error {
	if err := s.slots.Set(ctx, KeyCredential, credential); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	s.logger.Debug("credential stored")
	return nil
}

// Get returns the stored credential or ErrNoCredential.
func (s *CredentialStore) Get(ctx context.Context) (string, error) {
	v, err := s.slots.Get(ctx, KeyCredential)
	if errors.Is(err, repository.ErrSlotEmpty) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return v, nil
}

// Clear removes the credential. Safe when nothing is stored.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.slots.Delete(ctx, KeyCredential); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// ClearAll removes every session-scoped slot. It attempts each slot even when
// one fails and reports the joined errors.
func (s *CredentialStore) ClearAll(ctx context.Context) error {
	var errs []error
	for _, key := range sessionKeys {
		if err := s.slots.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.Debug("session slots cleared")
	return nil
}

// SetProfile stores the user object returned at login.
func (s *CredentialStore) SetProfile(ctx context.Context, p domain.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.slots.Set(ctx, KeyProfile, string(raw)); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return nil
}

// Profile returns the stored profile; ok is false when none is stored or it is unreadable.
func (s *CredentialStore) Profile(ctx context.Context) (domain.Profile, bool) {
	var p domain.Profile
	raw, err := s.slots.Get(ctx, KeyProfile)
	if err != nil {
		return p, false
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, false
	}
	return p, true
}

// SetPendingEmail records the account awaiting activation.
func (s *CredentialStore) SetPendingEmail(ctx context.Context, email string) error {
	if err := s.slots.Set(ctx, KeyPendingEmail, email); err != nil {
		return fmt.Errorf("store pending email: %w", err)
	}
	return nil
}

// PendingEmail returns the account awaiting activation or ErrNoPendingEmail.
func (s *CredentialStore) PendingEmail(ctx context.Context) (string, error) {
	v, err := s.slots.Get(ctx, KeyPendingEmail)
	if errors.Is(err, repository.ErrSlotEmpty) || (err == nil && v == "") {
		return "", ErrNoPendingEmail
	}
	if err != nil {
		return "", fmt.Errorf("read pending email: %w", err)
	}
	return v, nil
}

// ClearPendingEmail ends the activation flow.
func (s *CredentialStore) ClearPendingEmail(ctx context.Context) error {
	if err := s.slots.Delete(ctx, KeyPendingEmail); err != nil {
		return fmt.Errorf("clear pending email: %w", err)
	}
	return nil
}
