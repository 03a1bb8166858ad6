package session

import (
	"context"
	"errors"

	"github.com/spec-kit/vitalmotion-client/internal/claims"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
)

// State classifies the stored session.
type State int

const (
	StateAbsent State = iota
	StateUnparseable
	StatePresent
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateUnparseable:
		return "unparseable"
	case StatePresent:
		return "present"
	default:
		return "unknown"
	}
}

// Session pairs the credential with its decoded claims.
type Session struct {
	State      State
	Credential string
	Claims     *claims.Claims
	// Err is the store read error when State is StateAbsent because of a failing backend.
	Err error
}

// Role returns the claims role, or the empty role when no claims are present.
func (s Session) Role() domain.Role {
	if s.State != StatePresent || s.Claims == nil {
		return ""
	}
	return s.Claims.Role
}

// Current reads and decodes the stored credential. Claims are recomputed on every
// call so that a credential change is always observed.
func (s *CredentialStore) Current(ctx context.Context) Session {
	cred, err := s.Get(ctx)
	if err != nil {
		out := Session{State: StateAbsent}
		if !errors.Is(err, ErrNoCredential) {
			out.Err = err
		}
		return out
	}

	c, err := claims.Decode(cred)
	if err != nil {
		return Session{State: StateUnparseable, Credential: cred, Err: err}
	}
	return Session{State: StatePresent, Credential: cred, Claims: c}
}
