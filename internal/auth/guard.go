package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/session"
)

// Outcome of an authorization decision.
type Outcome int

const (
	Unauthenticated Outcome = iota
	WrongRole
	Authorized
)

// Decision is either Allow or a redirect to the required role's login view.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
}

// Allowed reports whether the protected view may be rendered.
func (d Decision) Allowed() bool { return d.Outcome == Authorized }

// Decide is the pure guard rule over a session snapshot.
func Decide(required domain.Role, s session.Session) Decision {
	switch {
	case s.State != session.StatePresent:
		return Decision{Outcome: Unauthenticated, RedirectTo: required.LoginPath()}
	case s.Role() != required:
		return Decision{Outcome: WrongRole, RedirectTo: required.LoginPath()}
	default:
		return Decision{Outcome: Authorized}
	}
}

// SessionSource yields the current session.
type SessionSource interface {
	Current(ctx context.Context) session.Session
}

// Guard evaluates role requirements against the stored session. It never
// modifies the session: a valid session for another role is kept.
type Guard struct {
	sessions SessionSource
	logger   *zap.Logger
}

// NewGuard constructs a guard.
func NewGuard(sessions SessionSource, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{sessions: sessions, logger: logger.Named("guard")}
}

// Authorize decides whether the current session may view a required-role view.
func (g *Guard) Authorize(ctx context.Context, required domain.Role) Decision {
	s := g.sessions.Current(ctx)
	d := Decide(required, s)
	if !d.Allowed() {
		fields := []zap.Field{
			zap.String("required_role", string(required)),
			zap.String("session_state", s.State.String()),
			zap.String("redirect", d.RedirectTo),
		}
		if s.Err != nil {
			fields = append(fields, zap.Error(s.Err))
		}
		g.logger.Debug("view denied", fields...)
	}
	return d
}
