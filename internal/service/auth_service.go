package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/api/dto"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/events"
	"github.com/spec-kit/vitalmotion-client/internal/navigation"
	"github.com/spec-kit/vitalmotion-client/internal/session"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// Authentication views outside the per-role login pages.
const (
	ViewOTP            = "/user/otp"
	ViewCreatePassword = "/user/create-password"
	ViewUserLogin      = "/user/login"
)

// AuthAPI is the backend surface used by the account flows.
type AuthAPI interface {
	Login(ctx context.Context, role domain.Role, email, password string) (*dto.LoginResponse, error)
	Signup(ctx context.Context, email, phone string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	CreatePassword(ctx context.Context, email, password string) error
}

// AuthService runs the login, activation and logout flows. Together with the
// pipeline's 401 handling it is the only writer of the credential store.
type AuthService struct {
	api        AuthAPI
	store      *session.CredentialStore
	nav        navigation.Navigator
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates what the auth flows need.
type AuthDependencies struct {
	API        AuthAPI
	Store      *session.CredentialStore
	Navigator  navigation.Navigator
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		api:        deps.API,
		store:      deps.Store,
		nav:        deps.Navigator,
		dispatcher: deps.Dispatcher,
		logger:     logger.Named("auth"),
	}
}

// Login authenticates through the role's endpoint, stores the credential and
// the profile, and opens the landing dashboard. The returned role is the one
// whose dashboard was opened: a patient login lands on the role named by the
// returned profile.
func (s *AuthService) Login(ctx context.Context, role domain.Role, email, password string) (domain.Role, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", apperrors.NewValidationError("email and password are required", nil)
	}
	s.nav.Navigate(ctx, role.LoginPath())

	resp, err := s.api.Login(ctx, role, email, password)
	if err != nil {
		return "", err
	}
	credential := resp.Credential()
	if credential == "" {
		return "", apperrors.NewDomainError(apperrors.CodeUpstreamFailure, "login response carried no credential", http.StatusBadGateway, nil)
	}
	if err := s.store.Set(ctx, credential); err != nil {
		return "", err
	}

	profile := domain.Profile{Email: email, Role: string(role)}
	if resp.User != nil {
		profile = *resp.User
	}
	if err := s.store.SetProfile(ctx, profile); err != nil {
		s.logger.Warn("profile not stored", zap.Error(err))
	}

	landing := role
	if role == domain.RoleUser {
		landing = profile.LandingRole()
	}
	s.logger.Info("signed in", zap.String("role", string(landing)))
	s.publish(ctx, events.New(events.EventSessionStarted, events.SessionStartedPayload{Role: landing}))
	s.nav.Navigate(ctx, landing.DashboardPath())
	return landing, nil
}

// Signup registers a patient and starts the activation flow.
func (s *AuthService) Signup(ctx context.Context, email, phone string) error {
	email, phone = strings.TrimSpace(email), strings.TrimSpace(phone)
	if email == "" || phone == "" {
		return apperrors.NewValidationError("please fill in all required fields", nil)
	}
	s.nav.Navigate(ctx, navigation.DefaultEntry)

	if err := s.api.Signup(ctx, email, phone); err != nil {
		return err
	}
	if err := s.store.SetPendingEmail(ctx, email); err != nil {
		return err
	}
	s.nav.Navigate(ctx, ViewOTP)
	return nil
}

// VerifyOTP confirms the one-time code for the pending account.
func (s *AuthService) VerifyOTP(ctx context.Context, otp string) error {
	email, err := s.pendingEmail(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(otp) == "" {
		return apperrors.NewValidationError("otp is required", nil)
	}
	s.nav.Navigate(ctx, ViewOTP)

	if err := s.api.VerifyOTP(ctx, email, strings.TrimSpace(otp)); err != nil {
		return err
	}
	s.nav.Navigate(ctx, ViewCreatePassword)
	return nil
}

// CreatePassword completes activation of the pending account and returns to
// the entry view.
func (s *AuthService) CreatePassword(ctx context.Context, password, confirm string) error {
	email, err := s.pendingEmail(ctx)
	if err != nil {
		return err
	}
	if password == "" {
		return apperrors.NewValidationError("password is required", nil)
	}
	if password != confirm {
		return apperrors.NewValidationError("passwords do not match", nil)
	}
	s.nav.Navigate(ctx, ViewCreatePassword)

	if err := s.api.CreatePassword(ctx, email, password); err != nil {
		return err
	}
	if err := s.store.ClearPendingEmail(ctx); err != nil {
		s.logger.Warn("pending email not cleared", zap.Error(err))
	}
	s.logger.Info("account activated")
	s.nav.Navigate(ctx, navigation.DefaultEntry)
	return nil
}

// Logout tears the session down and shows the patient login view.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info("signed out")
	s.publish(ctx, events.New(events.EventSessionTornDown, events.SessionTornDownPayload{Reason: "logout"}))
	s.nav.Navigate(ctx, ViewUserLogin)
	return nil
}

// Current returns the stored session.
func (s *AuthService) Current(ctx context.Context) session.Session {
	return s.store.Current(ctx)
}

// PendingEmail returns the account awaiting activation, if any.
func (s *AuthService) PendingEmail(ctx context.Context) (string, bool) {
	email, err := s.store.PendingEmail(ctx)
	return email, err == nil
}

func (s *AuthService) pendingEmail(ctx context.Context) (string, error) {
	email, err := s.store.PendingEmail(ctx)
	if errors.Is(err, session.ErrNoPendingEmail) {
		s.nav.Navigate(ctx, navigation.DefaultEntry)
		return "", apperrors.NewValidationError("no account is awaiting activation", nil)
	}
	if err != nil {
		return "", err
	}
	return email, nil
}

func (s *AuthService) publish(ctx context.Context, e events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, e)
}
