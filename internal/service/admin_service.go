package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// DoctorAPI is the backend surface for physician account management.
type DoctorAPI interface {
	ListDoctors(ctx context.Context) ([]domain.Doctor, error)
	CreateDoctor(ctx context.Context, email, password string) error
	SetDoctorActive(ctx context.Context, email string, active bool) error
}

// AdminService manages physician accounts.
type AdminService struct {
	api    DoctorAPI
	logger *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(api DoctorAPI, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{api: api, logger: logger.Named("admin")}
}

// ListDoctors returns every physician account.
func (s *AdminService) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	return s.api.ListDoctors(ctx)
}

// CreateDoctor provisions a physician account and returns the refreshed list.
func (s *AdminService) CreateDoctor(ctx context.Context, email, password string) ([]domain.Doctor, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}
	if err := s.api.CreateDoctor(ctx, email, password); err != nil {
		return nil, err
	}
	s.logger.Info("doctor created", zap.String("email", email))
	return s.api.ListDoctors(ctx)
}

// SetDoctorActive enables or disables a physician and returns the refreshed list.
func (s *AdminService) SetDoctorActive(ctx context.Context, email string, active bool) ([]domain.Doctor, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email is required", nil)
	}
	if err := s.api.SetDoctorActive(ctx, email, active); err != nil {
		return nil, err
	}
	s.logger.Info("doctor status changed", zap.String("email", email), zap.Bool("active", active))
	return s.api.ListDoctors(ctx)
}
