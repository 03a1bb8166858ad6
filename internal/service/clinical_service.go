package service

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// VisionAPI analyzes clinical documents.
type VisionAPI interface {
	AnalyzeDocument(ctx context.Context, filename string, content io.Reader) (json.RawMessage, error)
}

// ClinicalService runs the document scanner of the doctor dashboard.
type ClinicalService struct {
	api    VisionAPI
	logger *zap.Logger
}

// NewClinicalService constructs the service.
func NewClinicalService(api VisionAPI, logger *zap.Logger) *ClinicalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClinicalService{api: api, logger: logger.Named("clinical")}
}

// AnalyzeDocument uploads content under filename and returns the analysis.
func (s *ClinicalService) AnalyzeDocument(ctx context.Context, filename string, content io.Reader) (json.RawMessage, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) || content == nil {
		return nil, apperrors.NewValidationError("a document is required", nil)
	}
	data, err := s.api.AnalyzeDocument(ctx, name, content)
	if err != nil {
		s.logger.Warn("clinical scan failed", zap.String("file", name), zap.Error(err))
		return nil, err
	}
	return data, nil
}
