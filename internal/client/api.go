package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spec-kit/vitalmotion-client/internal/api/dto"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
)

// API is the typed backend surface.
type API struct {
	doer Doer
}

// NewAPI wraps doer, normally a *Pipeline.
func NewAPI(doer Doer) *API {
	return &API{doer: doer}
}

func loginPath(role domain.Role) string {
	switch role {
	case domain.RoleDoctor:
		return "/auth/doctor/login"
	case domain.RoleAdmin:
		return "/auth/admin/login"
	default:
		return "/auth/login"
	}
}

// Login authenticates against the role-specific endpoint.
func (a *API) Login(ctx context.Context, role domain.Role, email, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := a.call(ctx, &Request{
		Method: http.MethodPost,
		Path:   loginPath(role),
		Body:   dto.LoginRequest{Email: email, Password: password},
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a patient account pending activation.
func (a *API) Signup(ctx context.Context, email, phone string) error {
	return a.call(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Body:   dto.SignupRequest{Email: email, Phone: phone, Role: domain.RoleUser},
	}, nil)
}

// VerifyOTP confirms the one-time code sent at signup.
func (a *API) VerifyOTP(ctx context.Context, email, otp string) error {
	return a.call(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/auth/verify-otp",
		Body:   dto.VerifyOTPRequest{Email: email, OTP: otp},
	}, nil)
}

// CreatePassword completes account activation.
func (a *API) CreatePassword(ctx context.Context, email, password string) error {
	return a.call(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/auth/create-password",
		Body:   dto.CreatePasswordRequest{Email: email, Password: password},
	}, nil)
}

// LiveTelemetry returns the latest vitals of device.
func (a *API) LiveTelemetry(ctx context.Context, device string) (*domain.Telemetry, error) {
	var out domain.Telemetry
	if err := a.call(ctx, &Request{Method: http.MethodGet, Path: "/sensor/live/" + url.PathEscape(device)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LatestAlerts returns the current safety notices of device.
func (a *API) LatestAlerts(ctx context.Context, device string) ([]domain.Alert, error) {
	out := []domain.Alert{}
	if err := a.call(ctx, &Request{Method: http.MethodGet, Path: "/alerts/latest/" + url.PathEscape(device)}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Alert{}
	}
	return out, nil
}

// ChatMessages returns the consultation thread of device.
func (a *API) ChatMessages(ctx context.Context, device string) ([]domain.ChatMessage, error) {
	out := []domain.ChatMessage{}
	if err := a.call(ctx, &Request{Method: http.MethodGet, Path: "/chat/messages/" + url.PathEscape(device)}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ChatMessage{}
	}
	return out, nil
}

// SendChat posts a message to the thread of device on behalf of sender.
func (a *API) SendChat(ctx context.Context, device, text string, sender domain.Role) error {
	return a.call(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/chat/send",
		Body:   dto.ChatSendRequest{DeviceID: device, Message: text, Sender: string(sender)},
	}, nil)
}

// AnalyzeVitals asks the AI service for an insight on a vitals sample.
func (a *API) AnalyzeVitals(ctx context.Context, sample domain.VitalsSample) (string, error) {
	var out dto.InsightResponse
	if err := a.call(ctx, &Request{Method: http.MethodPost, Path: "/ai/analyze", Body: sample}, &out); err != nil {
		return "", err
	}
	return out.Text(), nil
}

// AnalyzeDocument uploads a clinical document for vision analysis.
func (a *API) AnalyzeDocument(ctx context.Context, filename string, content io.Reader) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finish form: %w", err)
	}

	var out dto.VisionResponse
	if err := a.call(ctx, &Request{
		Method:      http.MethodPost,
		Path:        "/vision/analyze-live",
		RawBody:     &buf,
		ContentType: w.FormDataContentType(),
	}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListDoctors returns every physician account.
func (a *API) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	out := []domain.Doctor{}
	if err := a.call(ctx, &Request{Method: http.MethodGet, Path: "/admin/doctors"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDoctor provisions a physician account.
func (a *API) CreateDoctor(ctx context.Context, email, password string) error {
	return a.call(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/admin/doctors",
		Body:   dto.DoctorCreateRequest{Email: email, Password: password},
	}, nil)
}

// SetDoctorActive enables or disables a physician account.
func (a *API) SetDoctorActive(ctx context.Context, email string, active bool) error {
	return a.call(ctx, &Request{
		Method: http.MethodPatch,
		Path:   "/admin/doctors/" + url.PathEscape(email) + "/status",
		Query:  url.Values{"active": []string{strconv.FormatBool(active)}},
	}, nil)
}

func (a *API) call(ctx context.Context, req *Request, out any) error {
	resp, err := a.doer.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}
