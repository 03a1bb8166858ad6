package dto

import "github.com/spec-kit/vitalmotion-client/internal/domain"

// LoginRequest payload for every role-specific login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the backend answer to a login. Admin deployments answer
// with token instead of access_token.
type LoginResponse struct {
	AccessToken string          `json:"access_token,omitempty"`
	Token       string          `json:"token,omitempty"`
	User        *domain.Profile `json:"user,omitempty"`
}

// Credential returns whichever credential field the backend filled.
func (r LoginResponse) Credential() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// SignupRequest payload. Only patients sign up; role is always user.
type SignupRequest struct {
	Email string      `json:"email"`
	Phone string      `json:"phone"`
	Role  domain.Role `json:"role"`
}

// VerifyOTPRequest payload.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// CreatePasswordRequest payload.
type CreatePasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DoctorCreateRequest payload for admin doctor provisioning.
type DoctorCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
