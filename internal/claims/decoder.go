// Package claims reads the payload of a session credential without verifying it.
//
// The decoded role is a navigation hint for the client. It carries no security
// weight: the backend remains the only authority on what a session may do.
package claims

import (
	"bytes"
	"encoding/json"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// Claims is the payload segment of a credential. Only the fields the client
// reads are kept; any other registered claim may carry any JSON type.
type Claims struct {
	Role     domain.Role `json:"role"`
	Name     string      `json:"name,omitempty"`
	Email    string      `json:"email,omitempty"`
	DeviceID string      `json:"device_id,omitempty"`
	// ExpiresAt is a display hint. It is nil when exp is absent or not a
	// numeric date.
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
}

// DeviceOrDefault returns the bound device, or the default wearable.
func (c *Claims) DeviceOrDefault() string {
	if c == nil || strings.TrimSpace(c.DeviceID) == "" {
		return domain.DefaultDeviceID
	}
	return c.DeviceID
}

// DisplayName returns the name claim, or fallback when absent.
func (c *Claims) DisplayName(fallback string) string {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return fallback
	}
	return c.Name
}

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode extracts the claims of credential. Every malformed input yields a DecodeError.
func Decode(credential string) (*Claims, error) {
	segments := strings.Split(credential, ".")
	if len(segments) != 3 {
		return nil, apperrors.NewDecodeError("credential must have three segments", nil)
	}

	payload, err := parser.DecodeSegment(segments[1])
	if err != nil {
		return nil, apperrors.NewDecodeError("payload is not base64url", err)
	}

	if !bytes.HasPrefix(bytes.TrimSpace(payload), []byte("{")) {
		return nil, apperrors.NewDecodeError("payload is not a claims object", nil)
	}

	var fields jwt.MapClaims
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return nil, apperrors.NewDecodeError("payload is not a claims object", err)
	}

	out := &Claims{
		Name:     stringField(fields, "name"),
		Email:    stringField(fields, "email"),
		DeviceID: stringField(fields, "device_id"),
	}
	if raw, ok := fields["role"]; ok && raw != nil {
		role, isString := raw.(string)
		if !isString {
			return nil, apperrors.NewDecodeError("role claim is not a string", nil)
		}
		out.Role = domain.Role(role)
	}
	if exp, err := fields.GetExpirationTime(); err == nil {
		out.ExpiresAt = exp
	}
	return out, nil
}

func stringField(fields jwt.MapClaims, key string) string {
	v, _ := fields[key].(string)
	return v
}
