package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	conn := fmt.Errorf("load telemetry: %w", NewConnectivityFailure("http://backend", errors.New("dial tcp: refused")))
	auth := fmt.Errorf("load alerts: %w", NewAuthorizationFailure("session expired"))
	invalid := NewValidationError("Passwords do not match", nil)

	assert.True(t, IsConnectivityFailure(conn))
	assert.False(t, IsAuthorizationFailure(conn))
	assert.True(t, IsAuthorizationFailure(auth))
	assert.True(t, IsValidationFailure(invalid))
	assert.False(t, IsValidationFailure(errors.New("plain")))
}

func TestToDomainError(t *testing.T) {
	require.Nil(t, ToDomainError(nil))

	de := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternalError, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)

	upstream := ToDomainError(NewUpstreamFailure(http.StatusServiceUnavailable, ""))
	assert.Equal(t, CodeUpstreamFailure, upstream.Code)
	assert.Equal(t, "Service Unavailable", upstream.Message)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.Details["status"])
}
