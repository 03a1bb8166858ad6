package claims

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

func signed(t *testing.T, c jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func TestDecodeReadsClaimsWithoutVerifying(t *testing.T) {
	name := gofakeit.Name()
	tok := signed(t, jwt.MapClaims{
		"role":      "doctor",
		"name":      name,
		"device_id": "vm-042",
		"exp":       time.Now().Add(-time.Hour).Unix(),
	})

	c, err := Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDoctor, c.Role)
	assert.Equal(t, name, c.DisplayName("Physician"))
	assert.Equal(t, "vm-042", c.DeviceOrDefault())
	// Expired credentials still decode: expiry is the backend's concern.
	require.NotNil(t, c.ExpiresAt)
}

func TestDecodeIgnoresSignature(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"role": "user"})
	tampered := tok[:len(tok)-4] + "AAAA"

	c, err := Decode(tampered)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, c.Role)
	assert.Equal(t, domain.DefaultDeviceID, c.DeviceOrDefault())
	assert.Equal(t, "Physician", c.DisplayName("Physician"))
}

func TestDecodeAcceptsPaddedPayload(t *testing.T) {
	payload := base64.URLEncoding.EncodeToString([]byte(`{"role":"admin"}`))
	c, err := Decode("h." + payload + ".s")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, c.Role)
}

func TestDecodeToleratesForeignRegisteredClaimTypes(t *testing.T) {
	enc := base64.RawURLEncoding.EncodeToString
	cases := map[string]struct {
		payload string
		hasExp  bool
	}{
		"numeric sub":     {`{"role":"doctor","sub":42,"exp":1893456000}`, true},
		"string exp":      {`{"role":"doctor","exp":"2030-01-01"}`, false},
		"audience object": {`{"role":"doctor","aud":{"svc":"api"},"iat":"now"}`, false},
		"name not string": {`{"role":"doctor","name":7}`, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := Decode("h." + enc([]byte(tc.payload)) + ".s")
			require.NoError(t, err)
			assert.Equal(t, domain.RoleDoctor, c.Role)
			assert.Equal(t, "Physician", c.DisplayName("Physician"))
			if tc.hasExp {
				require.NotNil(t, c.ExpiresAt)
				assert.Equal(t, int64(1893456000), c.ExpiresAt.Unix())
			} else {
				assert.Nil(t, c.ExpiresAt)
			}
		})
	}
}

func TestDecodeIsTotal(t *testing.T) {
	enc := base64.RawURLEncoding.EncodeToString
	cases := map[string]string{
		"empty":           "",
		"one segment":     "abc",
		"two segments":    "abc.def",
		"four segments":   "a.b.c.d",
		"invalid base64":  "h.!!!not-base64!!!.s",
		"not json":        "h." + enc([]byte("role=user")) + ".s",
		"json array":      "h." + enc([]byte(`["user"]`)) + ".s",
		"json null":       "h." + enc([]byte("null")) + ".s",
		"role wrong type": "h." + enc([]byte(`{"role":7}`)) + ".s",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var (
				c   *Claims
				err error
			)
			require.NotPanics(t, func() { c, err = Decode(input) })
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, apperrors.IsDecodeError(err))
		})
	}
}

func TestDecodeFuzzedStringsNeverPanic(t *testing.T) {
	for i := 0; i < 200; i++ {
		input := gofakeit.LetterN(uint(gofakeit.Number(0, 40)))
		if i%3 == 0 {
			input += "." + gofakeit.LetterN(5)
		}
		require.NotPanics(t, func() { _, _ = Decode(input) })
	}
}
