package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/app"
	"github.com/spec-kit/vitalmotion-client/internal/config"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/live"
	"github.com/spec-kit/vitalmotion-client/internal/repository"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

type backend struct {
	t *testing.T

	mu      sync.Mutex
	role    string
	device  string
	doctors []domain.Doctor
	chat    []domain.ChatMessage
	otp     string
}

func (b *backend) credential() string {
	b.t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role":      b.role,
		"email":     "pat@example.com",
		"device_id": b.device,
	}).SignedString([]byte("backend-secret"))
	require.NoError(b.t, err)
	return tok
}

func (b *backend) state() (otp string, chat []domain.ChatMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.otp, append([]domain.ChatMessage(nil), b.chat...)
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	login := func(field string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{field: b.credential()})
		}
	}
	mux.HandleFunc("/auth/login", login("access_token"))
	mux.HandleFunc("/auth/doctor/login", login("access_token"))
	mux.HandleFunc("/auth/admin/login", login("token"))
	mux.HandleFunc("/auth/signup", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/auth/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.otp = body["otp"]
		b.mu.Unlock()
	})
	mux.HandleFunc("/auth/create-password", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/sensor/live/", func(w http.ResponseWriter, r *http.Request) {
		device := strings.TrimPrefix(r.URL.Path, "/sensor/live/")
		writeJSON(w, domain.Telemetry{DeviceID: device, HeartRate: 72, SpO2: 98, Temperature: 36.6})
	})
	mux.HandleFunc("/alerts/latest/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []domain.Alert{})
	})
	mux.HandleFunc("/chat/messages/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, append([]domain.ChatMessage{}, b.chat...))
	})
	mux.HandleFunc("/chat/send", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.chat = append(b.chat, domain.ChatMessage{DeviceID: body["device_id"], Sender: body["sender"], Text: body["message"]})
		b.mu.Unlock()
	})
	mux.HandleFunc("/ai/analyze", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"ai_insight": "Vitals within range"})
	})
	mux.HandleFunc("/admin/doctors", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if r.Method == http.MethodPost {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			b.doctors = append(b.doctors, domain.Doctor{Email: body["email"], Active: true})
			return
		}
		writeJSON(w, append([]domain.Doctor{}, b.doctors...))
	})
	return mux
}

type harness struct {
	t       *testing.T
	backend *backend
	url     string
	slots   repository.SlotRepository
}

// newHarness serves a backend whose logins all mint credentials for role.
func newHarness(t *testing.T, role domain.Role) *harness {
	t.Helper()
	t.Setenv("VITALMOTION_PASSWORD", "")
	b := &backend{t: t, role: string(role), device: "vm-042"}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	return &harness{t: t, backend: b, url: srv.URL, slots: repository.NewMemorySlotRepository()}
}

// run executes one command line the way a separate process would, sharing
// only the session store.
func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	rt := &runtime{build: func(ctx context.Context, cfg *config.Config, _ *zap.Logger, opts app.Options) (*app.App, error) {
		opts.Slots = h.slots
		return app.New(ctx, cfg, zap.NewNop(), opts)
	}}
	defer rt.close()

	root := newRootCommand(rt, &out)
	root.SetArgs(append([]string{"--api-url", h.url}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t, domain.RoleUser)

	out, err := h.run("login", "-e", gofakeit.Email(), "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "signed in, dashboard /user/dashboard")
	assert.Contains(t, out, "signed in as user")

	out, err = h.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "role:   user")
	assert.Contains(t, out, "device: vm-042")
	assert.Contains(t, out, h.url+" (flag)")

	_, err = h.run("logout")
	require.NoError(t, err)

	out, err = h.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not signed in")
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	h := newHarness(t, domain.RoleUser)

	_, err := h.run("login", "--role", "nurse", "-e", "a@b.c", "-p", "x")
	assert.True(t, apperrors.IsValidationFailure(err))
}

func TestActivationCommands(t *testing.T) {
	h := newHarness(t, domain.RoleUser)
	email := gofakeit.Email()

	out, err := h.run("signup", "-e", email, "--phone", gofakeit.Phone())
	require.NoError(t, err)
	assert.Contains(t, out, "code sent to "+email)

	out, err = h.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "activation pending for "+email)

	_, err = h.run("verify-otp", "482913")
	require.NoError(t, err)
	otp, _ := h.backend.state()
	assert.Equal(t, "482913", otp)

	out, err = h.run("create-password", "-p", "n3w-pass")
	require.NoError(t, err)
	assert.Contains(t, out, "account activated")

	_, err = h.run("verify-otp", "482913")
	assert.True(t, apperrors.IsValidationFailure(err))
}

func TestWatchPrintsDoctorDashboard(t *testing.T) {
	h := newHarness(t, domain.RoleDoctor)

	_, err := h.run("login", "--role", "doctor", "-e", "doc@example.com", "-p", "pw")
	require.NoError(t, err)

	out, err := h.run("watch", "--device", "vm-009", "--count", "1")
	require.NoError(t, err)

	var snap live.Snapshot
	line := out[strings.Index(out, "{"):]
	require.NoError(t, json.Unmarshal([]byte(strings.SplitN(line, "\n", 2)[0]), &snap))
	assert.Equal(t, domain.RoleDoctor, snap.Role)
	assert.Equal(t, "vm-009", snap.DeviceID)
	require.NotNil(t, snap.Telemetry)
	assert.Equal(t, 72.0, snap.Telemetry.HeartRate)
}

func TestDashboardCommandsNeedSession(t *testing.T) {
	h := newHarness(t, domain.RoleUser)

	_, err := h.run("watch", "--count", "1")
	assert.True(t, apperrors.IsAuthorizationFailure(err))

	_, err = h.run("doctors")
	assert.True(t, apperrors.IsAuthorizationFailure(err))

	_, err = h.run("watch", "--role", "admin")
	assert.True(t, apperrors.IsValidationFailure(err))
}

func TestInsightAndChat(t *testing.T) {
	h := newHarness(t, domain.RoleUser)
	_, err := h.run("login", "-e", "pat@example.com", "-p", "pw")
	require.NoError(t, err)

	out, err := h.run("insight")
	require.NoError(t, err)
	assert.Contains(t, out, "Vitals within range")

	out, err = h.run("chat", "feeling", "dizzy")
	require.NoError(t, err)
	assert.Contains(t, out, "user:    feeling dizzy")
	_, chat := h.backend.state()
	require.Len(t, chat, 1)
	assert.Equal(t, "vm-042", chat[0].DeviceID)
}

func TestDoctorsCommands(t *testing.T) {
	h := newHarness(t, domain.RoleAdmin)
	_, err := h.run("login", "--role", "admin", "-e", "root@example.com", "-p", "pw")
	require.NoError(t, err)

	email := gofakeit.Email()
	out, err := h.run("doctors", "add", "-e", email, "-p", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "EMAIL")
	assert.Regexp(t, regexp.QuoteMeta(email)+`\s+-\s+active`, out)

	_, err = h.run("doctors", "add", "-e", email)
	assert.True(t, apperrors.IsValidationFailure(err))
}
