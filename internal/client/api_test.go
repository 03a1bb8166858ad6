package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
)

func TestAPIAgainstFakeBackend(t *testing.T) {
	email := gofakeit.Email()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, email, body["email"])
		_, _ = w.Write([]byte(`{"token":"adm.in.tok"}`))
	})
	mux.HandleFunc("/sensor/live/vm-007", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"heart_rate":88,"spo2":97,"temperature":36.9}`))
	})
	mux.HandleFunc("/alerts/latest/vm-007", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	mux.HandleFunc("/chat/send", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"device_id": "vm-007", "message": "hello", "sender": "doctor"}, body)
	})
	mux.HandleFunc("/ai/analyze", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary":"Vitals stable"}`))
	})
	mux.HandleFunc("/vision/analyze-live", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		raw, _ := io.ReadAll(f)
		assert.Equal(t, "scan.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(raw))
		_, _ = w.Write([]byte(`{"data":{"finding":"normal"}}`))
	})
	mux.HandleFunc("/admin/doctors/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/admin/doctors/"+email+"/status", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("active"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	api := NewAPI(newHarness(t, srv.URL, nil).pipeline)
	ctx := context.Background()

	login, err := api.Login(ctx, domain.RoleAdmin, email, "pw")
	require.NoError(t, err)
	assert.Equal(t, "adm.in.tok", login.Credential())

	tel, err := api.LiveTelemetry(ctx, "vm-007")
	require.NoError(t, err)
	assert.Equal(t, 88.0, tel.HeartRate)

	alerts, err := api.LatestAlerts(ctx, "vm-007")
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)

	require.NoError(t, api.SendChat(ctx, "vm-007", "hello", domain.RoleDoctor))

	insight, err := api.AnalyzeVitals(ctx, tel.Sample())
	require.NoError(t, err)
	assert.Equal(t, "Vitals stable", insight)

	data, err := api.AnalyzeDocument(ctx, "scan.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"finding":"normal"}`, string(data))

	require.NoError(t, api.SetDoctorActive(ctx, email, false))
}
