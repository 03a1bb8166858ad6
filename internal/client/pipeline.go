// Package client is the single path from the client to the backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/api/dto"
	"github.com/spec-kit/vitalmotion-client/internal/events"
	"github.com/spec-kit/vitalmotion-client/internal/navigation"
	"github.com/spec-kit/vitalmotion-client/internal/observability"
	"github.com/spec-kit/vitalmotion-client/internal/session"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

const maxBodyBytes = 8 << 20

// Request describes one backend call relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON encoded when set.
	Body any
	// RawBody is sent as is with ContentType; it takes precedence over Body.
	RawBody     io.Reader
	ContentType string
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Doer executes requests. Pipeline implements it; decorators such as a retry
// policy can wrap it without changing callers.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// SessionStore is the part of the credential store the pipeline needs.
type SessionStore interface {
	Get(ctx context.Context) (string, error)
	ClearAll(ctx context.Context) error
}

// Options configures a Pipeline.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      SessionStore
	Navigator  navigation.Navigator
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// Pipeline attaches the credential to outbound requests and applies the
// session policy to inbound responses. It never retries.
type Pipeline struct {
	baseURL    string
	http       *http.Client
	store      SessionStore
	nav        navigation.Navigator
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	offline    atomic.Bool
}

// NewPipeline builds a pipeline. A nil HTTPClient gets a 30s timeout client.
func NewPipeline(opts Options) *Pipeline {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BaseURL == "" {
		logger.Error("backend base URL is not configured")
	}
	return &Pipeline{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		http:       httpClient,
		store:      opts.Store,
		nav:        opts.Navigator,
		dispatcher: opts.Dispatcher,
		logger:     logger.Named("pipeline"),
		metrics:    opts.Metrics,
	}
}

// BaseURL returns the backend the pipeline targets.
func (p *Pipeline) BaseURL() string { return p.baseURL }

// Offline reports whether the last exchange failed to reach the backend.
func (p *Pipeline) Offline() bool { return p.offline.Load() }

// NormalizeCredential strips quote characters left by a JSON-serialized value.
// Applying it to a clean credential returns it unchanged.
func NormalizeCredential(raw string) string {
	return strings.ReplaceAll(raw, `"`, "")
}

// Do executes req. Non-2xx responses are returned together with a classified
// error: AuthorizationFailure for 401 (after session teardown),
// ValidationFailure for other 4xx and UpstreamFailure otherwise. When no
// response arrives the error is a ConnectivityFailure and the session is kept.
func (p *Pipeline) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := p.build(ctx, req)
	if err != nil {
		return nil, err
	}
	p.authorize(ctx, httpReq)

	httpResp, err := p.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ctxErr)
		}
		return nil, p.connectivityFailure(ctx, req, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, p.connectivityFailure(ctx, req, err)
	}
	p.markOnline(ctx)

	resp := &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: body}
	status := resp.StatusCode

	switch {
	case status == http.StatusUnauthorized:
		p.metrics.RecordRequest(req.Method, status, "authorization_failure")
		p.HandleUnauthorized(ctx)
		return resp, apperrors.NewAuthorizationFailure(errorMessage(body, "session is no longer authorized"))
	case status >= 200 && status < 300:
		p.metrics.RecordRequest(req.Method, status, "ok")
		return resp, nil
	case status >= 400 && status < 500:
		p.metrics.RecordRequest(req.Method, status, "validation_failure")
		return resp, apperrors.NewValidationError(errorMessage(body, http.StatusText(status)), map[string]any{"status": status})
	default:
		p.metrics.RecordRequest(req.Method, status, "upstream_failure")
		p.logger.Warn("backend failure", zap.String("method", req.Method), zap.String("path", req.Path), zap.Int("status", status))
		return resp, apperrors.NewUpstreamFailure(status, errorMessage(body, ""))
	}
}

// HandleUnauthorized tears the session down and returns to the default entry
// point unless the client already shows an authentication view. Calling it
// repeatedly leaves the same empty session.
func (p *Pipeline) HandleUnauthorized(ctx context.Context) {
	if p.store != nil {
		if err := p.store.ClearAll(ctx); err != nil {
			p.logger.Error("session teardown incomplete", zap.Error(err))
		}
	}
	p.logger.Info("session torn down", zap.String("reason", "unauthorized"))
	p.publish(ctx, events.New(events.EventSessionTornDown, events.SessionTornDownPayload{Reason: "unauthorized"}))

	if p.nav != nil && !navigation.IsAuthView(p.nav.Location()) {
		p.nav.Navigate(ctx, navigation.DefaultEntry)
	}
}

func (p *Pipeline) build(ctx context.Context, req *Request) (*http.Request, error) {
	target := p.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.RawBody != nil:
		body, contentType = req.RawBody, req.ContentType
	case req.Body != nil:
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	return httpReq, nil
}

func (p *Pipeline) authorize(ctx context.Context, httpReq *http.Request) {
	if p.store == nil {
		return
	}
	raw, err := p.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoCredential) {
			p.logger.Warn("credential unavailable; sending anonymously", zap.Error(err))
		}
		return
	}
	token := NormalizeCredential(raw)
	if token == "" || token == "null" {
		return
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
}

func (p *Pipeline) connectivityFailure(ctx context.Context, req *Request, cause error) error {
	p.metrics.RecordRequest(req.Method, 0, "connectivity_failure")
	p.logger.Warn("backend unreachable",
		zap.String("base_url", p.baseURL),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Error(cause))
	if p.offline.CompareAndSwap(false, true) {
		p.publish(ctx, events.New(events.EventConnectivityLost, events.ConnectivityPayload{Target: p.baseURL, Error: cause.Error()}))
	}
	return apperrors.NewConnectivityFailure(p.baseURL, cause)
}

func (p *Pipeline) markOnline(ctx context.Context) {
	if p.offline.CompareAndSwap(true, false) {
		p.logger.Info("backend reachable again", zap.String("base_url", p.baseURL))
		p.publish(ctx, events.New(events.EventConnectivityRestored, events.ConnectivityPayload{Target: p.baseURL}))
	}
}

func (p *Pipeline) publish(ctx context.Context, e events.Event) {
	if p.dispatcher == nil {
		return
	}
	_ = p.dispatcher.Publish(ctx, e)
}

// errorMessage extracts a human message from the backend error payload.
func errorMessage(body []byte, fallback string) string {
	var payload dto.ErrorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := detailMessage(payload.Detail); msg != "" {
			return msg
		}
		if payload.Message != "" {
			return payload.Message
		}
		var nested struct {
			Message string `json:"message"`
		}
		if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var plain string
		if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &plain) == nil && plain != "" {
			return plain
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") && len(text) <= 200 {
		return text
	}
	return fallback
}

// detailMessage reads a detail that is either a string or a list of {msg} entries.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
