package dto

import "encoding/json"

// ChatSendRequest payload.
type ChatSendRequest struct {
	DeviceID string `json:"device_id"`
	Message  string `json:"message"`
	Sender   string `json:"sender"`
}

// InsightResponse is the AI analysis answer; older deployments answer with summary.
type InsightResponse struct {
	AIInsight string `json:"ai_insight,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// Text returns the first non-empty field.
func (r InsightResponse) Text() string {
	if r.AIInsight != "" {
		return r.AIInsight
	}
	return r.Summary
}

// VisionResponse wraps the document analysis result.
type VisionResponse struct {
	Data json.RawMessage `json:"data"`
}

// ErrorPayload covers the error shapes the backend produces.
type ErrorPayload struct {
	Detail  json.RawMessage `json:"detail,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}
