package domain

// DefaultDeviceID is the wearable used when the claims carry no device binding.
const DefaultDeviceID = "vm-001"

// Telemetry is the latest vital-sign sample of a device.
type Telemetry struct {
	DeviceID    string  `json:"device_id,omitempty"`
	HeartRate   float64 `json:"heart_rate"`
	SpO2        float64 `json:"spo2"`
	Temperature float64 `json:"temperature"`
	// Timestamp is kept verbatim; the backend does not always send a zone.
	Timestamp string `json:"timestamp,omitempty"`
}

// Alert is a safety notice raised for a device.
type Alert struct {
	Message  string `json:"message"`
	Severity string `json:"severity,omitempty"`
}

// ChatMessage is one entry of the patient/doctor consultation thread.
type ChatMessage struct {
	DeviceID string `json:"device_id,omitempty"`
	Sender   string `json:"sender"`
	Text     string `json:"text"`
}

// VitalsSample is the AI insight request body.
type VitalsSample struct {
	HeartRate   float64 `json:"heart_rate"`
	SpO2        float64 `json:"spo2"`
	Temperature float64 `json:"temperature"`
}

// Sample extracts the vitals used for analysis.
func (t Telemetry) Sample() VitalsSample {
	return VitalsSample{HeartRate: t.HeartRate, SpO2: t.SpO2, Temperature: t.Temperature}
}
