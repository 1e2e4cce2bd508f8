// Package common holds the response envelope and small value types shared by
// the HTTP API, the stream worker and the CLI JSON output.
package common

import (
	"encoding/json"
	"time"
)

// Timestamp marshals as RFC 3339 with nanoseconds, always in UTC.
type Timestamp time.Time

// NewTimestamp returns the current UTC time as a Timestamp.
func NewTimestamp() Timestamp {
	return Timestamp(time.Now().UTC())
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts RFC 3339 with or without fractional seconds.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// ErrorDetail is the wire form of a failed estimate or request.  Code is a
// pkg/errors code such as MOL_001.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// APIResponse is the envelope of every HTTP response body.
type APIResponse[T any] struct {
	Success   bool         `json:"success"`
	Data      T            `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp Timestamp    `json:"timestamp"`
}

// NewSuccessResponse wraps data in a successful envelope.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success:   true,
		Data:      data,
		Timestamp: NewTimestamp(),
	}
}

// HealthStatus is the state of a backend reported by /readyz.
type HealthStatus string

const (
	HealthUp   HealthStatus = "up"
	HealthDown HealthStatus = "down"
)

// ComponentHealth is one backend entry of the readiness report.
type ComponentHealth struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	LatencyMS int64        `json:"latency_ms"`
	Message   string       `json:"message,omitempty"`
}

//Personal.AI order the ending
