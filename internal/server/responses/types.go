// Package responses defines API response types used by the task runner HTTP handlers.
package responses

import "time"

// RootResponse is the readiness note served at the root path.
type RootResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}

// SolveResponse carries the extracted text from the image solver endpoint.
type SolveResponse struct {
	SolvedText string `json:"solved_text"`
}
