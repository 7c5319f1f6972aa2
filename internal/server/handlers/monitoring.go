package handlers

import (
	"log/slog"
	"net/http"
	"time"

	derrors "github.com/22f3002289/Mayank-s-first-LLM-Project/internal/errors"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/server/responses"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/version"
)

// MonitoringHandlers contains the readiness and health endpoints.
type MonitoringHandlers struct {
	startTime    time.Time
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(startTime time.Time) *MonitoringHandlers {
	return &MonitoringHandlers{
		startTime:    startTime,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleRoot serves the readiness note at the root path.
func (h *MonitoringHandlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	root := &responses.RootResponse{
		Status:  "ok",
		Service: "llm-task-runner",
		Message: "POST /upload-task to submit a task",
		Version: version.Version,
	}
	if err := writeJSONPretty(w, r, http.StatusOK, root); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			derrors.WrapError(err, derrors.CategoryInternal, "failed to write root response"))
	}
}

// HandleHealthCheck handles the health check endpoint.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.startTime).Seconds(),
	}
	if err := writeJSONPretty(w, r, http.StatusOK, health); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			derrors.WrapError(err, derrors.CategoryInternal, "failed to write health response"))
	}
}
