package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	derrors "github.com/22f3002289/Mayank-s-first-LLM-Project/internal/errors"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/logfields"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/task"
)

// maxTaskBodyBytes bounds the upload body; attachments arrive inline as
// base64 data URIs so the limit is generous.
const maxTaskBodyBytes = 32 << 20

// TaskRunner is the pipeline surface the upload handler needs.
type TaskRunner interface {
	Run(ctx context.Context, req *task.Request) (*task.Report, error)
}

// TaskHandlers contains the task submission HTTP handlers.
type TaskHandlers struct {
	runner       TaskRunner
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewTaskHandlers creates a new task handlers instance.
func NewTaskHandlers(runner TaskRunner) *TaskHandlers {
	return &TaskHandlers{
		runner:       runner,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleUploadTask accepts a task request, runs the publish pipeline, and
// returns the resulting report. Validation failures map to 400, secret
// mismatches to 401, and upstream failures to 502.
func (h *TaskHandlers) HandleUploadTask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTaskBodyBytes)

	var req task.Request
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorAdapter.WriteErrorResponse(w, r,
				derrors.ValidationError("request body too large").
					WithContext("limit_bytes", maxTaskBodyBytes))
			return
		}
		h.errorAdapter.WriteErrorResponse(w, r,
			derrors.WrapError(err, derrors.CategoryValidation, "malformed JSON body"))
		return
	}

	report, err := h.runner.Run(r.Context(), &req)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, report); err != nil {
		slog.Error("failed to write task report", logfields.Error(err), logfields.ReportID(report.ID))
	}
}
