package task

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses.
const (
	StatusPending        = "pending"
	StatusDone           = "done"
	StatusDoneWithErrors = "done_with_errors"
	StatusFailed         = "failed"
)

// FileUpload records the outcome of a single file push.
type FileUpload struct {
	Name   string `json:"name"`
	Branch string `json:"branch"`
	OK     bool   `json:"ok"`
}

// Report is the publish result returned to the caller and forwarded to the
// evaluation callback. It lives only for the duration of one request.
type Report struct {
	ID                   string          `json:"report_id"`
	Status               string          `json:"status"`
	Email                string          `json:"email,omitempty"`
	Task                 string          `json:"task"`
	Round                int             `json:"round"`
	Repo                 string          `json:"repo,omitempty"`
	PagesURL             string          `json:"pages_url,omitempty"`
	Files                []FileUpload    `json:"llm_files"`
	AttachmentsUploaded  []FileUpload    `json:"attachments_uploaded"`
	Checks               map[string]bool `json:"checks,omitempty"`
	Errors               []string        `json:"errors"`
	EvaluationPosted     *bool           `json:"evaluation_posted,omitempty"`
	EvaluationStatusCode int             `json:"evaluation_status_code,omitempty"`
	Timestamp            int64           `json:"timestamp"`
}

// NewReport seeds a pending report for the given request.
func NewReport(req *Request) *Report {
	return &Report{
		ID:                  uuid.NewString(),
		Status:              StatusPending,
		Email:               req.Email,
		Task:                req.Task,
		Round:               req.Round,
		Files:               []FileUpload{},
		AttachmentsUploaded: []FileUpload{},
		Errors:              []string{},
		Timestamp:           time.Now().Unix(),
	}
}

// AddError records a non-fatal stage error on the report.
func (r *Report) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// SetCheck records a named boolean check outcome.
func (r *Report) SetCheck(name string, ok bool) {
	if r.Checks == nil {
		r.Checks = make(map[string]bool)
	}
	r.Checks[name] = ok
}

// Finalize sets the terminal status based on accumulated errors.
func (r *Report) Finalize() {
	if len(r.Errors) == 0 {
		r.Status = StatusDone
	} else {
		r.Status = StatusDoneWithErrors
	}
}
