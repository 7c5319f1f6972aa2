// Package task defines the inbound task request, the publish report returned
// to callers, and the deterministic repository naming rules.
package task

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/errors"
)

// Request is the JSON body accepted by POST /upload-task.
type Request struct {
	Email         string       `json:"email,omitempty"`
	Task          string       `json:"task"`
	Brief         string       `json:"brief"`
	Round         int          `json:"round,omitempty"`
	Nonce         string       `json:"nonce,omitempty"`
	Attachments   []Attachment `json:"attachments,omitempty"`
	EvaluationURL string       `json:"evaluation_url,omitempty"`
	Secret        string       `json:"secret,omitempty"`
}

// Attachment carries a named file as a data: URI. The payload may arrive in
// either the url or data key.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Data string `json:"data,omitempty"`
}

// DataURI returns the attachment payload, preferring the url key.
func (a Attachment) DataURI() string {
	if a.URL != "" {
		return a.URL
	}
	return a.Data
}

// Authorize compares the request secret against the configured submission
// secret. A blank configured secret disables the checkpoint entirely.
func (r *Request) Authorize(configured string) error {
	if configured == "" {
		return nil
	}
	if strings.TrimSpace(r.Secret) != strings.TrimSpace(configured) {
		return errors.AuthError("secret mismatch")
	}
	return nil
}

// Validate checks required fields. It does not mutate the request.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Task) == "" {
		return errors.ValidationError("missing required field").WithContext("field", "task")
	}
	if strings.TrimSpace(r.Brief) == "" {
		return errors.ValidationError("missing required field").WithContext("field", "brief")
	}
	if r.Round < 0 {
		return errors.ValidationError("round must be positive").WithContext("round", r.Round)
	}
	return nil
}

// Normalize applies defaults: round 1 and a generated nonce when absent so the
// repository name stays unique per submission.
func (r *Request) Normalize() {
	if r.Round < 1 {
		r.Round = 1
	}
	if strings.TrimSpace(r.Nonce) == "" {
		r.Nonce = uuid.NewString()[:8]
	}
}

// RepoName returns the deterministic repository name {task}-{nonce} as a slug.
func (r *Request) RepoName() string {
	return Slug(r.Task + "-" + r.Nonce)
}

// Branch returns the publish branch for this submission round.
func (r *Request) Branch() string {
	if r.Round <= 1 {
		return "main"
	}
	return fmt.Sprintf("round-%d", r.Round)
}

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9._-]+`)
	slugDashes  = regexp.MustCompile(`-{2,}`)
)

// Slug lowercases, strips diacritics via NFKD decomposition, collapses
// whitespace to dashes, and drops anything outside [a-z0-9._-] so the result
// is always a valid repository name.
func Slug(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
