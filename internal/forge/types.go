// Package forge talks to the source hosting REST API: repository provisioning,
// content-addressed file uploads, branch refs, and pages activation.
package forge

import (
	"context"
	"fmt"
)

// Repository represents a repository on the forge.
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Owner         string `json:"owner"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
	Description   string `json:"description"`
	Private       bool   `json:"private"`
}

// Client is the contract the publish pipeline needs from a forge.
type Client interface {
	// ResolveOwner returns the configured owner, or the authenticated user's
	// login when no owner is configured.
	ResolveOwner(ctx context.Context) (string, error)

	// GetRepository fetches a repository; a missing repository yields an
	// error for which IsNotFound reports true.
	GetRepository(ctx context.Context, owner, name string) (*Repository, error)

	// CreateRepository creates a repository under the configured org owner,
	// falling back to the authenticated user.
	CreateRepository(ctx context.Context, name, description string, private bool) (*Repository, error)

	// EnsureRepository gets or creates a repository (idempotent reuse).
	EnsureRepository(ctx context.Context, name, description string) (*Repository, error)

	// GetBranchSHA returns the head commit SHA of a branch.
	GetBranchSHA(ctx context.Context, owner, repo, branch string) (string, error)

	// EnsureBranch creates branch from the head of fromBranch if missing.
	EnsureBranch(ctx context.Context, owner, repo, branch, fromBranch string) error

	// GetFile fetches a file's raw content and blob SHA at a ref.
	GetFile(ctx context.Context, owner, repo, path, ref string) ([]byte, string, error)

	// PutFile creates or updates a file on a branch. The current blob SHA is
	// fetched first; an upstream conflict (stale SHA) is returned unretried.
	PutFile(ctx context.Context, owner, repo, path string, content []byte, message, branch string) error

	// EnablePages enables or repoints the static-hosting branch.
	EnablePages(ctx context.Context, owner, repo, branch string) error

	// PagesURL returns the live preview URL for a repository.
	PagesURL(owner, repo string) string
}

// APIError is a non-success response from the forge API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("forge API error %d: %s", e.StatusCode, e.Message)
}

// ErrorStatus extracts the HTTP status from an APIError, or 0.
func ErrorStatus(err error) int {
	if ae, ok := err.(*APIError); ok {
		return ae.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the forge.
func IsNotFound(err error) bool { return ErrorStatus(err) == 404 }

// IsConflict reports whether err is a 409 (stale content SHA) from the forge.
func IsConflict(err error) bool { return ErrorStatus(err) == 409 }

// IsAlreadyExists reports whether err is a 422, which the repository create
// endpoint returns when the name is taken.
func IsAlreadyExists(err error) bool { return ErrorStatus(err) == 422 }
