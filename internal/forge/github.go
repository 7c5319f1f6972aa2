package forge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	cfg "github.com/22f3002289/Mayank-s-first-LLM-Project/internal/config"
)

// GitHubClient implements Client against the GitHub REST API.
type GitHubClient struct {
	httpClient *http.Client
	apiURL     string
	baseURL    string
	token      string
	owner      string
}

// NewGitHubClient creates a new GitHub client from configuration.
func NewGitHubClient(gc cfg.GitHubConfig) (*GitHubClient, error) {
	if gc.Token == "" {
		return nil, fmt.Errorf("GitHub client requires token authentication")
	}

	client := &GitHubClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     gc.APIBase,
		baseURL:    gc.BaseURL,
		token:      gc.Token,
		owner:      gc.Owner,
	}
	if client.apiURL == "" {
		client.apiURL = "https://api.github.com"
	}
	if client.baseURL == "" {
		client.baseURL = "https://github.com"
	}
	return client, nil
}

// githubUser represents the authenticated user.
type githubUser struct {
	Login string `json:"login"`
}

// githubRepo represents a GitHub repository payload.
type githubRepo struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
	Description   string `json:"description"`
	Private       bool   `json:"private"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// githubRef represents a git reference payload.
type githubRef struct {
	Ref    string `json:"ref"`
	Object struct {
		SHA string `json:"sha"`
	} `json:"object"`
}

// githubContent represents a contents API payload.
type githubContent struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// ResolveOwner returns the configured owner or the token's user login.
func (c *GitHubClient) ResolveOwner(ctx context.Context) (string, error) {
	if c.owner != "" {
		return c.owner, nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return "", err
	}
	var me githubUser
	if err := c.doRequest(req, &me); err != nil {
		return "", fmt.Errorf("failed to resolve authenticated user: %w", err)
	}
	return me.Login, nil
}

// GetRepository gets detailed information about a specific repository.
func (c *GitHubClient) GetRepository(ctx context.Context, owner, name string) (*Repository, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s", owner, name), nil)
	if err != nil {
		return nil, err
	}
	var repo githubRepo
	if err := c.doRequest(req, &repo); err != nil {
		return nil, err
	}
	return convertRepo(&repo), nil
}

// CreateRepository creates a repository, preferring the configured org and
// falling back to the authenticated user's namespace.
func (c *GitHubClient) CreateRepository(ctx context.Context, name, description string, private bool) (*Repository, error) {
	payload := map[string]any{
		"name":        name,
		"description": description,
		"private":     private,
		"auto_init":   false,
	}

	if c.owner != "" {
		req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/orgs/%s/repos", c.owner), payload)
		if err != nil {
			return nil, err
		}
		var repo githubRepo
		if err := c.doRequest(req, &repo); err == nil {
			return convertRepo(&repo), nil
		}
		// Fall through to user creation: the owner may be a plain user, not an org.
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/user/repos", payload)
	if err != nil {
		return nil, err
	}
	var repo githubRepo
	if err := c.doRequest(req, &repo); err != nil {
		return nil, err
	}
	return convertRepo(&repo), nil
}

// EnsureRepository gets or creates the repository. A create race that loses to
// an existing name (422) resolves to the existing repository, so resubmitting
// the same task/nonce never surfaces a duplicate error.
func (c *GitHubClient) EnsureRepository(ctx context.Context, name, description string) (*Repository, error) {
	owner, err := c.ResolveOwner(ctx)
	if err != nil {
		return nil, err
	}

	repo, err := c.GetRepository(ctx, owner, name)
	if err == nil {
		return repo, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	repo, err = c.CreateRepository(ctx, name, description, false)
	if err == nil {
		return repo, nil
	}
	if IsAlreadyExists(err) {
		return c.GetRepository(ctx, owner, name)
	}
	return nil, err
}

// GetBranchSHA returns the head commit SHA of a branch.
func (c *GitHubClient) GetBranchSHA(ctx context.Context, owner, repo, branch string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/git/refs/heads/%s", owner, repo, branch), nil)
	if err != nil {
		return "", err
	}
	var ref githubRef
	if err := c.doRequest(req, &ref); err != nil {
		return "", err
	}
	return ref.Object.SHA, nil
}

// EnsureBranch creates branch from the head of fromBranch if it is missing.
func (c *GitHubClient) EnsureBranch(ctx context.Context, owner, repo, branch, fromBranch string) error {
	if _, err := c.GetBranchSHA(ctx, owner, repo, branch); err == nil {
		return nil
	} else if !IsNotFound(err) {
		return err
	}

	sha, err := c.GetBranchSHA(ctx, owner, repo, fromBranch)
	if err != nil {
		return fmt.Errorf("failed to resolve base branch %s: %w", fromBranch, err)
	}

	payload := map[string]any{
		"ref": "refs/heads/" + branch,
		"sha": sha,
	}
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/git/refs", owner, repo), payload)
	if err != nil {
		return err
	}
	if err := c.doRequest(req, nil); err != nil {
		if IsAlreadyExists(err) { // lost a create race, branch exists now
			return nil
		}
		return err
	}
	return nil
}

// GetFile fetches file content and blob SHA at a ref via the contents API.
func (c *GitHubClient) GetFile(ctx context.Context, owner, repo, filePath, ref string) ([]byte, string, error) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s", owner, repo, filePath, url.QueryEscape(ref))
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", err
	}
	var content githubContent
	if err := c.doRequest(req, &content); err != nil {
		return nil, "", err
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode content of %s: %w", filePath, err)
	}
	return raw, content.SHA, nil
}

// PutFile creates or updates a file on a branch. The contents API requires the
// current blob SHA for updates, so it is fetched first; a 409 from a SHA that
// went stale in between is surfaced to the caller unretried.
func (c *GitHubClient) PutFile(ctx context.Context, owner, repo, filePath string, content []byte, message, branch string) error {
	payload := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  branch,
	}
	if _, sha, err := c.GetFile(ctx, owner, repo, filePath, branch); err == nil && sha != "" {
		payload["sha"] = sha
	}

	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, filePath)
	req, err := c.newRequest(ctx, http.MethodPut, endpoint, payload)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

// EnablePages enables pages for the repository, serving from branch. An
// already-enabled site (409/422 on create) is repointed with an update call.
func (c *GitHubClient) EnablePages(ctx context.Context, owner, repo, branch string) error {
	payload := map[string]any{
		"source": map[string]any{"branch": branch, "path": "/"},
	}

	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/pages", owner, repo), payload)
	if err != nil {
		return err
	}
	err = c.doRequest(req, nil)
	if err == nil {
		return nil
	}
	if !IsConflict(err) && !IsAlreadyExists(err) {
		return err
	}

	req, err = c.newRequest(ctx, http.MethodPut, fmt.Sprintf("/repos/%s/%s/pages", owner, repo), payload)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

// PagesURL returns the live preview URL for a repository.
func (c *GitHubClient) PagesURL(owner, repo string) string {
	return fmt.Sprintf("https://%s.github.io/%s/", owner, repo)
}

// Helper methods

func convertRepo(g *githubRepo) *Repository {
	return &Repository{
		Name:          g.Name,
		FullName:      g.FullName,
		Owner:         g.Owner.Login,
		HTMLURL:       g.HTMLURL,
		DefaultBranch: g.DefaultBranch,
		Description:   g.Description,
		Private:       g.Private,
	}
}

func (c *GitHubClient) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, err
	}
	// Preserve the query string; path.Join would mangle it.
	rawPath := endpoint
	rawQuery := ""
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		rawPath, rawQuery = endpoint[:i], endpoint[i+1:]
	}
	u.Path = path.Join(u.Path, rawPath)
	u.RawQuery = rawQuery

	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req, err = http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(string(jsonBody)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		var err error
		req, err = http.NewRequestWithContext(ctx, method, u.String(), nil)
		if err != nil {
			return nil, err
		}
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "LLMTaskRunner/1.0")

	return req, nil
}

func (c *GitHubClient) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}
