package forge

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is an in-memory Client for pipeline tests. It records every
// upload and branch operation and can be primed to fail specific calls.
type MockClient struct {
	mu sync.Mutex

	Owner string
	Repos map[string]*Repository // name -> repo

	// branch -> path -> content
	Files    map[string]map[string][]byte
	Branches map[string]string // branch -> fake sha

	PagesEnabled map[string]string // repo -> branch

	// Failure injection: operation name -> error. Operations: resolve_owner,
	// get_repo, create_repo, put_file, put_file:<path>, enable_pages,
	// ensure_branch.
	Fail map[string]error

	Calls []string
}

// NewMockClient returns a MockClient with an initialized store.
func NewMockClient(owner string) *MockClient {
	return &MockClient{
		Owner:        owner,
		Repos:        map[string]*Repository{},
		Files:        map[string]map[string][]byte{},
		Branches:     map[string]string{"main": "sha-main"},
		PagesEnabled: map[string]string{},
		Fail:         map[string]error{},
	}
}

func (m *MockClient) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *MockClient) failure(keys ...string) error {
	for _, k := range keys {
		if err, ok := m.Fail[k]; ok {
			return err
		}
	}
	return nil
}

func (m *MockClient) ResolveOwner(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("resolve_owner")
	if err := m.failure("resolve_owner"); err != nil {
		return "", err
	}
	return m.Owner, nil
}

func (m *MockClient) GetRepository(ctx context.Context, owner, name string) (*Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("get_repo:" + name)
	if err := m.failure("get_repo"); err != nil {
		return nil, err
	}
	if repo, ok := m.Repos[name]; ok {
		return repo, nil
	}
	return nil, &APIError{StatusCode: 404, Message: "Not Found"}
}

func (m *MockClient) CreateRepository(ctx context.Context, name, description string, private bool) (*Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create_repo:" + name)
	if err := m.failure("create_repo"); err != nil {
		return nil, err
	}
	if _, ok := m.Repos[name]; ok {
		return nil, &APIError{StatusCode: 422, Message: "name already exists on this account"}
	}
	repo := &Repository{
		Name:          name,
		FullName:      m.Owner + "/" + name,
		Owner:         m.Owner,
		HTMLURL:       "https://github.com/" + m.Owner + "/" + name,
		DefaultBranch: "main",
		Description:   description,
		Private:       private,
	}
	m.Repos[name] = repo
	return repo, nil
}

func (m *MockClient) EnsureRepository(ctx context.Context, name, description string) (*Repository, error) {
	if repo, err := m.GetRepository(ctx, m.Owner, name); err == nil {
		return repo, nil
	} else if !IsNotFound(err) {
		return nil, err
	}
	repo, err := m.CreateRepository(ctx, name, description, false)
	if err == nil {
		return repo, nil
	}
	if IsAlreadyExists(err) {
		return m.GetRepository(ctx, m.Owner, name)
	}
	return nil, err
}

func (m *MockClient) GetBranchSHA(ctx context.Context, owner, repo, branch string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("get_branch:" + branch)
	if sha, ok := m.Branches[branch]; ok {
		return sha, nil
	}
	return "", &APIError{StatusCode: 404, Message: "Not Found"}
}

func (m *MockClient) EnsureBranch(ctx context.Context, owner, repo, branch, fromBranch string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ensure_branch:" + branch)
	if err := m.failure("ensure_branch"); err != nil {
		return err
	}
	if _, ok := m.Branches[branch]; ok {
		return nil
	}
	if _, ok := m.Branches[fromBranch]; !ok {
		return &APIError{StatusCode: 404, Message: "base branch missing"}
	}
	m.Branches[branch] = "sha-" + branch
	return nil
}

func (m *MockClient) GetFile(ctx context.Context, owner, repo, path, ref string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("get_file:" + ref + ":" + path)
	if branch, ok := m.Files[ref]; ok {
		if content, ok := branch[path]; ok {
			return content, "blob-" + path, nil
		}
	}
	return nil, "", &APIError{StatusCode: 404, Message: "Not Found"}
}

func (m *MockClient) PutFile(ctx context.Context, owner, repo, path string, content []byte, message, branch string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("put_file:%s:%s", branch, path))
	if err := m.failure("put_file:"+path, "put_file"); err != nil {
		return err
	}
	if _, ok := m.Branches[branch]; !ok {
		// The contents API only creates a branch implicitly in an empty
		// repository; anywhere else an unknown branch is a 404.
		if len(m.Branches) > 0 {
			return &APIError{StatusCode: 404, Message: "Branch not found"}
		}
		m.Branches[branch] = "sha-" + branch
	}
	if m.Files[branch] == nil {
		m.Files[branch] = map[string][]byte{}
	}
	m.Files[branch][path] = content
	return nil
}

func (m *MockClient) EnablePages(ctx context.Context, owner, repo, branch string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("enable_pages:" + branch)
	if err := m.failure("enable_pages"); err != nil {
		return err
	}
	m.PagesEnabled[repo] = branch
	return nil
}

func (m *MockClient) PagesURL(owner, repo string) string {
	return fmt.Sprintf("https://%s.github.io/%s/", owner, repo)
}
