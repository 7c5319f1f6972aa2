package llm

import (
	"context"
	"log/slog"

	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/logfields"
)

// Generator produces the site artifacts from a task brief, one completion per
// file kind. Each file is generated independently; no cross-file consistency
// check is attempted.
type Generator struct {
	client Client
}

// NewGenerator wraps a completion client.
func NewGenerator(client Client) *Generator {
	return &Generator{client: client}
}

// GenerateFile produces the artifact for one file kind. An empty model answer
// falls back to the deterministic template; an API error is returned as-is.
func (g *Generator) GenerateFile(ctx context.Context, kind FileKind, taskName, brief string) ([]byte, error) {
	system, user := FilePrompt(kind, taskName, brief)
	raw, err := g.client.Generate(ctx, system, user)
	if err != nil {
		return nil, err
	}

	content := CleanArtifact(raw)
	if content == "" {
		slog.Warn("model returned empty artifact, using fallback template",
			logfields.File(string(kind)), logfields.Task(taskName))
		content = Fallback(kind)
	}
	return []byte(content), nil
}

// GenerateSite produces all three front-end files in order.
func (g *Generator) GenerateSite(ctx context.Context, taskName, brief string) (map[FileKind][]byte, error) {
	files := make(map[FileKind][]byte, len(SiteKinds))
	for _, kind := range SiteKinds {
		content, err := g.GenerateFile(ctx, kind, taskName, brief)
		if err != nil {
			return nil, err
		}
		files[kind] = content
	}
	return files, nil
}

// GenerateReadme produces the repository README text.
func (g *Generator) GenerateReadme(ctx context.Context, brief string) (string, error) {
	system, user := ReadmePrompt(brief)
	raw, err := g.client.Generate(ctx, system, user)
	if err != nil {
		return "", err
	}
	return CleanArtifact(raw), nil
}
