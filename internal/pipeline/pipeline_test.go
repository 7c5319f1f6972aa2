package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/22f3002289/Mayank-s-first-LLM-Project/internal/errors"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/forge"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/llm"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/task"
)

type fakeLLM struct {
	err   error
	calls int
}

func (f *fakeLLM) Generate(_ context.Context, system, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	switch {
	case strings.Contains(user, "index.html") && !strings.Contains(system, "README"):
		return "<html><head><link rel=\"stylesheet\" href=\"styles.css\"></head></html>", nil
	case strings.Contains(user, "styles.css"):
		return "body { margin: 0; }", nil
	case strings.Contains(user, "script.js"):
		return "console.log('ready');", nil
	default:
		return "# Demo\n\nGenerated site.", nil
	}
}

func newTestPipeline(fc *forge.MockClient, gen llm.Client, secret string) *Pipeline {
	return New(fc, llm.NewGenerator(gen), Options{Secret: secret})
}

func baseRequest() *task.Request {
	return &task.Request{
		Email: "student@example.com",
		Task:  "Landing Page",
		Brief: "A single page site with a headline",
		Nonce: "ab12cd34",
	}
}

func TestRunHappyPath(t *testing.T) {
	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	report, err := p.Run(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, task.StatusDone, report.Status)
	assert.Equal(t, "https://github.com/octo/landing-page-ab12cd34", report.Repo)
	assert.Equal(t, "https://octo.github.io/landing-page-ab12cd34/", report.PagesURL)
	assert.True(t, report.Checks["pages_created"])
	assert.True(t, report.Checks["readme_generated"])
	assert.Empty(t, report.Errors)

	require.Len(t, report.Files, 3)
	for _, f := range report.Files {
		assert.True(t, f.OK)
		assert.Equal(t, "main", f.Branch)
	}

	// Artifacts, LICENSE, and README land on main; index.html is mirrored to
	// the pages branch.
	main := fc.Files["main"]
	for _, name := range []string{"index.html", "styles.css", "script.js", "LICENSE", "README.md"} {
		assert.NotEmpty(t, main[name], "missing %s on main", name)
	}
	assert.Equal(t, main["index.html"], fc.Files["gh-pages"]["index.html"])
	assert.Equal(t, "gh-pages", fc.PagesEnabled["landing-page-ab12cd34"])
}

func TestRunRejectsBadSecretBeforeAnyOutboundCall(t *testing.T) {
	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "hunter2")

	req := baseRequest()
	req.Secret = "wrong"
	report, err := p.Run(context.Background(), req)

	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryAuth))
	assert.Nil(t, report)
	assert.Empty(t, fc.Calls)
}

func TestRunRejectsMissingBrief(t *testing.T) {
	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	req := baseRequest()
	req.Brief = ""
	_, err := p.Run(context.Background(), req)

	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryValidation))
	assert.Empty(t, fc.Calls)
}

func TestRunLaterRoundPublishesToRoundBranch(t *testing.T) {
	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	req := baseRequest()
	req.Round = 2
	report, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, fc.Calls, "ensure_branch:round-2")
	for _, f := range report.Files {
		assert.Equal(t, "round-2", f.Branch)
	}
	assert.NotEmpty(t, fc.Files["round-2"]["index.html"])
	// The pages branch mirrors the round branch's index.html.
	assert.Equal(t, fc.Files["round-2"]["index.html"], fc.Files["gh-pages"]["index.html"])
}

func TestRunRecordsPagesAttachmentFailureOnFirstRun(t *testing.T) {
	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	req := baseRequest()
	req.Attachments = []task.Attachment{
		{Name: "logo.png", URL: "data:image/png;base64,aGVsbG8="},
	}
	report, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	// Seeding runs before the pages branch exists, so the gh-pages copy is
	// recorded as a failure while the main copy lands.
	require.Len(t, report.AttachmentsUploaded, 1)
	assert.Equal(t, "main", report.AttachmentsUploaded[0].Branch)
	assert.Equal(t, []byte("hello"), fc.Files["main"]["logo.png"])
	assert.Equal(t, task.StatusDoneWithErrors, report.Status)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "attachment_upload_failed:logo.png:gh-pages")
	// The site itself still publishes.
	assert.True(t, report.Checks["pages_created"])
}

func TestRunUploadsAttachmentsToBothBranchesOnResubmit(t *testing.T) {
	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	// The first run creates the pages branch; a resubmit seeds both copies.
	_, err := p.Run(context.Background(), baseRequest())
	require.NoError(t, err)

	req := baseRequest()
	req.Attachments = []task.Attachment{
		{Name: "logo.png", URL: "data:image/png;base64,aGVsbG8="},
	}
	report, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, task.StatusDone, report.Status)
	require.Len(t, report.AttachmentsUploaded, 2)
	branches := map[string]bool{}
	for _, up := range report.AttachmentsUploaded {
		assert.Equal(t, "logo.png", up.Name)
		assert.True(t, up.OK)
		branches[up.Branch] = true
	}
	assert.True(t, branches["main"])
	assert.True(t, branches["gh-pages"])
	assert.Equal(t, []byte("hello"), fc.Files["gh-pages"]["logo.png"])
}

func TestRunRecordsMalformedAttachmentAndContinues(t *testing.T) {
	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	req := baseRequest()
	req.Attachments = []task.Attachment{{Name: "bad.bin", Data: "not-a-data-uri"}}
	report, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, task.StatusDoneWithErrors, report.Status)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "attachment_decode_failed:bad.bin")
	// The site itself still publishes.
	assert.NotEmpty(t, fc.Files["main"]["index.html"])
	assert.True(t, report.Checks["pages_created"])
}

func TestRunSurfacesUploadConflict(t *testing.T) {
	fc := forge.NewMockClient("octo")
	fc.Fail["put_file:index.html"] = &forge.APIError{StatusCode: 409, Message: "is at sha but expected"}
	p := newTestPipeline(fc, &fakeLLM{}, "")

	report, err := p.Run(context.Background(), baseRequest())

	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryForge))
	assert.True(t, forge.IsConflict(errors.Unwrap(err)))
	require.NotNil(t, report)
	assert.Equal(t, task.StatusFailed, report.Status)
}

func TestRunAbortsWhenRepositoryProvisioningFails(t *testing.T) {
	fc := forge.NewMockClient("octo")
	fc.Fail["get_repo"] = &forge.APIError{StatusCode: 500, Message: "upstream down"}
	lc := &fakeLLM{}
	p := newTestPipeline(fc, lc, "")

	report, err := p.Run(context.Background(), baseRequest())

	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryForge))
	assert.Equal(t, task.StatusFailed, report.Status)
	assert.Zero(t, lc.calls)
}

func TestRunAbortsOnGenerationFailure(t *testing.T) {
	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{err: errors.New("api down")}, "")

	report, err := p.Run(context.Background(), baseRequest())

	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, task.StatusFailed, report.Status)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "llm_generation_failed")
	// Nothing was published past the seed stage.
	assert.Empty(t, fc.Files["main"]["index.html"])
}

func TestRunIsIdempotentAcrossResubmits(t *testing.T) {
	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	_, err := p.Run(context.Background(), baseRequest())
	require.NoError(t, err)
	report, err := p.Run(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, task.StatusDone, report.Status)
	require.Len(t, fc.Repos, 1)

	creates := 0
	for _, call := range fc.Calls {
		if call == "create_repo:landing-page-ab12cd34" {
			creates++
		}
	}
	assert.Equal(t, 1, creates, "resubmission must reuse the repository")
}

func TestRunPostsCallbackWithFinalReport(t *testing.T) {
	var got task.Report
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	req := baseRequest()
	req.EvaluationURL = srv.URL
	report, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, task.StatusDone, report.Status)
	require.NotNil(t, report.EvaluationPosted)
	assert.True(t, *report.EvaluationPosted)
	assert.Equal(t, http.StatusOK, report.EvaluationStatusCode)
	// The delivered payload already carries the terminal status.
	assert.Equal(t, task.StatusDone, got.Status)
	assert.Equal(t, report.ID, got.ID)
}

func TestRunSkipsCallbackWithoutURL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	_, err := p.Run(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, int32(0), hits.Load())
}

func TestRunRecordsCallbackDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	req := baseRequest()
	req.EvaluationURL = srv.URL
	report, err := p.Run(context.Background(), req)

	// Callback failure never fails the task, but it degrades the status.
	require.NoError(t, err)
	assert.Equal(t, task.StatusDoneWithErrors, report.Status)
	require.NotNil(t, report.EvaluationPosted)
	assert.False(t, *report.EvaluationPosted)
	assert.Equal(t, http.StatusInternalServerError, report.EvaluationStatusCode)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[len(report.Errors)-1], "evaluation_post_failed")
}

func TestRunLogsStageDurations(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	fc := forge.NewMockClient("octo")
	p := newTestPipeline(fc, &fakeLLM{}, "")

	_, err := p.Run(context.Background(), baseRequest())
	require.NoError(t, err)

	out := buf.String()
	for _, name := range []string{StageValidate, StageProvision, StageGenerate, StagePublish, StagePages} {
		assert.Contains(t, out, `"stage":"`+name+`"`, "missing stage log for %s", name)
	}
	assert.Contains(t, out, `"duration_ms"`)
}

func TestRunPostsCallbackOnFatalFailure(t *testing.T) {
	var got task.Report
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	fc := forge.NewMockClient("octo")
	fc.Fail["put_file:index.html"] = &forge.APIError{StatusCode: 409, Message: "conflict"}
	p := newTestPipeline(fc, &fakeLLM{}, "")

	req := baseRequest()
	req.EvaluationURL = srv.URL
	_, err := p.Run(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, task.StatusFailed, got.Status)
}
