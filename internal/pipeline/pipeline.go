// Package pipeline runs the sequential publish flow for one task request:
// validate, provision the repository, seed it, generate the site files,
// publish them, activate pages, and notify the evaluation callback.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	derrors "github.com/22f3002289/Mayank-s-first-LLM-Project/internal/errors"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/forge"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/llm"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/logfields"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/metrics"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/task"
)

// Stage names used for metrics and logging.
const (
	StageValidate  = "validate"
	StageProvision = "provision"
	StageSeed      = "seed"
	StageGenerate  = "generate"
	StagePublish   = "publish"
	StagePages     = "pages"
	StageReadme    = "readme"
	StageCallback  = "callback"
)

const pagesBranch = "gh-pages"

// Options configures optional pipeline collaborators.
type Options struct {
	// Secret is the configured submission secret; empty disables the checkpoint.
	Secret string
	// Recorder receives stage metrics; nil defaults to a no-op recorder.
	Recorder metrics.Recorder
	// Notifier delivers the evaluation callback; nil defaults to a standard one.
	Notifier *Notifier
}

// Pipeline executes task requests. Safe for concurrent use: it holds no
// per-request state.
type Pipeline struct {
	forge    forge.Client
	gen      *llm.Generator
	secret   string
	recorder metrics.Recorder
	notifier *Notifier
}

// New creates a pipeline over the given forge and generator.
func New(fc forge.Client, gen *llm.Generator, opts Options) *Pipeline {
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &Pipeline{
		forge:    fc,
		gen:      gen,
		secret:   opts.Secret,
		recorder: rec,
		notifier: notifier,
	}
}

// Run executes the full pipeline for one request. Validation and secret
// failures reject the request before any outbound call. A failure in a
// mandatory stage aborts the remaining stages; the partially filled report is
// returned alongside the error, and already-created repository state is left
// in place (no rollback).
func (p *Pipeline) Run(ctx context.Context, req *task.Request) (*task.Report, error) {
	start := time.Now()

	if err := p.stage(StageValidate, func() error {
		if err := req.Authorize(p.secret); err != nil {
			return err
		}
		return req.Validate()
	}); err != nil {
		p.recorder.IncTaskOutcome(metrics.OutcomeRejected)
		return nil, err
	}
	req.Normalize()

	report := task.NewReport(req)
	log := slog.With(
		logfields.ReportID(report.ID),
		logfields.Task(req.Task),
		logfields.Round(req.Round))

	var repo *forge.Repository
	if err := p.stage(StageProvision, func() error {
		var err error
		repo, err = p.forge.EnsureRepository(ctx, req.RepoName(), req.Brief)
		if err != nil {
			return derrors.ForgeError("ensure_repository", err).
				WithContext("repository", req.RepoName())
		}
		return nil
	}); err != nil {
		return p.abort(ctx, req, report, err, start)
	}
	report.Repo = repo.HTMLURL
	log = log.With(logfields.Repository(repo.FullName))
	log.Info("repository provisioned")

	// Seed failures degrade the report but never abort the pipeline.
	p.warnStage(StageSeed, func() error {
		return p.seedRepository(ctx, req, repo, report, log)
	})

	var files map[llm.FileKind][]byte
	if err := p.stage(StageGenerate, func() error {
		var err error
		files, err = p.gen.GenerateSite(ctx, req.Task, req.Brief)
		return err
	}); err != nil {
		report.AddError(fmt.Sprintf("llm_generation_failed:%v", err))
		return p.abort(ctx, req, report, err, start)
	}

	branch := req.Branch()
	if err := p.stage(StagePublish, func() error {
		return p.publishFiles(ctx, repo, branch, files, report)
	}); err != nil {
		return p.abort(ctx, req, report, err, start)
	}
	log.Info("site files published", logfields.Branch(branch))

	if err := p.stage(StagePages, func() error {
		return p.activatePages(ctx, repo, branch, files, report)
	}); err != nil {
		report.SetCheck("pages_created", false)
		return p.abort(ctx, req, report, err, start)
	}
	report.PagesURL = p.forge.PagesURL(repo.Owner, repo.Name)
	report.SetCheck("pages_created", true)
	log.Info("pages activated", logfields.URL(report.PagesURL))

	p.warnStage(StageReadme, func() error {
		return p.publishReadme(ctx, req, repo, report)
	})

	report.Finalize()

	p.stageNoErr(StageCallback, func() {
		p.notify(ctx, req, report, log)
	})
	// A failed delivery appends to Errors, so the terminal status is derived
	// again: a clean run degrades to done_with_errors.
	report.Finalize()

	p.recorder.ObserveTaskDuration(time.Since(start))
	if report.Status == task.StatusDone {
		p.recorder.IncTaskOutcome(metrics.OutcomeDone)
	} else {
		p.recorder.IncTaskOutcome(metrics.OutcomeDoneWithErrors)
	}
	log.Info("task completed", slog.String("status", report.Status))
	return report, nil
}

// abort finalizes a fatally failed run: the callback still fires best-effort
// so the evaluator learns about the failure, then the error is surfaced.
func (p *Pipeline) abort(ctx context.Context, req *task.Request, report *task.Report, err error, start time.Time) (*task.Report, error) {
	report.Status = task.StatusFailed
	p.notify(ctx, req, report, slog.With(logfields.ReportID(report.ID)))
	p.recorder.ObserveTaskDuration(time.Since(start))
	p.recorder.IncTaskOutcome(metrics.OutcomeFailed)
	return report, err
}

// seedRepository uploads the LICENSE and any attachments.
func (p *Pipeline) seedRepository(ctx context.Context, req *task.Request, repo *forge.Repository, report *task.Report, log *slog.Logger) error {
	var firstErr error

	license := licenseText(repo.Owner, time.Now().UTC().Year())
	if err := p.forge.PutFile(ctx, repo.Owner, repo.Name, "LICENSE", []byte(license), "Add LICENSE", "main"); err != nil {
		report.AddError(fmt.Sprintf("license_failed:%v", err))
		firstErr = err
	}

	for _, att := range req.Attachments {
		name := att.Name
		if name == "" {
			name = "attachment.bin"
		}
		raw, err := task.DecodeAttachment(att)
		if err != nil {
			report.AddError(fmt.Sprintf("attachment_decode_failed:%s:%v", name, err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, branch := range []string{"main", pagesBranch} {
			if err := p.forge.PutFile(ctx, repo.Owner, repo.Name, name, raw, "Add "+name, branch); err != nil {
				report.AddError(fmt.Sprintf("attachment_upload_failed:%s:%s:%v", name, branch, err))
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			report.AttachmentsUploaded = append(report.AttachmentsUploaded, task.FileUpload{Name: name, Branch: branch, OK: true})
		}
	}

	if firstErr != nil {
		log.Warn("repository seeding incomplete", logfields.Error(firstErr))
	}
	return firstErr
}

// publishFiles uploads the generated artifacts to the publish branch.
func (p *Pipeline) publishFiles(ctx context.Context, repo *forge.Repository, branch string, files map[llm.FileKind][]byte, report *task.Report) error {
	if branch != "main" {
		if err := p.forge.EnsureBranch(ctx, repo.Owner, repo.Name, branch, "main"); err != nil {
			return derrors.ForgeError("ensure_branch", err).WithContext("branch", branch)
		}
	}

	for _, kind := range llm.SiteKinds {
		name := string(kind)
		err := p.forge.PutFile(ctx, repo.Owner, repo.Name, name, files[kind], "Add "+name, branch)
		if err != nil {
			report.Files = append(report.Files, task.FileUpload{Name: name, Branch: branch, OK: false})
			report.AddError(fmt.Sprintf("file_upload_failed:%s:%v", name, err))
			p.recorder.IncUpload(metrics.ResultFailed)
			return derrors.ForgeError("update_file", err).WithContext("file", name)
		}
		report.Files = append(report.Files, task.FileUpload{Name: name, Branch: branch, OK: true})
		p.recorder.IncUpload(metrics.ResultSuccess)
	}
	return nil
}

// activatePages ensures the gh-pages branch carries the latest index.html and
// enables the pages site from it.
func (p *Pipeline) activatePages(ctx context.Context, repo *forge.Repository, publishBranch string, files map[llm.FileKind][]byte, report *task.Report) error {
	if err := p.forge.EnsureBranch(ctx, repo.Owner, repo.Name, pagesBranch, "main"); err != nil {
		return derrors.ForgeError("ensure_branch", err).WithContext("branch", pagesBranch)
	}

	// Prefer the index.html actually on the publish branch; fall back to the
	// generated artifact if the fetch fails.
	index := files[llm.KindHTML]
	if raw, _, err := p.forge.GetFile(ctx, repo.Owner, repo.Name, string(llm.KindHTML), publishBranch); err == nil && len(raw) > 0 {
		index = raw
	}

	if err := p.forge.PutFile(ctx, repo.Owner, repo.Name, string(llm.KindHTML), index, "Add index.html for pages", pagesBranch); err != nil {
		return derrors.ForgeError("update_file", err).WithContext("branch", pagesBranch)
	}

	if err := p.forge.EnablePages(ctx, repo.Owner, repo.Name, pagesBranch); err != nil {
		return derrors.ForgeError("enable_pages", err)
	}
	return nil
}

// publishReadme generates and uploads the README to main.
func (p *Pipeline) publishReadme(ctx context.Context, req *task.Request, repo *forge.Repository, report *task.Report) error {
	text, err := p.gen.GenerateReadme(ctx, req.Brief)
	if err != nil {
		report.AddError(fmt.Sprintf("readme_generation_failed:%v", err))
		report.SetCheck("readme_generated", false)
		return err
	}
	if err := p.forge.PutFile(ctx, repo.Owner, repo.Name, string(llm.KindReadme), []byte(text), "Update README via LLM", "main"); err != nil {
		report.AddError(fmt.Sprintf("readme_upload_failed:%v", err))
		report.SetCheck("readme_generated", false)
		return err
	}
	report.SetCheck("readme_generated", true)
	return nil
}

// notify posts the report to the evaluation callback if one was supplied.
// Delivery failure is recorded and logged, never propagated.
func (p *Pipeline) notify(ctx context.Context, req *task.Request, report *task.Report, log *slog.Logger) {
	if req.EvaluationURL == "" {
		return
	}
	status, err := p.notifier.Notify(ctx, req.EvaluationURL, report)
	posted := err == nil
	report.EvaluationPosted = &posted
	report.EvaluationStatusCode = status
	if err != nil {
		report.AddError(fmt.Sprintf("evaluation_post_failed:%v", err))
		log.Warn("evaluation callback delivery failed",
			logfields.URL(req.EvaluationURL), logfields.Error(err))
	}
}

// stage runs fn, recording its duration and result.
func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.recorder.ObserveStageDuration(name, elapsed)
	slog.Debug("stage finished", logfields.Stage(name), logfields.DurationMS(durationMS(elapsed)))
	if err != nil {
		p.recorder.IncStageResult(name, metrics.ResultFailed)
		return err
	}
	p.recorder.IncStageResult(name, metrics.ResultSuccess)
	return nil
}

// warnStage runs a best-effort stage whose failure only degrades the report.
func (p *Pipeline) warnStage(name string, fn func() error) {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.recorder.ObserveStageDuration(name, elapsed)
	slog.Debug("stage finished", logfields.Stage(name), logfields.DurationMS(durationMS(elapsed)))
	if err != nil {
		p.recorder.IncStageResult(name, metrics.ResultWarning)
		return
	}
	p.recorder.IncStageResult(name, metrics.ResultSuccess)
}

// stageNoErr runs a stage that cannot fail, recording its duration.
func (p *Pipeline) stageNoErr(name string, fn func()) {
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	p.recorder.ObserveStageDuration(name, elapsed)
	slog.Debug("stage finished", logfields.Stage(name), logfields.DurationMS(durationMS(elapsed)))
	p.recorder.IncStageResult(name, metrics.ResultSuccess)
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// licenseText returns the MIT license body for the repository owner.
func licenseText(owner string, year int) string {
	return fmt.Sprintf(`MIT License

Copyright (c) %d %s

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
`, year, owner)
}
