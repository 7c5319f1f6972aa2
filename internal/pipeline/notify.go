package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/task"
)

// Notifier posts the publish report to a caller-supplied evaluation URL.
// Delivery is single-shot: a failed POST is recorded by the caller, never
// retried.
type Notifier struct {
	httpClient *http.Client
}

// NewNotifier creates a Notifier with a short delivery timeout; the callback
// must never hold the pipeline hostage.
func NewNotifier() *Notifier {
	return &Notifier{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// Notify POSTs the report as JSON and returns the response status code.
func (n *Notifier) Notify(ctx context.Context, url string, report *task.Report) (int, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
