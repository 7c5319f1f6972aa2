package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	derrors "github.com/22f3002289/Mayank-s-first-LLM-Project/internal/errors"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/llm"
	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/server/responses"
)

// maxSolveImageBytes bounds how much image data the solver will fetch.
const maxSolveImageBytes = 8 << 20

// SolveHandlers contains the image text extraction handler. It fetches an
// image by URL, base64-encodes it, and asks the model to read any text in it.
type SolveHandlers struct {
	llm          llm.Client
	fetchClient  *http.Client
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewSolveHandlers creates a new solve handlers instance.
func NewSolveHandlers(client llm.Client) *SolveHandlers {
	return &SolveHandlers{
		llm:          client,
		fetchClient:  &http.Client{Timeout: 30 * time.Second},
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleSolve handles GET /solve?url=...
func (h *SolveHandlers) HandleSolve(w http.ResponseWriter, r *http.Request) {
	imageURL := r.URL.Query().Get("url")
	if imageURL == "" {
		h.errorAdapter.WriteErrorResponse(w, r,
			derrors.ValidationError("missing required query parameter").
				WithContext("parameter", "url"))
		return
	}

	raw, err := h.fetchImage(r, imageURL)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	system, user := llm.CaptchaPrompt(base64.StdEncoding.EncodeToString(raw))
	answer, err := h.llm.Generate(r.Context(), system, user)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.LLMError("solve", err))
		return
	}

	resp := responses.SolveResponse{SolvedText: strings.TrimSpace(answer)}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		slog.Error("failed to write solve response", "error", err)
	}
}

func (h *SolveHandlers) fetchImage(r *http.Request, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryValidation, "invalid image URL").
			WithContext("url", imageURL)
	}
	resp, err := h.fetchClient.Do(req)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryValidation, "failed to fetch image").
			WithContext("url", imageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, derrors.ValidationError("failed to fetch image").
			WithContext("url", imageURL).
			WithContext("upstream_status", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSolveImageBytes+1))
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryNetwork, "failed to read image body")
	}
	if len(raw) > maxSolveImageBytes {
		return nil, derrors.ValidationError(fmt.Sprintf("image exceeds %d bytes", maxSolveImageBytes)).
			WithContext("url", imageURL)
	}
	return raw, nil
}
