package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskErrorFormatting(t *testing.T) {
	base := New(CategoryForge, SeverityError, "source hosting API request failed")
	assert.Equal(t, "forge (error): source hosting API request failed", base.Error())

	wrapped := Wrap(errors.New("connection refused"), CategoryNetwork, SeverityWarning, "network timeout")
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.Equal(t, errors.Unwrap(wrapped).Error(), "connection refused")
}

func TestWithContext(t *testing.T) {
	err := ValidationError("missing field").WithContext("field", "task")
	assert.Equal(t, "task", err.Context["field"])
	assert.True(t, IsCategory(err, CategoryValidation))
}

func TestGetCategoryFallback(t *testing.T) {
	assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	assert.Equal(t, CategoryAuth, GetCategory(AuthError("secret mismatch")))
}

func TestStatusCodeMapping(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)

	cases := []struct {
		err  error
		code int
	}{
		{nil, http.StatusOK},
		{ValidationError("missing field"), http.StatusBadRequest},
		{AuthError("secret mismatch"), http.StatusUnauthorized},
		{ForgeError("create_repo", errors.New("422")), http.StatusBadGateway},
		{LLMError("html", errors.New("boom")), http.StatusBadGateway},
		{New(CategoryInternal, SeverityError, "oops"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, adapter.StatusCodeFor(tc.err))
	}
}

func TestWriteErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	req := httptest.NewRequest(http.MethodPost, "/upload-task", nil)
	rec := httptest.NewRecorder()

	adapter.WriteErrorResponse(rec, req, AuthError("secret mismatch"))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"status":"failed"`)
	assert.Contains(t, rec.Body.String(), "secret mismatch")
	assert.Contains(t, rec.Body.String(), `"code":"auth"`)
}

func TestFormatErrorResponseIncludesCause(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	resp := adapter.FormatErrorResponse(ForgeError("update_file", errors.New("409 Conflict")))
	require.NotNil(t, resp.Details)
	assert.Equal(t, "409 Conflict", resp.Details["cause"])
	assert.Equal(t, "update_file", resp.Details["operation"])
}
