package response

import (
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "validation failed", errors.New("text is empty"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Bad Request","message":"validation failed: text is empty"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Error(rec, http.StatusInternalServerError, "internal server error", errors.New("pq: connection refused"))
	assert.JSONEq(t, `{"error":"Internal Server Error","message":"internal server error"}`, rec.Body.String())
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	Attachment(rec, "Требования-2026-01-02-03-04-05.html", "text/html; charset=utf-8", []byte("<html></html>"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "Требования-2026-01-02-03-04-05.html", params["filename"])
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
