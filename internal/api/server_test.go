package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/ba-assistant/internal/api/document"
	"github.com/futig/ba-assistant/internal/api/session"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRouterServesHealthAndDocs(t *testing.T) {
	router := SetupRouter(&session.Handler{}, &document.Handler{}, time.Minute, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/swagger.yaml", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/sessions/{id}/turns")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
}
