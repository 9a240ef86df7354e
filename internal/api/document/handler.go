package document

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/pkg/logger"
	"github.com/futig/ba-assistant/internal/pkg/response"
	"github.com/futig/ba-assistant/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Handler serves stateless document operations. publisher and renderer are
// optional and their routes answer 503 when missing.
type Handler struct {
	exporter  ExportUsecase
	artifacts ArtifactStore
	publisher Publisher
	renderer  DiagramRenderer
	validator *validator.Validator
}

func NewHandler(
	exporter ExportUsecase,
	artifacts ArtifactStore,
	publisher Publisher,
	renderer DiagramRenderer,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		exporter:  exporter,
		artifacts: artifacts,
		publisher: publisher,
		renderer:  renderer,
		validator: validator,
	}
}

// Export handles POST /documents/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExportDocument")

	var req entity.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validator.ValidateExport(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	if req.Bundle {
		bundle, err := h.exporter.Bundle(ctx, req.Markdown)
		if err != nil {
			h.handleUsecaseError(ctx, w, err)
			return
		}
		ctxzap.Info(ctx, "bundle exported", zap.String("name", bundle.Name), zap.Int("size", len(bundle.Data)))
		response.Attachment(w, bundle.Name, bundle.ContentType, bundle.Data)
		return
	}

	attachments, err := h.exporter.Export(ctx, req.Markdown)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	response.Success(w, entity.ExportResponse{Attachments: attachments})
}

// Publish handles POST /documents/publish
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "PublishDocument")

	if h.publisher == nil {
		h.respondError(ctx, w, http.StatusServiceUnavailable, "publishing is not configured", entity.ErrPublishNotConfigured)
		return
	}

	var req entity.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validator.ValidatePublish(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	res, err := h.publisher.Publish(ctx, req.Markdown, req.Page)
	if err != nil {
		// the result carries the user-facing failure text
		ctxzap.Warn(ctx, "publishing failed", zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, entity.ErrPublishNotConfigured) {
			status = http.StatusBadRequest
		}
		response.JSON(w, status, res)
		return
	}
	response.Created(w, res)
}

// GetArtifact handles GET /artifacts/{id}
func (h *Handler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("artifact_id", id),
		zap.String("action", "GetArtifact"),
	)

	artifact, err := h.artifacts.Get(ctx, id)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Debug(ctx, "serving artifact", zap.String("name", artifact.Name))
	response.Attachment(w, artifact.Name, artifact.ContentType, artifact.Data)
}

// RenderDiagram handles POST /diagrams/render
func (h *Handler) RenderDiagram(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RenderDiagram")

	if h.renderer == nil {
		h.respondError(ctx, w, http.StatusServiceUnavailable, "diagram rendering is disabled", nil)
		return
	}

	var req entity.DiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validator.ValidateDiagram(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	svg, err := h.renderer.Render(ctx, req.Source)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	response.Success(w, entity.DiagramResponse{SVG: svg})
}


func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}

	response.Error(w, status, message, err)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrArtifactNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "artifact not found", err)
	case errors.Is(err, entity.ErrNothingToExport), errors.Is(err, entity.ErrInvalidParameter):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrRenderingFailure):
		h.respondError(ctx, w, http.StatusUnprocessableEntity, "rendering failed", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
