package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/pkg/logger"
	"github.com/futig/ba-assistant/internal/pkg/response"
	"github.com/futig/ba-assistant/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase      AssistantUsecase
	callbackConn CallbackConnector
	validator    *validator.Validator
	inflight     sync.WaitGroup
}

func NewHandler(usecase AssistantUsecase, validator *validator.Validator, callbackConn CallbackConnector) *Handler {
	return &Handler{
		usecase:      usecase,
		validator:    validator,
		callbackConn: callbackConn,
	}
}

// Wait blocks until every asynchronous turn has delivered its callback.
func (h *Handler) Wait() {
	h.inflight.Wait()
}

// StartSession handles POST /sessions
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	resp, err := h.usecase.StartSession(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session started", zap.String("session_id", resp.SessionID))
	response.Created(w, resp)
}

// HandleTurn handles POST /sessions/{id}/turns
func (h *Handler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "HandleTurn"),
	)

	var req entity.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateTurn(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	if req.CallbackURL != "" {
		h.handleTurnAsync(ctx, w, r, sessionID, req)
		return
	}

	resp, err := h.usecase.HandleTurn(ctx, sessionID, req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "turn handled",
		zap.String("intent", string(resp.Intent)),
		zap.Int("attachments", len(resp.Message.Attachments)),
	)
	response.Success(w, resp)
}

func (h *Handler) handleTurnAsync(ctx context.Context, w http.ResponseWriter, r *http.Request, sessionID string, req entity.TurnRequest) {
	requestID := chimiddleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = r.Header.Get("X-Request-ID")
	}

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()

		bgCtx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
			zap.String("request_id", requestID),
			zap.String("action", "HandleTurn-async"),
		)

		resp, err := h.usecase.HandleTurn(bgCtx, sessionID, req)
		if err != nil {
			ctxzap.Error(bgCtx, "failed to handle turn", zap.Error(err))
			h.callbackConn.SendError(bgCtx, req.CallbackURL, requestID, sessionID, "failed to handle turn", map[string]any{
				"error": err.Error(),
			})
			return
		}

		ctxzap.Info(bgCtx, "turn handled",
			zap.String("intent", string(resp.Intent)),
			zap.Int("attachments", len(resp.Message.Attachments)),
		)
		h.callbackConn.SendTurnResult(bgCtx, req.CallbackURL, requestID, sessionID, &resp)
	}()

	response.JSON(w, http.StatusAccepted, entity.AcceptedResponse{
		Status:    "accepted",
		SessionID: sessionID,
		RequestID: requestID,
	})
}

// GetMessages handles GET /sessions/{id}/messages
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetMessages"),
	)

	messages, err := h.usecase.History(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if messages == nil {
		messages = []entity.Message{}
	}

	response.Success(w, entity.HistoryResponse{SessionID: sessionID, Messages: messages})
}

// GetKnowledge handles GET /sessions/{id}/knowledge
func (h *Handler) GetKnowledge(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetKnowledge"),
	)

	kb, err := h.usecase.Knowledge(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, kb)
}

// CloseSession handles DELETE /sessions/{id}
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "CloseSession"),
	)

	if err := h.usecase.CloseSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session closed")
	response.NoContent(w)
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
	case errors.Is(err, entity.ErrSessionNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
	case errors.Is(err, entity.ErrEmptyTurn), errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
