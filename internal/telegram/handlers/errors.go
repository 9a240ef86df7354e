package handlers

import (
	"context"
	"errors"
	"net"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
)

// String returns string representation of error severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
}

// classifyHandlerError picks the log message and severity; the user text comes from render.
func classifyHandlerError(err error) *HandlerError {
	he := &HandlerError{
		Err:         err,
		UserMessage: render.ClassifyError(err),
		LogMessage:  "handler error",
		Severity:    SeverityError,
	}

	var netErr net.Error
	switch {
	case err == nil:
		he.LogMessage = "unknown error"
		he.Severity = SeverityWarning
	case errors.Is(err, entity.ErrSessionNotFound):
		he.LogMessage = "session not found"
		he.Severity = SeverityWarning
	case errors.Is(err, entity.ErrEmptyTurn), errors.Is(err, entity.ErrInvalidParameter):
		he.LogMessage = "invalid input"
		he.Severity = SeverityWarning
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		he.LogMessage = "operation timed out"
	case errors.As(err, &netErr):
		he.LogMessage = "network error"
	}
	return he
}

// HandleError logs err with its severity and tells the user what went wrong
func (s *MessageSender) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	he := classifyHandlerError(err)
	fields := []zap.Field{
		zap.Error(he.Err),
		zap.Int64("chat_id", chatID),
		zap.String("severity", he.Severity.String()),
	}
	if he.Severity == SeverityWarning {
		ctxzap.Warn(ctx, he.LogMessage, fields...)
	} else {
		ctxzap.Error(ctx, he.LogMessage, fields...)
	}

	_ = s.Send(ctx, chatID, he.UserMessage, nil)
}
