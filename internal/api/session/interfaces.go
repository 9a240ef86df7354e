package session

import (
	"context"

	"github.com/futig/ba-assistant/internal/entity"
)

type AssistantUsecase interface {
	StartSession(ctx context.Context) (entity.StartSessionResponse, error)
	HandleTurn(ctx context.Context, sessionID string, req entity.TurnRequest) (entity.TurnResponse, error)
	History(ctx context.Context, sessionID string) ([]entity.Message, error)
	Knowledge(ctx context.Context, sessionID string) (entity.KnowledgeBase, error)
	CloseSession(ctx context.Context, sessionID string) error
}

type CallbackConnector interface {
	SendTurnResult(ctx context.Context, callbackURL, requestID, sessionID string, data *entity.TurnResponse)
	SendError(ctx context.Context, callbackURL, requestID, sessionID, message string, details map[string]any)
}
