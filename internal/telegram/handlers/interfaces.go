package handlers

import (
	"context"

	"github.com/futig/ba-assistant/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of tgbotapi.BotAPI the handlers use
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// AssistantUsecase drives the conversation for one chat session
type AssistantUsecase interface {
	OpenSession(ctx context.Context, sessionID string) (entity.StartSessionResponse, error)
	HandleTurn(ctx context.Context, sessionID string, req entity.TurnRequest) (entity.TurnResponse, error)
	ResetSession(ctx context.Context, sessionID string) error
	Knowledge(ctx context.Context, sessionID string) (entity.KnowledgeBase, error)
}

type ArtifactStore interface {
	Get(ctx context.Context, id string) (entity.Artifact, error)
}
