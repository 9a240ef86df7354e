package assistant

import (
	"context"

	"github.com/futig/ba-assistant/internal/entity"
)

type Drafter interface {
	Invoke(ctx context.Context, req *entity.DraftRequest) (string, error)
}

type Exporter interface {
	Export(ctx context.Context, markdown string) ([]entity.Attachment, error)
}

type Publisher interface {
	Publish(ctx context.Context, markdown string, page entity.PageConfig) (entity.PublishResult, error)
}

type KnowledgeStore interface {
	Load(ctx context.Context, sessionID string) entity.KnowledgeBase
	Save(ctx context.Context, sessionID string, kb entity.KnowledgeBase) error
	Delete(ctx context.Context, sessionID string) error
}
