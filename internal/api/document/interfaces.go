package document

import (
	"context"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/usecase/export"
)

type ExportUsecase interface {
	Export(ctx context.Context, markdown string) ([]entity.Attachment, error)
	Bundle(ctx context.Context, markdown string) (export.Bundle, error)
}

type ArtifactStore interface {
	Get(ctx context.Context, id string) (entity.Artifact, error)
}

type Publisher interface {
	Publish(ctx context.Context, markdown string, page entity.PageConfig) (entity.PublishResult, error)
}

type DiagramRenderer interface {
	Render(ctx context.Context, source string) (string, error)
}
