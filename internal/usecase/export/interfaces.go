package export

import (
	"context"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/pkg/formatter"
)

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}

type ArtifactStore interface {
	Save(ctx context.Context, artifact entity.Artifact) (entity.Artifact, error)
}
