package repository

import (
	"context"
	"strings"
	"time"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ArtifactMemory holds rendered exports until their TTL expires.
type ArtifactMemory struct {
	items *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewArtifactMemory(ttl, cleanupInterval time.Duration) *ArtifactMemory {
	return &ArtifactMemory{
		items: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Save assigns an id and creation time and stores the artifact.
func (r *ArtifactMemory) Save(_ context.Context, artifact entity.Artifact) (entity.Artifact, error) {
	artifact.ID = uuid.NewString()
	artifact.CreatedAt = r.now()
	r.items.Set(artifact.ID, artifact, r.ttl)
	return artifact, nil
}

func (r *ArtifactMemory) Get(_ context.Context, id string) (entity.Artifact, error) {
	v, ok := r.items.Get(id)
	if !ok {
		return entity.Artifact{}, entity.ErrArtifactNotFound
	}
	return v.(entity.Artifact), nil
}

const locatorPrefix = "/artifacts/"

// Locator is the HTTP path the artifact is served from.
func Locator(id string) string {
	return locatorPrefix + id
}

// ArtifactID reverses Locator.
func ArtifactID(locator string) (string, bool) {
	id, ok := strings.CutPrefix(locator, locatorPrefix)
	return id, ok && id != ""
}
