package knowledge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const keyPrefix = "kb:"

// KVStore is the persistence port for knowledge bases.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	kv KVStore
}

func NewStore(kv KVStore) *Store {
	return &Store{kv: kv}
}

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

// Load returns the stored knowledge base of a session. Missing, unreadable or
// corrupted data yields an empty knowledge base.
func (s *Store) Load(ctx context.Context, sessionID string) entity.KnowledgeBase {
	raw, ok, err := s.kv.Get(ctx, Key(sessionID))
	if err != nil {
		ctxzap.Warn(ctx, "failed to read knowledge base, starting empty",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return entity.KnowledgeBase{}
	}
	if !ok {
		return entity.KnowledgeBase{}
	}

	kb, err := Decode(raw)
	if err != nil {
		ctxzap.Warn(ctx, "stored knowledge base is invalid, resetting",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return entity.KnowledgeBase{}
	}

	return kb
}

func (s *Store) Save(ctx context.Context, sessionID string, kb entity.KnowledgeBase) error {
	raw, err := json.Marshal(Merge(entity.KnowledgeBase{}, kb))
	if err != nil {
		return fmt.Errorf("marshal knowledge base: %w", err)
	}

	if err := s.kv.Set(ctx, Key(sessionID), raw); err != nil {
		return fmt.Errorf("save knowledge base: %w", err)
	}

	ctxzap.Debug(ctx, "knowledge base saved",
		zap.String("session_id", sessionID),
		zap.Int("bytes", len(raw)),
	)
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Delete(ctx, Key(sessionID)); err != nil {
		return fmt.Errorf("delete knowledge base: %w", err)
	}
	return nil
}

// Decode parses a stored knowledge base and restores its invariants.
func Decode(raw []byte) (entity.KnowledgeBase, error) {
	var kb entity.KnowledgeBase
	if err := json.Unmarshal(raw, &kb); err != nil {
		return entity.KnowledgeBase{}, fmt.Errorf("%w: %v", entity.ErrInvalidKnowledgeBase, err)
	}
	return Merge(entity.KnowledgeBase{}, kb), nil
}
