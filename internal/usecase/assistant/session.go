package assistant

import (
	"sync"
	"time"

	"github.com/futig/ba-assistant/internal/entity"
)

// session owns the knowledge base and history of one conversation. mu
// serializes turns, so the knowledge base has a single writer.
type session struct {
	id        string
	createdAt time.Time

	mu        sync.Mutex
	kb        entity.KnowledgeBase
	history   []entity.Message
	lastDraft string
	closed    bool
}

func (s *session) lastAssistant() (entity.Message, bool) {
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Role == entity.RoleAssistant {
			return s.history[i], true
		}
	}
	return entity.Message{}, false
}

// recent returns at most limit trailing messages.
func (s *session) recent(limit int) []entity.Message {
	start := max(len(s.history)-limit, 0)
	out := make([]entity.Message, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

func (s *session) append(limit int, messages ...entity.Message) {
	s.history = append(s.history, messages...)
	// keep twice the drafting window so History stays useful
	if keep := 2 * limit; len(s.history) > keep {
		s.history = append([]entity.Message(nil), s.history[len(s.history)-keep:]...)
	}
}
