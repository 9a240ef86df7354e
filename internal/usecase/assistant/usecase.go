package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futig/ba-assistant/internal/completeness"
	"github.com/futig/ba-assistant/internal/continuation"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/fallback"
	"github.com/futig/ba-assistant/internal/intent"
	"github.com/futig/ba-assistant/internal/knowledge"
	"github.com/futig/ba-assistant/internal/pkg/logger"
	pkgRetry "github.com/futig/ba-assistant/internal/pkg/retry"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const evictionSaveTimeout = 10 * time.Second

// Options tune the turn pipeline.
type Options struct {
	Continuation       pkgRetry.Policy
	DraftThresholds    completeness.Thresholds
	FallbackThresholds completeness.Thresholds
	SessionTTL         time.Duration
	CleanupInterval    time.Duration
	HistoryLimit       int
}

// AssistantUsecase runs conversations: each turn is classified, feeds the
// session knowledge base and may produce a document with attachments.
type AssistantUsecase struct {
	drafter      Drafter
	exporter     Exporter
	publisher    Publisher
	store        KnowledgeStore
	classifier   *intent.Classifier
	continuation *continuation.Protocol
	sessions     *cache.Cache
	opts         Options
	logger       *zap.Logger
	now          func() time.Time
}

// NewUsecase wires the pipeline. publisher may be nil when publishing is not configured.
func NewUsecase(
	drafter Drafter,
	exporter Exporter,
	publisher Publisher,
	store KnowledgeStore,
	opts Options,
	logger *zap.Logger,
) *AssistantUsecase {
	uc := &AssistantUsecase{
		drafter:      drafter,
		exporter:     exporter,
		publisher:    publisher,
		store:        store,
		classifier:   intent.NewClassifier(),
		continuation: continuation.NewProtocol(drafter, opts.Continuation),
		sessions:     cache.New(opts.SessionTTL, opts.CleanupInterval),
		opts:         opts,
		logger:       logger,
		now:          time.Now,
	}
	uc.sessions.OnEvicted(uc.onEvicted)
	return uc
}

func (uc *AssistantUsecase) onEvicted(id string, v any) {
	s := v.(*session)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), evictionSaveTimeout)
	defer cancel()
	if err := uc.store.Save(ctx, id, s.kb); err != nil {
		uc.logger.Warn("failed to save knowledge base of expired session", zap.String("session_id", id), zap.Error(err))
		return
	}
	uc.logger.Info("idle session expired", zap.String("session_id", id))
}

// StartSession opens a session with a fresh id.
func (uc *AssistantUsecase) StartSession(ctx context.Context) (entity.StartSessionResponse, error) {
	return uc.OpenSession(ctx, uuid.NewString())
}

// OpenSession returns the live session with the given id or starts it,
// loading its knowledge base from the store.
func (uc *AssistantUsecase) OpenSession(ctx context.Context, id string) (entity.StartSessionResponse, error) {
	if v, ok := uc.sessions.Get(id); ok {
		s := v.(*session)
		return entity.StartSessionResponse{SessionID: s.id, CreatedAt: s.createdAt}, nil
	}

	s := &session{
		id:        id,
		createdAt: uc.now(),
		kb:        uc.store.Load(ctx, id),
	}
	if err := uc.sessions.Add(id, s, cache.DefaultExpiration); err != nil {
		// opened concurrently
		return uc.OpenSession(ctx, id)
	}

	ctxzap.Info(ctx, "session started", zap.String("session_id", id), zap.Bool("known", !s.kb.IsEmpty()))
	return entity.StartSessionResponse{SessionID: id, CreatedAt: s.createdAt}, nil
}

func (uc *AssistantUsecase) session(id string) (*session, error) {
	v, ok := uc.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
	}
	return v.(*session), nil
}

// lock returns the session locked, refreshing its idle timer.
func (uc *AssistantUsecase) lock(id string) (*session, error) {
	s, err := uc.session(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
	}
	uc.sessions.SetDefault(id, s)
	return s, nil
}

func (uc *AssistantUsecase) Knowledge(_ context.Context, id string) (entity.KnowledgeBase, error) {
	s, err := uc.lock(id)
	if err != nil {
		return entity.KnowledgeBase{}, err
	}
	defer s.mu.Unlock()
	return knowledge.Merge(entity.KnowledgeBase{}, s.kb), nil
}

func (uc *AssistantUsecase) History(_ context.Context, id string) ([]entity.Message, error) {
	s, err := uc.lock(id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.recent(len(s.history)), nil
}

// CloseSession saves the knowledge base and forgets the session.
func (uc *AssistantUsecase) CloseSession(ctx context.Context, id string) error {
	s, err := uc.lock(id)
	if err != nil {
		return err
	}
	s.closed = true
	kb := s.kb
	s.mu.Unlock()

	uc.sessions.Delete(id)
	if err := uc.store.Save(ctx, id, kb); err != nil {
		return fmt.Errorf("save knowledge base: %w", err)
	}
	ctxzap.Info(ctx, "session closed", zap.String("session_id", id))
	return nil
}

// ResetSession drops the session and its stored knowledge base. Resetting an
// unknown session only clears the store.
func (uc *AssistantUsecase) ResetSession(ctx context.Context, id string) error {
	if s, err := uc.lock(id); err == nil {
		s.closed = true
		s.mu.Unlock()
		uc.sessions.Delete(id)
	}
	if err := uc.store.Delete(ctx, id); err != nil {
		return err
	}
	ctxzap.Info(ctx, "session reset", zap.String("session_id", id))
	return nil
}

// HandleTurn processes one user message. Drafting and export problems never
// fail the turn; they degrade to local documents, canned replies or missing
// attachments.
func (uc *AssistantUsecase) HandleTurn(ctx context.Context, id string, req entity.TurnRequest) (entity.TurnResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return entity.TurnResponse{}, entity.ErrEmptyTurn
	}

	s, err := uc.lock(id)
	if err != nil {
		return entity.TurnResponse{}, err
	}
	defer s.mu.Unlock()

	ctx = logger.WithAction(logger.WithSession(ctx, id), "handle_turn")
	start := uc.now()

	prior, _ := s.lastAssistant()
	askedForData := completeness.IsDataRequest(prior.Content)
	fallbackIntent := entity.IntentChatQuestion
	if askedForData {
		fallbackIntent = entity.IntentDocumentRequest
	}
	in := uc.classifier.Classify(intent.Turn{
		Text:              text,
		PriorAssistant:    prior.Content,
		PriorAskedForData: askedForData,
	}, fallbackIntent)

	s.kb = knowledge.Merge(s.kb, knowledge.Extract(text))
	s.append(uc.opts.HistoryLimit, entity.Message{Role: entity.RoleUser, Content: text, CreatedAt: uc.now()})

	ctxzap.Info(ctx, "turn classified", zap.String("intent", string(in)), zap.Bool("prior_asked_for_data", askedForData))

	var resp entity.TurnResponse
	switch in {
	case entity.IntentMissingDataQuery:
		resp = uc.dataRequest(s, text)
	case entity.IntentChatQuestion:
		resp = uc.chat(ctx, s)
	default:
		resp = uc.document(ctx, s, text, in, req)
	}
	resp.Intent = in
	resp.Message.Role = entity.RoleAssistant
	resp.Message.CreatedAt = uc.now()

	s.append(uc.opts.HistoryLimit, resp.Message)

	if err := uc.store.Save(ctx, id, s.kb); err != nil {
		ctxzap.Warn(ctx, "failed to save knowledge base", zap.Error(err))
	}

	ctxzap.Info(ctx, "turn handled",
		zap.String("decision", string(resp.Decision)),
		zap.Int("attachments", len(resp.Message.Attachments)),
		zap.Duration("duration", uc.now().Sub(start)),
	)
	return resp, nil
}

func (uc *AssistantUsecase) dataRequest(s *session, text string) entity.TurnResponse {
	content := completeness.BuildDataRequest(text, s.lastDraft, s.kb)
	if content == "" {
		return entity.TurnResponse{Message: entity.Message{Content: nothingMissingMessage}}
	}
	return entity.TurnResponse{
		Decision: entity.DecisionNeedsMoreData,
		Message:  entity.Message{Content: content},
	}
}

func (uc *AssistantUsecase) chat(ctx context.Context, s *session) entity.TurnResponse {
	reply, err := uc.drafter.Invoke(ctx, &entity.DraftRequest{
		Messages: s.recent(uc.opts.HistoryLimit),
		Mode:     entity.DraftModeChat,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		ctxzap.Warn(ctx, "chat reply unavailable, answering locally", zap.Error(err))
		reply = fallback.BuildLocalChatReply(s.history[len(s.history)-1].Content)
	}
	return entity.TurnResponse{Message: entity.Message{Content: reply}}
}

func (uc *AssistantUsecase) document(ctx context.Context, s *session, text string, in entity.Intent, req entity.TurnRequest) entity.TurnResponse {
	history := s.recent(uc.opts.HistoryLimit)
	thresholds := uc.opts.DraftThresholds

	draft, err := uc.drafter.Invoke(ctx, &entity.DraftRequest{
		Messages: history,
		Mode:     entity.DraftModeDocument,
		DocType:  req.DocType,
	})
	if err == nil && strings.TrimSpace(draft) == "" {
		err = fmt.Errorf("%w: empty draft", entity.ErrServiceUnavailable)
	}

	if err != nil {
		if errors.Is(err, entity.ErrServiceUnavailable) {
			ctxzap.Warn(ctx, "drafting service unavailable, building local document", zap.Error(err))
		} else {
			ctxzap.Error(ctx, "drafting failed, building local document", zap.Error(err))
		}

		draft = fallback.BuildLocalDoc(text, s.kb)
		if draft == "" {
			ctxzap.Warn(ctx, "no data for a local document", zap.Error(entity.ErrInsufficientInput))
			return entity.TurnResponse{
				Decision: entity.DecisionNeedsMoreData,
				Message:  entity.Message{Content: minimumInputMessage},
			}
		}
		thresholds = uc.opts.FallbackThresholds
	} else {
		res := uc.continuation.Run(ctx, history, draft, req.DocType)
		draft = res.Text
	}
	s.lastDraft = draft

	report := completeness.Evaluate(draft, thresholds)
	if in != entity.IntentForceProceed && completeness.NeedsMoreData(draft, thresholds) {
		if request := completeness.BuildDataRequest(text, draft, s.kb); request != "" {
			return entity.TurnResponse{
				Decision: entity.DecisionNeedsMoreData,
				Message:  entity.Message{Content: request},
			}
		}
	}

	resp := entity.TurnResponse{
		Decision: report.Decision,
		Message:  entity.Message{Content: draft},
	}
	if resp.Decision == entity.DecisionNeedsMoreData {
		// forced or nothing left to ask
		resp.Decision = entity.DecisionComplete
	}

	attachments, err := uc.exporter.Export(ctx, draft)
	if err != nil {
		ctxzap.Warn(ctx, "export failed", zap.Error(err))
		resp.Message.Content += exportFailedNote
	}
	resp.Message.Attachments = attachments
	s.kb = knowledge.Merge(s.kb, knowledge.Extract(draft))

	if req.Publish != nil {
		resp.Publication = uc.publish(ctx, draft, *req.Publish)
	}
	return resp
}

func (uc *AssistantUsecase) publish(ctx context.Context, draft string, page entity.PageConfig) *entity.PublishResult {
	if uc.publisher == nil {
		return &entity.PublishResult{Error: entity.ErrPublishNotConfigured.Error()}
	}
	res, err := uc.publisher.Publish(ctx, draft, page)
	if err != nil {
		ctxzap.Warn(ctx, "publishing failed", zap.Error(err))
	}
	return &res
}
