package continuation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/ba-assistant/internal/completeness"
	"github.com/futig/ba-assistant/internal/entity"
	pkgRetry "github.com/futig/ba-assistant/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var errIncomplete = errors.New("draft is still incomplete")

// Drafter is the drafting service as seen by the protocol.
type Drafter interface {
	Invoke(ctx context.Context, req *entity.DraftRequest) (string, error)
}

type Result struct {
	Text     string
	Attempts int
	Complete bool
}

// Protocol asks the drafting service to finish a truncated document until it
// passes the completeness check or the policy is exhausted.
type Protocol struct {
	drafter Drafter
	policy  pkgRetry.Policy
}

func NewProtocol(drafter Drafter, policy pkgRetry.Policy) *Protocol {
	return &Protocol{
		drafter: drafter,
		policy:  policy,
	}
}

// Run never fails: when the bound is reached the best text so far is returned.
func (p *Protocol) Run(ctx context.Context, history []entity.Message, draft string, docType entity.DocType) Result {
	text := draft
	if completeness.IsComplete(text) {
		return Result{Text: text, Complete: true}
	}
	if p.policy.Total() == 0 {
		return Result{Text: text}
	}

	start := time.Now()
	attempts := 0

	err := retry.Do(
		func() error {
			attempts++
			increment, err := p.drafter.Invoke(ctx, p.request(history, text, docType))
			if err != nil {
				ctxzap.Warn(ctx, "continuation call failed",
					zap.Int("attempt", attempts),
					zap.Error(err),
				)
				return err
			}

			if increment = strings.TrimSpace(increment); increment != "" {
				text = strings.TrimRight(text, "\n ") + "\n\n" + increment
			}
			if completeness.IsComplete(text) {
				return nil
			}
			return errIncomplete
		},
		p.policy.Options(ctx)...,
	)

	complete := err == nil
	ctxzap.Info(ctx, "continuation finished",
		zap.Int("attempts", attempts),
		zap.Bool("complete", complete),
		zap.Int("length", len(text)),
		zap.Duration("duration", time.Since(start)),
	)

	return Result{Text: text, Attempts: attempts, Complete: complete}
}

func (p *Protocol) request(history []entity.Message, text string, docType entity.DocType) *entity.DraftRequest {
	messages := make([]entity.Message, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages,
		entity.Message{Role: entity.RoleAssistant, Content: text},
		entity.Message{Role: entity.RoleUser, Content: Instruction(text)},
	)

	return &entity.DraftRequest{
		Messages: messages,
		Mode:     entity.DraftModeDocument,
		DocType:  docType,
	}
}

// Instruction builds the follow-up prompt for a truncated draft.
func Instruction(text string) string {
	var b strings.Builder
	b.WriteString("Документ оборвался. Продолжи его с того места, где он закончился. ")
	b.WriteString("Не повторяй уже написанный текст и заголовки.")

	if missing := completeness.MissingSections(text); len(missing) > 0 {
		fmt.Fprintf(&b, " Добавь недостающие разделы: %s.", strings.Join(missing, ", "))
	}
	if strings.Count(text, "```")%2 == 1 {
		b.WriteString(" Сначала закрой незавершенный блок кода.")
	}
	b.WriteString(" В документе должна быть ровно одна диаграмма процесса в блоке ```mermaid (flowchart).")

	return b.String()
}
