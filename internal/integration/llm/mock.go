package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockDocument = `# Бизнес требования: %s

## Цели
- %s
- Сократить время обработки заявки до 15 минут

## Роли и участники
| Роль | Ответственность |
|---|---|
| Клиент | Подает заявку |
| Оператор | Проверяет данные |
| Система | Формирует платежное поручение |

## Входы и выходы
| Входы | Выходы |
|---|---|
| Заявка клиента | Исполненный платеж |
| Реестр платежей | Уведомление клиенту |

## Описание процесса
` + "```mermaid" + `
flowchart LR
  A([Заявка]) --> B[Проверка данных]
  B --> C{Данные корректны?}
  C -- Да --> D[Исполнение]
  C -- Нет --> E[Возврат клиенту]
  D --> F([Уведомление])
` + "```" + `

## KPI и SLA
| Метрика | Целевое значение |
|---|---|
| Время обработки | 15 минут |
| Доля ошибок | менее 1%% |

## Риски и контроли
- Риск: ошибки ввода реквизитов
- Контроль: двойная проверка оператором
`

// MockConnector answers without a remote service.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Invoke(ctx context.Context, req *entity.DraftRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] invoking drafting service",
		zap.String("mode", string(req.Mode)),
		zap.String("doc_type", string(req.DocType)),
	)

	topic := lastUserText(req.Messages)
	if req.Mode == entity.DraftModeChat {
		return fmt.Sprintf("Понял вопрос: «%s». Опишите цели, участников и шаги процесса, и я подготовлю документ.", topic), nil
	}
	return fmt.Sprintf(mockDocument, topic, topic), nil
}

func lastUserText(messages []entity.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == entity.RoleUser {
			text := strings.Join(strings.Fields(messages[i].Content), " ")
			if r := []rune(text); len(r) > 80 {
				text = string(r[:80])
			}
			return text
		}
	}
	return "новый процесс"
}
