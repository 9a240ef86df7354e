package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/futig/ba-assistant/internal/entity"
)

const (
	MsgWelcome = `👋 Привет! Я помогу описать бизнес-процесс и собрать по нему документ: BRD, use case, user stories, KPI и SLA.

Рассказывай о процессе своими словами: цели, участники, входы и выходы, сроки, риски. Когда будешь готов, попроси «сформируй BRD» или нажми кнопку ниже.`

	MsgHelp = `Команды:
/start — начать или продолжить работу
/reset — забыть всё, что я узнал, и начать заново
/knowledge — показать собранные данные
/help — эта справка

Готовый документ приходит текстом и файлами HTML, DOCX, PDF и XLSX.`

	MsgReset          = `🧹 Начинаем с чистого листа. Расскажи о процессе.`
	MsgKnowledgeEmpty = `Пока я ничего не знаю о процессе. Расскажи о целях, участниках и шагах.`
	MsgAttachments    = `📎 Файлы документа:`
	MsgPublished      = `✅ Страница опубликована: %s`
	MsgPublishFailed  = `⚠️ Опубликовать не удалось: %s`
	MsgUnknownCommand = `❌ Неизвестная команда. Список команд: /help`
	MsgUnsupported    = `Я понимаю только текстовые сообщения.`

	ErrGeneric         = `❌ Произошла ошибка. Попробуйте ещё раз или нажмите /start`
	ErrSessionNotFound = `❌ Сессия не найдена. Начните новую с /start`
	ErrNetworkIssue    = `❌ Проблема с соединением. Попробуй чуть позже.`
	ErrInvalidInput    = `❌ Не получилось разобрать сообщение. Попробуй по-другому.`
	ErrTimeout         = `❌ Операция заняла слишком много времени. Попробуй ещё раз.`
	ErrFileUnavailable = `⚠️ Файл %s не удалось отправить.`
	ErrRateLimited     = `⚠️ Слишком много запросов. Пожалуйста, подождите немного.`
	ErrRateLimitedHard = `🛑 Вы отправляете запросы слишком часто. Пожалуйста, подождите минуту.`
)

var categoryTitles = map[entity.Category]string{
	entity.CategoryGoals:       "Цели",
	entity.CategoryRoles:       "Участники",
	entity.CategoryInputs:      "Входы",
	entity.CategoryOutputs:     "Выходы",
	entity.CategorySLA:         "SLA",
	entity.CategoryKPI:         "KPI",
	entity.CategoryRisks:       "Риски",
	entity.CategoryControls:    "Контроли",
	entity.CategoryAssumptions: "Допущения",
}

// RenderKnowledge lists the non-empty categories of kb.
func RenderKnowledge(kb entity.KnowledgeBase) string {
	if kb.IsEmpty() {
		return MsgKnowledgeEmpty
	}

	var b strings.Builder
	b.WriteString("📋 Что я знаю о процессе:")
	for _, c := range entity.Categories {
		items := kb.Items(c)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n\n%s:", categoryTitles[c])
		for _, item := range items {
			b.WriteString("\n• " + item)
		}
	}
	return b.String()
}

func RenderPublication(res *entity.PublishResult) string {
	if res.Published {
		return fmt.Sprintf(MsgPublished, res.URL)
	}
	return fmt.Sprintf(MsgPublishFailed, res.Error)
}

// ClassifyError maps an error to a user-facing message.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ErrGeneric
	case errors.Is(err, entity.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, entity.ErrEmptyTurn), errors.Is(err, entity.ErrInvalidParameter):
		return ErrInvalidInput
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}
	return ErrGeneric
}
