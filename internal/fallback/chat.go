package fallback

import (
	"strings"

	"github.com/futig/ba-assistant/internal/pkg/textnorm"
)

type topic struct {
	keys   []string
	answer string
}

// topics are checked in order; keys are folded prefixes of words or phrases.
var topics = []topic{
	{
		keys: []string{"brd", "бизнес треб", "business requirement"},
		answer: "BRD (Business Requirements Document) фиксирует цели инициативы, участников, " +
			"входы и выходы процесса, сам процесс, KPI и SLA, а также риски и контроли. " +
			"Опишите процесс, и я соберу документ по этим разделам.",
	},
	{
		keys: []string{"use case", "юзкеис", "сценари", "прецедент"},
		answer: "Use case описывает взаимодействие актора с системой: основной актор, предусловия, " +
			"основной поток шагов, альтернативные ветки и постусловия.",
	},
	{
		keys: []string{"user stor", "пользовательск истори", "истори"},
		answer: "User story записывается в формате «Как <роль>, я хочу <действие>, чтобы <ценность>» " +
			"и дополняется критериями приемки.",
	},
	{
		keys: []string{"kpi", "метрик", "показател"},
		answer: "KPI измеряют результат процесса: например, время обработки заявки, долю автоматических " +
			"операций или процент ошибок. Для каждого KPI задайте целевое значение и период измерения.",
	},
	{
		keys: []string{"sla", "уровень сервиса", "уровня сервиса"},
		answer: "SLA задает обязательства по сроку и качеству: время реакции, время обработки, доступность. " +
			"Укажите значения в минутах, часах или процентах доступности.",
	},
	{
		keys: []string{"bpmn", "процесс", "диаграм", "mermaid", "flowchart"},
		answer: "Процесс удобно описать шагами: кто инициирует, какие проверки выполняются, где принимается " +
			"решение и чем процесс заканчивается. По шагам я построю диаграмму процесса.",
	},
	{
		keys: []string{"риск", "контрол", "risk", "control"},
		answer: "Для каждого риска укажите вероятность, влияние и контрольную процедуру, которая его снижает, " +
			"например двойной контроль или сверку реестров.",
	},
}

const genericReply = "Сейчас сервис генерации недоступен, но я могу собрать черновик из уже известных данных. " +
	"Опишите цели, участников, входы и выходы, KPI и SLA, риски и контроли, " +
	"или попросите «сформируй BRD»."

// BuildLocalChatReply answers from a fixed topic table when the drafting
// service is unavailable.
func BuildLocalChatReply(userText string) string {
	joined := " " + strings.Join(textnorm.Tokens(userText), " ")
	for _, t := range topics {
		for _, k := range t.keys {
			if strings.Contains(joined, " "+k) {
				return t.answer
			}
		}
	}
	return genericReply
}
