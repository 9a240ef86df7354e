package llm

import "github.com/futig/ba-assistant/internal/entity"

const systemPrompt = `Ты опытный бизнес-аналитик банка. Помогаешь сотрудникам собирать и структурировать бизнес-требования, анализировать процессы и готовить аналитические артефакты.

При работе с пользователем:
- задавай уточняющие вопросы, когда не хватает контекста;
- структурируй информацию четко и последовательно;
- используй терминологию бизнес-анализа;
- предлагай конкретные решения.

Отвечай на русском языке.`

const documentRules = `Требования к документу:
- разделы оформляй заголовками markdown: Цели, Роли и участники, Входы и выходы, Описание процесса, KPI и SLA, Риски и контроли;
- таблицы оформляй в формате GFM;
- добавь ровно одну диаграмму процесса в блоке ` + "```mermaid" + ` (flowchart LR);
- не оставляй пустых ячеек и заглушек вроде TBD или N/A.
Возвращай только документ без лишнего текста.`

var docTypePrompts = map[entity.DocType]string{
	entity.DocTypeBRD: "Сформируй документ бизнес-требований (BRD): заголовок, цель, описание, scope, " +
		"заинтересованные стороны, бизнес-правила, нефункциональные требования, ограничения, риски, KPI.",
	entity.DocTypeUseCase: "Сформируй Use Case документ: акторы, варианты использования, детальные сценарии " +
		"(основной и альтернативные потоки), предусловия и постусловия, исключения.",
	entity.DocTypeUserStories: "Сформируй EPIC и набор User Stories. Для каждой истории добавь критерии приемки " +
		"в формате Given/When/Then, приоритет и допущения.",
	entity.DocTypeProcess: "Сформируй документ описания процесса: назначение, границы, роли, входы и выходы, " +
		"шаги процесса, бизнес-правила.",
	entity.DocTypeKPI: "Сформируй документ KPI и метрик: цели, карта метрик (определение, формула, " +
		"периодичность, источники данных), пороги и алерты.",
	entity.DocTypeCombined: "Сформируй комбинированный документ: ключевые разделы BRD, 2-3 Use Case, " +
		"3-5 User Stories, шаги процесса, KPI.",
}

// SystemPrompt assembles the instruction sent ahead of the conversation.
func SystemPrompt(mode entity.DraftMode, docType entity.DocType) string {
	if mode == entity.DraftModeChat {
		return systemPrompt
	}
	prompt, ok := docTypePrompts[docType]
	if !ok {
		prompt = docTypePrompts[entity.DocTypeCombined]
	}
	return systemPrompt + "\n\n" + prompt + "\n\n" + documentRules
}
