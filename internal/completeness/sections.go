package completeness

import (
	"strings"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/pkg/textnorm"
)

// Section is one of the required parts of a finished document.
type Section struct {
	Name       string
	Keywords   []string
	Categories []entity.Category
	Prompt     string
	Example    string
}

// RequiredSections in canonical order.
var RequiredSections = []Section{
	{
		Name:       "Цели",
		Keywords:   []string{"цел", "goal", "objective"},
		Categories: []entity.Category{entity.CategoryGoals},
		Prompt:     "Какие цели у процесса или инициативы?",
		Example:    "Сократить время обработки заявки до 2 минут",
	},
	{
		Name:       "Роли и участники",
		Keywords:   []string{"рол", "участник", "актор", "стеикхолдер", "role", "actor", "stakeholder", "participant"},
		Categories: []entity.Category{entity.CategoryRoles},
		Prompt:     "Кто участвует в процессе?",
		Example:    "Оператор, Клиент, Система",
	},
	{
		Name:       "Входы и выходы",
		Keywords:   []string{"вход", "выход", "input", "output"},
		Categories: []entity.Category{entity.CategoryInputs, entity.CategoryOutputs},
		Prompt:     "Какие данные поступают на вход и что получается на выходе?",
		Example:    "Входы: заявка клиента; Выходы: исполненный платеж",
	},
	{
		Name:     "Описание процесса",
		Keywords: []string{"процесс", "шаг", "сценари", "process", "flow", "step"},
		Prompt:   "Опишите ключевые шаги процесса",
		Example:  "Получение заявки, Проверка данных, Принятие решения, Уведомление",
	},
	{
		Name:       "KPI и SLA",
		Keywords:   []string{"kpi", "sla", "метрик", "показател", "metric"},
		Categories: []entity.Category{entity.CategoryKPI, entity.CategorySLA},
		Prompt:     "Задайте метрики успеха и целевые сроки",
		Example:    "Время обработки < 2 мин, Ошибок < 1%",
	},
	{
		Name:       "Риски и контроли",
		Keywords:   []string{"риск", "контрол", "risk", "control"},
		Categories: []entity.Category{entity.CategoryRisks, entity.CategoryControls},
		Prompt:     "Какие риски и контрольные процедуры нужно учесть?",
		Example:    "Риск двойного списания, Двойной контроль платежей",
	},
}

// headings returns the folded heading texts of a document. The leading
// level-one heading is the title and is skipped.
func headings(doc *document.Document) [][]string {
	var out [][]string
	titleSeen := false
	for _, b := range doc.Blocks {
		var text string
		switch v := b.(type) {
		case document.Heading:
			if v.Level == 1 && !titleSeen {
				titleSeen = true
				continue
			}
			text = v.Text
		case document.Paragraph:
			if v.Preformatted || !document.IsBold(v.Text) {
				continue
			}
			text = v.Text
		default:
			continue
		}
		out = append(out, textnorm.Tokens(document.PlainText(text)))
	}
	return out
}

func (s Section) matches(tokens []string) bool {
	for _, t := range tokens {
		for _, k := range s.Keywords {
			if strings.HasPrefix(t, k) {
				return true
			}
		}
	}
	return false
}

// sectionPresence reports for every required section whether one of the
// document headings names it.
func sectionPresence(doc *document.Document) []entity.SectionStatus {
	hs := headings(doc)
	out := make([]entity.SectionStatus, 0, len(RequiredSections))
	for _, s := range RequiredSections {
		present := false
		for _, h := range hs {
			if s.matches(h) {
				present = true
				break
			}
		}
		out = append(out, entity.SectionStatus{Name: s.Name, Present: present})
	}
	return out
}

func countPresent(statuses []entity.SectionStatus) int {
	n := 0
	for _, s := range statuses {
		if s.Present {
			n++
		}
	}
	return n
}

// MissingSections lists the names of required sections absent from the document, in canonical order.
func MissingSections(markdown string) []string {
	var missing []string
	for _, s := range sectionPresence(document.Parse(markdown)) {
		if !s.Present {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
