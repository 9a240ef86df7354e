package fallback

import (
	"fmt"
	"strings"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/knowledge"
)

const (
	localTitle      = "Бизнес требования (черновик)"
	maxFlowNodes    = 5
	maxUserStories  = 5
	defaultActor    = "Пользователь"
	defaultGoalNode = "Процесс"
	emptyCell       = "—"
)

// BuildLocalDoc assembles a document purely from the knowledge base merged
// with facts found in userText. Returns an empty string when no category
// holds anything.
func BuildLocalDoc(userText string, kb entity.KnowledgeBase) string {
	data := knowledge.Merge(kb, knowledge.Extract(userText))
	if data.IsEmpty() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", localTitle)
	b.WriteString("_Документ собран из уже известных данных без обращения к сервису генерации._\n\n")

	bullets(&b, "## Цели", data.Goals)
	bullets(&b, "## Роли и участники", data.Roles)

	if len(data.Inputs) > 0 || len(data.Outputs) > 0 {
		b.WriteString("## Входы и выходы\n\n")
		rows := max(len(data.Inputs), len(data.Outputs))
		b.WriteString("| Входы | Выходы |\n|---|---|\n")
		for i := 0; i < rows; i++ {
			fmt.Fprintf(&b, "| %s | %s |\n", cell(data.Inputs, i), cell(data.Outputs, i))
		}
		b.WriteString("\n")
	}

	if len(data.Inputs) > 0 || len(data.Outputs) > 0 || len(data.Goals) > 0 {
		b.WriteString("## Описание процесса\n\n")
		b.WriteString("```mermaid\n")
		b.WriteString(Flowchart(data))
		b.WriteString("\n```\n\n")
	}

	if len(data.KPI) > 0 || len(data.SLA) > 0 {
		b.WriteString("## KPI и SLA\n\n")
		column(&b, "KPI", data.KPI)
		column(&b, "SLA", data.SLA)
	}

	if len(data.Risks) > 0 || len(data.Controls) > 0 {
		b.WriteString("## Риски и контроли\n\n")
		bullets(&b, "### Риски", data.Risks)
		bullets(&b, "### Контроли", data.Controls)
	}

	bullets(&b, "## Допущения и ограничения", data.Assumptions)
	bullets(&b, "## User Stories", userStories(data))
	bullets(&b, "## Дополнительные сведения", data.Facts)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Flowchart links up to five inputs through one goal node to up to five outputs.
func Flowchart(data entity.KnowledgeBase) string {
	goal := defaultGoalNode
	if len(data.Goals) > 0 {
		goal = data.Goals[0]
	}

	lines := []string{"flowchart LR", fmt.Sprintf("  goal([%s])", label(goal))}
	for i, in := range limit(data.Inputs, maxFlowNodes) {
		lines = append(lines,
			fmt.Sprintf("  in%d[%s]", i, label(in)),
			fmt.Sprintf("  in%d --> goal", i),
		)
	}
	for i, out := range limit(data.Outputs, maxFlowNodes) {
		lines = append(lines,
			fmt.Sprintf("  out%d[%s]", i, label(out)),
			fmt.Sprintf("  goal --> out%d", i),
		)
	}
	return strings.Join(lines, "\n")
}

func userStories(data entity.KnowledgeBase) []string {
	actor := defaultActor
	if len(data.Roles) > 0 {
		actor = data.Roles[0]
	}

	var stories []string
	for _, g := range limit(data.Goals, maxUserStories) {
		stories = append(stories, fmt.Sprintf("Как %s, я хочу %s, чтобы достичь цели процесса", actor, lowerFirst(g)))
	}
	return stories
}

func bullets(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(heading + "\n\n")
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}
	b.WriteString("\n")
}

func column(b *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "| %s |\n|---|\n", header)
	for _, it := range items {
		fmt.Fprintf(b, "| %s |\n", escapeCell(it))
	}
	b.WriteString("\n")
}

func cell(items []string, i int) string {
	if i < len(items) {
		return escapeCell(items[i])
	}
	return emptyCell
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

var labelReplacer = strings.NewReplacer(
	"[", " ", "]", " ", "{", " ", "}", " ", "(", " ", ")", " ",
	`"`, " ", "'", " ", "|", " ", "<", " ", ">", " ", ";", ",",
)

func label(s string) string {
	return strings.Join(strings.Fields(labelReplacer.Replace(s)), " ")
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) > 1 && !isUpperWord(r) {
		r[0] = []rune(strings.ToLower(string(r[0])))[0]
	}
	return string(r)
}

// isUpperWord keeps abbreviations such as "SLA" intact.
func isUpperWord(r []rune) bool {
	return len(r) > 1 && strings.ToUpper(string(r[:2])) == string(r[:2])
}
