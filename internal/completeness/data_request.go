package completeness

import (
	"fmt"
	"strings"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/knowledge"
)

const maxShownItems = 3

// BuildDataRequest composes a message listing what is already known and what
// still has to be provided. A section counts as known when the document has a
// heading for it or the knowledge base (including facts extracted from
// userText) holds items of its categories. Returns an empty string when
// nothing is missing.
func BuildDataRequest(userText, markdown string, kb entity.KnowledgeBase) string {
	combined := knowledge.Merge(kb, knowledge.Extract(userText))
	doc := document.Parse(markdown)
	presence := sectionPresence(doc)
	hasFlow := countFlowcharts(doc) > 0

	var (
		known   []string
		missing []Section
	)
	for i, s := range RequiredSections {
		items := sectionItems(s, combined)
		switch {
		case len(items) > 0:
			known = append(known, fmt.Sprintf("- **%s**: %s", s.Name, summarize(items)))
		case presence[i].Present || (s.Categories == nil && hasFlow):
			known = append(known, fmt.Sprintf("- **%s**: есть в документе", s.Name))
		default:
			missing = append(missing, s)
		}
	}

	if len(missing) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Чтобы подготовить полный документ, не хватает части данных.\n\n")
	if len(known) > 0 {
		b.WriteString("**Уже есть:**\n")
		b.WriteString(strings.Join(known, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("**Нужно уточнить:**\n")
	for i, s := range missing {
		fmt.Fprintf(&b, "%d. **%s**: %s Например: %s\n", i+1, s.Name, s.Prompt, s.Example)
	}
	b.WriteString("\nМожно ответить одним сообщением в формате «Роли: ...; KPI: ...» ")
	b.WriteString("или написать «сделай по имеющимся данным».")

	return b.String()
}

// IsDataRequest reports whether an assistant message was built by BuildDataRequest.
func IsDataRequest(text string) bool {
	return strings.Contains(text, "**Нужно уточнить:**")
}

func sectionItems(s Section, kb entity.KnowledgeBase) []string {
	var items []string
	for _, c := range s.Categories {
		items = append(items, kb.Items(c)...)
	}
	return items
}

func summarize(items []string) string {
	if len(items) <= maxShownItems {
		return strings.Join(items, "; ")
	}
	return fmt.Sprintf("%s и еще %d", strings.Join(items[:maxShownItems], "; "), len(items)-maxShownItems)
}
