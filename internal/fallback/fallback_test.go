package fallback

import (
	"strings"
	"testing"

	"github.com/futig/ba-assistant/internal/completeness"
	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentsKB() entity.KnowledgeBase {
	return entity.KnowledgeBase{
		Goals:    []string{"Ускорить обработку платежей"},
		Roles:    []string{"Оператор", "Клиент"},
		Inputs:   []string{"Заявка", "Реестр", "Выписка"},
		Outputs:  []string{"Платежное поручение"},
		KPI:      []string{"Время обработки < 2 мин"},
		SLA:      []string{"15 минут"},
		Risks:    []string{"Ошибки ввода"},
		Controls: []string{"Двойной контроль"},
	}
}

func TestBuildLocalDocEmptyKnowledge(t *testing.T) {
	assert.Empty(t, BuildLocalDoc("", entity.KnowledgeBase{}))
	assert.Empty(t, BuildLocalDoc("", entity.KnowledgeBase{Facts: []string{"Система: АБС"}}))
}

func TestBuildLocalDocSections(t *testing.T) {
	md := BuildLocalDoc("", paymentsKB())
	require.NotEmpty(t, md)

	for _, heading := range []string{
		"## Цели", "## Роли и участники", "## Входы и выходы", "## Описание процесса",
		"## KPI и SLA", "## Риски и контроли", "## User Stories",
	} {
		assert.Contains(t, md, heading)
	}
	assert.Contains(t, md, "- Ускорить обработку платежей")
	assert.Contains(t, md, "| Заявка | Платежное поручение |")
	assert.Contains(t, md, "| Реестр | — |")
	assert.Contains(t, md, "| KPI |\n|---|\n| Время обработки < 2 мин |")
	assert.Contains(t, md, "Как Оператор, я хочу ускорить обработку платежей")
	assert.NotContains(t, md, "## Допущения")
}

func TestBuildLocalDocIsComplete(t *testing.T) {
	md := BuildLocalDoc("", paymentsKB())

	assert.True(t, completeness.IsComplete(md))

	doc := document.Parse(md)
	require.Len(t, doc.Diagrams(), 1)
	assert.True(t, document.IsFlowchart(doc.Diagrams()[0].Source))
	assert.Len(t, doc.Tables(), 3)
}

func TestFlowchartLimitsNodes(t *testing.T) {
	kb := entity.KnowledgeBase{
		Inputs:  []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"},
		Outputs: []string{"b [1]", `b "2"`},
	}

	chart := Flowchart(kb)

	assert.True(t, strings.HasPrefix(chart, "flowchart LR\n  goal([Процесс])"))
	assert.Equal(t, 5, strings.Count(chart, "--> goal"))
	assert.Equal(t, 2, strings.Count(chart, "goal --> out"))
	assert.Contains(t, chart, "out0[b 1]")
	assert.Contains(t, chart, "out1[b 2]")
	assert.NotContains(t, chart, "a6")
}

func TestBuildLocalChatReply(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"brd", "Что такое BRD?", "Business Requirements Document"},
		{"kpi", "какие метрики выбрать", "KPI измеряют"},
		{"sla", "Что такое SLA", "SLA задает"},
		{"stories", "как писать user stories", "User story"},
		{"risks", "Какие риски учесть?", "Для каждого риска"},
		{"generic", "привет", "сервис генерации недоступен"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, BuildLocalChatReply(tt.text), tt.want)
		})
	}
}
