package completeness

import (
	"strings"
	"testing"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDoc = "# BRD: Обработка платежей\n\n" +
	"## Цели\n- Сократить время обработки\n\n" +
	"## Роли и участники\n- Операционист\n- Контролер\n\n" +
	"## Входы и выходы\n| Входы | Выходы |\n|---|---|\n| Платежное поручение | Исполненный платеж |\n\n" +
	"## Описание процесса\n```mermaid\nflowchart TD\n  A[Заявка] --> B[Проверка]\n```\n\n" +
	"## KPI и SLA\n- Время обработки < 15 минут\n\n" +
	"## Риски и контроли\n- Двойной контроль платежей\n"

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{name: "complete", doc: fullDoc, want: true},
		{name: "odd fences", doc: strings.Replace(fullDoc, "B[Проверка]\n```", "B[Проверка]\n", 1), want: false},
		{name: "truncated with ellipsis", doc: fullDoc + "\nДалее опишем...", want: false},
		{name: "truncated with phrase", doc: fullDoc + "\nПродолжение следует", want: false},
		{name: "no diagram", doc: strings.Replace(fullDoc, "```mermaid\nflowchart TD\n  A[Заявка] --> B[Проверка]\n```\n", "", 1), want: false},
		{name: "two diagrams", doc: fullDoc + "\n```mermaid\ngraph LR\n  X --> Y\n```\n", want: false},
		{name: "four sections", doc: strings.Split(fullDoc, "## KPI и SLA")[0], want: false},
		{name: "empty", doc: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComplete(tt.doc))
		})
	}
}

func TestIsCompleteIgnoresNonFlowDiagrams(t *testing.T) {
	doc := fullDoc + "\n```mermaid\npie title Доли\n  \"A\" : 40\n  \"B\" : 60\n```\n"
	assert.True(t, IsComplete(doc))
}

func TestNeedsMoreData(t *testing.T) {
	fiveSections := strings.Split(fullDoc, "## Риски и контроли")[0]

	tests := []struct {
		name string
		doc  string
		th   Thresholds
		want bool
	}{
		{
			name: "two of six sections",
			doc:  "# Черновик\n\n## Цели\n- Ускорить\n\n## Роли\n- Оператор\n",
			th:   DraftThresholds(),
			want: true,
		},
		{
			name: "five of six with filled table",
			doc:  fiveSections,
			th:   DraftThresholds(),
			want: false,
		},
		{
			name: "placeholder token",
			doc:  fullDoc + "\nБюджет: TBD\n",
			th:   DraftThresholds(),
			want: true,
		},
		{
			name: "header only table",
			doc:  fullDoc + "\n| KPI | Значение |\n|---|---|\n",
			th:   DraftThresholds(),
			want: true,
		},
		{
			name: "half empty table under loose threshold",
			doc:  fullDoc + "\n| KPI | Значение |\n|---|---|\n| Время | |\n",
			th:   DraftThresholds(),
			want: false,
		},
		{
			name: "half empty table under strict threshold",
			doc:  fullDoc + "\n| KPI | Значение |\n|---|---|\n| Время | |\n",
			th:   Thresholds{MinSections: 3, BadTableRatio: 0.4},
			want: true,
		},
		{
			name: "two sections pass the fallback profile",
			doc:  "## Цели\n- Ускорить\n\n## Роли\n- Оператор\n",
			th:   FallbackThresholds(),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsMoreData(tt.doc, tt.th))
		})
	}
}

func TestEvaluateDecision(t *testing.T) {
	assert.Equal(t, entity.DecisionComplete, Evaluate(fullDoc, DraftThresholds()).Decision)
	assert.Equal(t, entity.DecisionNeedsContinuation, Evaluate("# T\n\n## Цели\n- a", DraftThresholds()).Decision)
	assert.Equal(t, entity.DecisionNeedsMoreData, Evaluate(fullDoc+"\nСрок: N/A\n", DraftThresholds()).Decision)

	r := Evaluate(fullDoc, DraftThresholds())
	assert.Equal(t, 6, r.PresentCount)
	assert.Equal(t, 1, r.DiagramCount)
	assert.True(t, r.FencesBalanced)
	assert.Zero(t, r.BadTableRatio)
}

func TestMissingSections(t *testing.T) {
	doc := "# Отчет\n\n## Цели\n- a\n\n**Риски и контроли**\n- b\n"

	assert.Equal(t, []string{"Роли и участники", "Входы и выходы", "Описание процесса", "KPI и SLA"}, MissingSections(doc))
	assert.Empty(t, MissingSections(fullDoc))
}

func TestBuildDataRequest(t *testing.T) {
	kb := entity.KnowledgeBase{Goals: []string{"Ускорить обработку"}}

	msg := BuildDataRequest("роли - оператор, клиент", "", kb)

	require.NotEmpty(t, msg)
	assert.True(t, IsDataRequest(msg))
	assert.Contains(t, msg, "**Уже есть:**")
	assert.Contains(t, msg, "**Цели**: Ускорить обработку")
	assert.Contains(t, msg, "**Роли и участники**: оператор; клиент")
	assert.Contains(t, msg, "Получение заявки, Проверка данных")
	assert.NotContains(t, msg, "Оператор, Клиент, Система")
}

func TestBuildDataRequestNothingMissing(t *testing.T) {
	assert.Empty(t, BuildDataRequest("", fullDoc, entity.KnowledgeBase{}))
}
