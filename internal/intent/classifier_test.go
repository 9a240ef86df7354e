package intent

import (
	"testing"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
)

const priorDocument = "# BRD\n\n## Цели\n- Ускорить платежи\n\n## Роли и участники\n- Оператор"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		turn     Turn
		fallback entity.Intent
		want     entity.Intent
	}{
		{
			name: "payments document request",
			turn: Turn{Text: "Сформируй BRD по процессу обработки платежей"},
			want: entity.IntentDocumentRequest,
		},
		{
			name: "which ones after data request",
			turn: Turn{Text: "какие именно?", PriorAskedForData: true},
			want: entity.IntentMissingDataQuery,
		},
		{
			name: "which ones without data request is a question",
			turn: Turn{Text: "какие именно?"},
			want: entity.IntentChatQuestion,
		},
		{
			name: "explicit missing data phrase",
			turn: Turn{Text: "Чего не хватает для документа?"},
			want: entity.IntentMissingDataQuery,
		},
		{
			name: "need and document with typo",
			turn: Turn{Text: "неоходимо ли что-то еще для докумнта?"},
			want: entity.IntentMissingDataQuery,
		},
		{
			name: "need and document without question mark",
			turn: Turn{Text: "нужен документ"},
			want: entity.IntentMissingDataQuery,
		},
		{
			name: "need to create a document is a request",
			turn: Turn{Text: "нужно создать документ по платежам"},
			want: entity.IntentDocumentRequest,
		},
		{
			name: "force proceed",
			turn: Turn{Text: "Сделай документ по имеющимся данным, не спрашивай больше"},
			want: entity.IntentForceProceed,
		},
		{
			name: "force proceed in english",
			turn: Turn{Text: "Just generate it, use what you have"},
			want: entity.IntentForceProceed,
		},
		{
			name: "negated creation verb",
			turn: Turn{Text: "Не создавай документ, объясни что такое SLA"},
			want: entity.IntentChatQuestion,
		},
		{
			name:     "dont with apostrophe",
			turn:     Turn{Text: "don't create anything yet"},
			fallback: entity.IntentChatQuestion,
			want:     entity.IntentChatQuestion,
		},
		{
			name: "continue after document",
			turn: Turn{Text: "продолжай", PriorAssistant: priorDocument},
			want: entity.IntentDocumentRequest,
		},
		{
			name:     "continue without document falls back",
			turn:     Turn{Text: "продолжай", PriorAssistant: "Здравствуйте!"},
			fallback: entity.IntentChatQuestion,
			want:     entity.IntentChatQuestion,
		},
		{
			name: "latin look-alike letters",
			turn: Turn{Text: "Cоздай oтчет"},
			want: entity.IntentDocumentRequest,
		},
		{
			name:     "plain statement uses fallback",
			turn:     Turn{Text: "Роли: оператор, клиент"},
			fallback: entity.IntentDocumentRequest,
			want:     entity.IntentDocumentRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.turn, tt.fallback))
		})
	}
}

func TestClassifyIsCaseAndDiacriticInsensitive(t *testing.T) {
	a := Classify(Turn{Text: "Создай отчёт"}, entity.IntentChatQuestion)
	b := Classify(Turn{Text: "создай отчет"}, entity.IntentChatQuestion)
	c := Classify(Turn{Text: "СОЗДАЙ ОТЧЕТ"}, entity.IntentChatQuestion)

	assert.Equal(t, entity.IntentDocumentRequest, a)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestLooksLikeDocument(t *testing.T) {
	assert.True(t, LooksLikeDocument(priorDocument))
	assert.True(t, LooksLikeDocument("```mermaid\nflowchart LR\nA-->B\n```"))
	assert.True(t, LooksLikeDocument("Здесь описаны KPI и SLA процесса"))
	assert.False(t, LooksLikeDocument("Добрый день, чем помочь?"))
	assert.False(t, LooksLikeDocument(""))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"документ", "докумнт", 1},
		{"отчет", "отчёт", 1},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, Levenshtein(tt.a, tt.b), Levenshtein(tt.b, tt.a), "symmetry %q vs %q", tt.a, tt.b)
	}
}
