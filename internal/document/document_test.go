package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlocks(t *testing.T) {
	md := "## Цели\n" +
		"Сократить время\nобработки заявок.\n\n" +
		"| Вход | Выход |\n|---|---|\n| Заявка | Платеж |\n| Реестр |\n\n" +
		"- первый\n- второй\n  продолжение\n\n- третий\n"

	doc := Parse(md)

	want := []Block{
		Heading{Level: 2, Text: "Цели"},
		Paragraph{Text: "Сократить время обработки заявок."},
		Table{Rows: [][]string{{"Вход", "Выход"}, {"Заявка", "Платеж"}, {"Реестр", ""}}},
		List{Items: []string{"первый", "второй продолжение", "третий"}},
	}
	if diff := cmp.Diff(want, doc.Blocks); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, DefaultTitle, doc.Title)
}

func TestParseTitleAndFences(t *testing.T) {
	md := "# **BRD**: платежи\n\n" +
		"```mermaid\ngraph TD\n  A --> B\n```\n\n" +
		"```go\nfmt.Println(1)\n```\n\n" +
		"---\n\n" +
		"1. раз\n2. два\n"

	doc := Parse(md)

	assert.Equal(t, "BRD: платежи", doc.Title)
	require.Len(t, doc.Diagrams(), 1)
	assert.Equal(t, "graph TD\n  A --> B", doc.Diagrams()[0].Source)
	assert.Contains(t, doc.Blocks, Block(Paragraph{Text: "fmt.Println(1)", Preformatted: true}))
	assert.Contains(t, doc.Blocks, Block(List{Items: []string{"раз", "два"}, Ordered: true}))
	assert.Empty(t, doc.Tables())
}

func TestParseUnclosedFence(t *testing.T) {
	doc := Parse("## Процесс\n```mermaid\nflowchart LR\n  A --> B")

	require.Len(t, doc.Diagrams(), 1)
	assert.Equal(t, "flowchart LR\n  A --> B", doc.Diagrams()[0].Source)
}

func TestParseEscapedPipe(t *testing.T) {
	doc := Parse("| a | b |\n|---|---|\n| x \\| y | z |\n")

	require.Len(t, doc.Tables(), 1)
	assert.Equal(t, []string{"x | y", "z"}, doc.Tables()[0].Rows[1])
}

func TestParseEmpty(t *testing.T) {
	doc := Parse("  \n\n")
	assert.True(t, doc.IsEmpty())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "flowchart direction",
			in:   "%%{init: {}}%%\nflowchart TD\n  A --> B",
			want: "flowchart LR\n  A --> B",
		},
		{
			name: "graph without direction",
			in:   "graph\n  A --> B",
			want: "graph LR\n  A --> B",
		},
		{
			name: "pie values",
			in:   "pie title Доли\n  Онлайн : 45,5%\n  \"Офис\" : 54.5",
			want: "pie title Доли\n    \"Онлайн\" : 45.5\n    \"Офис\" : 54.5",
		},
		{
			name: "sequence untouched",
			in:   "sequenceDiagram\n  A->>B: hi",
			want: "sequenceDiagram\n  A->>B: hi",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestParsePie(t *testing.T) {
	title, slices, ok := ParsePie("pie\n  title Каналы\n  \"Онлайн\" : 60\n  Офис : 40,5")

	require.True(t, ok)
	assert.Equal(t, "Каналы", title)
	assert.Equal(t, []PieSlice{{"Онлайн", 60}, {"Офис", 40.5}}, slices)

	table := PieTable(slices)
	assert.Equal(t, []string{"Показатель", "Значение"}, table.Header())
	assert.Equal(t, [][]string{{"Онлайн", "60"}, {"Офис", "40.5"}}, table.Body())

	_, _, ok = ParsePie("flowchart LR\n A --> B")
	assert.False(t, ok)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "жирный и курсив", PlainText("**жирный** и *курсив*"))
	assert.Equal(t, "ссылка code", PlainText("[ссылка](http://x) `code`"))
	assert.Equal(t, "a b", PlainText("a<br>b"))
	assert.Equal(t, "snake_case_name", PlainText("snake_case_name"))
	assert.True(t, IsBold("**Цели**"))
	assert.False(t, IsBold("**a** и **b**"))
}
