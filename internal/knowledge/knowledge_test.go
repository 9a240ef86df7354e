package knowledge

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/futig/ba-assistant/internal/entity"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInlineSegments(t *testing.T) {
	kb := Extract("цели - ускорить обработку; роли - оператор, клиент")

	assert.Equal(t, []string{"ускорить обработку"}, kb.Goals)
	assert.Equal(t, []string{"оператор", "клиент"}, kb.Roles)
	assert.Empty(t, kb.Risks)
}

func TestExtractLabelAfterRequest(t *testing.T) {
	kb := Extract("Создай документ про платежи: цели - ускорить обработку; роли - оператор, клиент")

	assert.Equal(t, []string{"ускорить обработку"}, kb.Goals)
	assert.Equal(t, []string{"оператор", "клиент"}, kb.Roles)
}

func TestExtractSections(t *testing.T) {
	text := `# Бизнес требования

## Цели
- Сократить время обработки платежей
- Снизить количество ошибок

## Роли и участники
1. Операционист
2. Контролер

**Риски и контроли**
- Риск двойного списания
- Двойной контроль платежей

` + "```mermaid\nflowchart TD\n  Цели: не должно попасть\n```\n" + `
## Описание процесса
Система: АБС`

	kb := Extract(text)

	want := entity.KnowledgeBase{
		Goals:    []string{"Сократить время обработки платежей", "Снизить количество ошибок"},
		Roles:    []string{"Операционист", "Контролер"},
		Risks:    []string{"Риск двойного списания"},
		Controls: []string{"Двойной контроль платежей"},
		Facts:    []string{"Система: АБС"},
	}
	if diff := cmp.Diff(want, kb); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTableColumns(t *testing.T) {
	text := `## Входы и выходы
| Входы | Выходы |
|---|---|
| Платежное поручение | Исполненный платеж |
| Реестр | N/A |`

	kb := Extract(text)

	assert.Equal(t, []string{"Платежное поручение", "Реестр"}, kb.Inputs)
	assert.Equal(t, []string{"Исполненный платеж"}, kb.Outputs)
}

func TestExtractBareLabelHeading(t *testing.T) {
	kb := Extract("KPI:\nДоля автоматических платежей 80%\n\nSLA:\n- 15 минут на заявку")

	assert.Equal(t, []string{"Доля автоматических платежей 80%"}, kb.KPI)
	assert.Equal(t, []string{"15 минут на заявку"}, kb.SLA)
}

func TestExtractArbitraryInput(t *testing.T) {
	inputs := []string{"", "|||", "```", "## ", ":::", "- \n- \n", "\x00\xff", "цели:"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Extract(in) }, "input %q", in)
	}

	kb := Extract("просто текст без фактов")
	assert.True(t, kb.IsEmpty())
	assert.Empty(t, kb.Facts)
}

func TestMergeDeduplicatesInFirstSeenOrder(t *testing.T) {
	base := entity.KnowledgeBase{Goals: []string{"Ускорить обработку", "Снизить ошибки"}}
	delta := entity.KnowledgeBase{Goals: []string{"  ускорить   ОБРАБОТКУ ", "Повысить прозрачность", ""}}

	merged := Merge(base, delta)

	assert.Equal(t, []string{"Ускорить обработку", "Снизить ошибки", "Повысить прозрачность"}, merged.Goals)
}

func TestMergeIsIdempotent(t *testing.T) {
	a := entity.KnowledgeBase{
		Roles: []string{"Оператор", "Клиент"},
		Facts: []string{"Система: АБС"},
	}
	b := entity.KnowledgeBase{
		Roles: []string{"клиент", "Система"},
		KPI:   []string{"Время обработки"},
	}

	once := Merge(a, b)
	twice := Merge(once, b)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Merge is not idempotent (-once +twice):\n%s", diff)
	}
	assert.Len(t, Merge(b, a).Roles, len(once.Roles))
}

func TestMergeClampsCategory(t *testing.T) {
	var base entity.KnowledgeBase
	for i := 0; i < MaxItems+50; i++ {
		base.Risks = append(base.Risks, fmt.Sprintf("риск %d", i))
	}

	merged := Merge(base, entity.KnowledgeBase{Risks: []string{"новый риск"}})

	require.Len(t, merged.Risks, MaxItems)
	assert.Equal(t, "риск 0", merged.Risks[0])
	assert.NotContains(t, merged.Risks, "новый риск")
}

type memoryKV struct {
	data map[string][]byte
	err  error
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := &memoryKV{data: map[string][]byte{}}
	store := NewStore(kv)

	kb := entity.KnowledgeBase{Goals: []string{"Ускорить обработку"}, SLA: []string{"15 минут"}}
	require.NoError(t, store.Save(ctx, "s1", kb))
	require.Contains(t, kv.data, "kb:s1")

	loaded := store.Load(ctx, "s1")
	assert.Equal(t, kb.Goals, loaded.Goals)
	assert.Equal(t, kb.SLA, loaded.SLA)
}

func TestStoreLoadDegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		kv   *memoryKV
	}{
		{name: "missing", kv: &memoryKV{data: map[string][]byte{}}},
		{name: "corrupted", kv: &memoryKV{data: map[string][]byte{"kb:s1": []byte("{not json")}}},
		{name: "wrong shape", kv: &memoryKV{data: map[string][]byte{"kb:s1": []byte(`{"goals": 5}`)}}},
		{name: "read error", kv: &memoryKV{err: errors.New("boom")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := NewStore(tt.kv).Load(ctx, "s1")
			assert.True(t, kb.IsEmpty())
			assert.Empty(t, kb.Facts)
		})
	}
}

func TestDecodeRestoresInvariants(t *testing.T) {
	kb, err := Decode([]byte(`{"goals": ["A", " a ", ""], "roles": ["Оператор"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, kb.Goals)

	_, err = Decode([]byte(`[]`))
	assert.ErrorIs(t, err, entity.ErrInvalidKnowledgeBase)
}
