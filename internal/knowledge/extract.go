package knowledge

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/pkg/textnorm"
)

const (
	maxSegmentDepth = 2

	wordStart = `(?:^|[^\p{L}\p{N}])`
	wordEnd   = `(?:$|[^\p{L}\p{N}])`
)

func keywords(alts string) *regexp.Regexp {
	return regexp.MustCompile(wordStart + `(?:` + alts + `)` + wordEnd)
}

// Labels recognized per category. Matched against folded text.
var categoryLabels = map[entity.Category]*regexp.Regexp{
	entity.CategoryGoals:       keywords(`цел(?:ь|и|еи|ям|ями|ях)|задач\p{L}*|назначение|goals?|objectives?|purpose`),
	entity.CategoryRoles:       keywords(`рол(?:ь|и|еи|ям)|участник\p{L}*|актор\p{L}*|стеикхолдер\p{L}*|пользовател\p{L}*|исполнител\p{L}*|roles?|actors?|participants?|stakeholders?|users?`),
	entity.CategoryInputs:      keywords(`вход\p{L}*|inputs?`),
	entity.CategoryOutputs:     keywords(`выход\p{L}*|результат\p{L}*|outputs?|deliverables?`),
	entity.CategorySLA:         keywords(`sla|срок\p{L}*|дедлаин\p{L}*|время (?:обработки|реакции|ответа)`),
	entity.CategoryKPI:         keywords(`kpi|метрик\p{L}*|показател\p{L}*|metrics?|kpis`),
	entity.CategoryRisks:       keywords(`риск\p{L}*|risks?`),
	entity.CategoryControls:    keywords(`контрол\p{L}*|controls?|проверк\p{L}*`),
	entity.CategoryAssumptions: keywords(`допущени\p{L}*|предположени\p{L}*|ограничени\p{L}*|assumptions?|constraints?`),
}

var (
	mdHeadingRe   = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.+?)\s*#*\s*$`)
	boldHeadingRe = regexp.MustCompile(`^\s*(?:\*\*|__)(.+?)(?:\*\*|__)\s*:?\s*$`)
	bareHeadingRe = regexp.MustCompile(`^\s*([^:|]{1,60}):\s*$`)
	bulletRe      = regexp.MustCompile(`^\s*(?:[-*+•]|\d{1,3}[.)])\s+(.*)$`)
	segmentRe     = regexp.MustCompile(`^\s*([^:=—–|]{1,40}?)\s*(?::|=|—|–|\s-\s|-\s)\s*(.+)$`)
	factRe        = regexp.MustCompile(`^\s*([^:|]{1,40}):\s*(.+)$`)
	fenceLineRe   = regexp.MustCompile("^\\s*(```|~~~)")
	tableSepRe    = regexp.MustCompile(`^\s*\|?\s*:?-{2,}:?\s*(\|\s*:?-{2,}:?\s*)*\|?\s*$`)
)

var placeholders = map[string]bool{
	"": true, "-": true, "—": true, "–": true, "n/a": true, "na": true, "tbd": true,
	"unknown": true, "нет данных": true, "no data": true, "?": true, "...": true, "…": true,
}

// Extract finds categorized facts in free text. It never fails: text with
// nothing recognizable yields an empty delta.
func Extract(text string) entity.KnowledgeBase {
	x := &extractor{}
	x.run(strings.ReplaceAll(text, "\r\n", "\n"))
	return Merge(entity.KnowledgeBase{}, x.delta)
}

type extractor struct {
	delta   entity.KnowledgeBase
	current []entity.Category
	header  map[int]entity.Category
	inTable bool
}

func (x *extractor) run(text string) {
	inFence := false

	for _, line := range strings.Split(text, "\n") {
		if fenceLineRe.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			x.inTable = false
			continue
		}

		if heading, ok := headingText(trimmed); ok {
			x.current = categoriesIn(heading)
			x.inTable = false
			continue
		}

		if strings.HasPrefix(trimmed, "|") {
			x.tableRow(trimmed)
			continue
		}
		x.inTable = false

		if x.inline(trimmed) {
			continue
		}

		if len(x.current) > 0 {
			x.collect(trimmed)
			continue
		}

		if m := factRe.FindStringSubmatch(trimmed); m != nil {
			x.delta.Facts = append(x.delta.Facts, clean(m[1])+": "+clean(m[2]))
		}
	}
}

func headingText(line string) (string, bool) {
	if m := mdHeadingRe.FindStringSubmatch(line); m != nil {
		return document.PlainText(m[1]), true
	}
	if m := boldHeadingRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if m := bareHeadingRe.FindStringSubmatch(line); m != nil && !bulletRe.MatchString(line) {
		return m[1], true
	}
	return "", false
}

// categoriesIn returns the categories named in a label, ordered by where they appear.
func categoriesIn(label string) []entity.Category {
	folded := textnorm.Fold(label)

	type hit struct {
		c   entity.Category
		pos int
	}
	var hits []hit
	for _, c := range entity.Categories {
		if loc := categoryLabels[c].FindStringIndex(folded); loc != nil {
			hits = append(hits, hit{c: c, pos: loc[0]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]entity.Category, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.c)
	}
	return out
}

// inline handles "label: a, b; label2 - c" segments. Returns true when at
// least one segment named a category.
func (x *extractor) inline(line string) bool {
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		line = m[1]
	}

	found := false
	for _, seg := range strings.Split(line, ";") {
		// "создай документ: цели - ..." carries the label in the value
		for i := 0; i < maxSegmentDepth; i++ {
			m := segmentRe.FindStringSubmatch(seg)
			if m == nil {
				break
			}
			cats := categoriesIn(m[1])
			if len(cats) == 0 || len(strings.Fields(m[1])) > 4 {
				seg = m[2]
				continue
			}
			found = true
			for _, v := range strings.Split(m[2], ",") {
				x.add(cats, v)
			}
			break
		}
	}
	return found
}

func (x *extractor) collect(line string) {
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		for _, v := range strings.Split(m[1], ";") {
			x.add(x.current, v)
		}
		return
	}
	for _, v := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ';' }) {
		x.add(x.current, v)
	}
}

func (x *extractor) tableRow(line string) {
	if tableSepRe.MatchString(line) {
		return
	}
	cells := splitCells(line)

	if !x.inTable {
		x.inTable = true
		x.header = make(map[int]entity.Category)
		for i, cell := range cells {
			for _, c := range categoriesIn(cell) {
				if len(x.current) == 0 || slices.Contains(x.current, c) {
					x.header[i] = c
					break
				}
			}
		}
		// the first row is a header either way
		return
	}

	if len(x.header) > 0 {
		for i, cell := range cells {
			if c, ok := x.header[i]; ok {
				x.add([]entity.Category{c}, cell)
			}
		}
		return
	}

	if len(x.current) == 0 {
		return
	}
	var parts []string
	for _, cell := range cells {
		if !isPlaceholder(cell) {
			parts = append(parts, cell)
		}
	}
	if len(parts) > 0 {
		x.add(x.current, strings.Join(parts, " — "))
	}
}

func splitCells(line string) []string {
	s := strings.Trim(strings.TrimSpace(line), "|")
	cells := strings.Split(s, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// add stores value under the first category whose label occurs in the value
// itself, or under the first candidate otherwise.
func (x *extractor) add(candidates []entity.Category, value string) {
	value = clean(value)
	if isPlaceholder(value) || len(candidates) == 0 {
		return
	}

	target := candidates[0]
	if len(candidates) > 1 {
		folded := textnorm.Fold(value)
		for _, c := range candidates {
			if categoryLabels[c].MatchString(folded) {
				target = c
				break
			}
		}
	}
	x.delta.SetItems(target, append(x.delta.Items(target), value))
}

func clean(s string) string {
	s = document.PlainText(s)
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ".;,"))
}

func isPlaceholder(s string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(s))]
}
