package completeness

import (
	"regexp"
	"strings"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/pkg/textnorm"
)

const (
	completeMinSections = 5
	requiredDiagrams    = 1
)

// Thresholds tune NeedsMoreData. Defaults come from DraftThresholds and
// FallbackThresholds, the env tags only override them.
type Thresholds struct {
	MinSections   int     `env:"MIN_SECTIONS"`
	BadTableRatio float64 `env:"BAD_TABLE_RATIO"`
}

// DraftThresholds apply to documents produced by the drafting service.
func DraftThresholds() Thresholds {
	return Thresholds{MinSections: 3, BadTableRatio: 0.8}
}

// FallbackThresholds apply to documents assembled locally from the knowledge base.
func FallbackThresholds() Thresholds {
	return Thresholds{MinSections: 2, BadTableRatio: 0.6}
}

var (
	fenceRe       = regexp.MustCompile("(?m)^\\s*(```|~~~)")
	placeholderRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}/])(n/a|unknown|tbd|нет данных|no data)(?:$|[^\p{L}/])`)
)

var truncationTails = []string{
	"продолжение следует",
	"продолжение в следующем сообщении",
	"продолжение",
	"далее",
	"to be continued",
	"continued",
	"continue",
	"further",
}

var emptyCells = map[string]bool{
	"": true, "-": true, "—": true, "–": true, "n/a": true, "na": true, "tbd": true,
	"?": true, "...": true, "…": true, "unknown": true, "нет данных": true, "no data": true,
}

// IsComplete reports whether a draft can be finalized as is: one process
// diagram, at least five of the six required sections, balanced fences and
// no sign of truncation.
func IsComplete(markdown string) bool {
	r := Evaluate(markdown, DraftThresholds())
	return r.DiagramCount == requiredDiagrams &&
		r.PresentCount >= completeMinSections &&
		r.FencesBalanced &&
		!r.Truncated
}

// NeedsMoreData reports whether the document lacks substance that only the
// user can provide.
func NeedsMoreData(markdown string, th Thresholds) bool {
	r := Evaluate(markdown, th)
	return needsMoreData(r, th)
}

func needsMoreData(r entity.CompletenessReport, th Thresholds) bool {
	return r.PresentCount < th.MinSections || r.Placeholders || r.BadTableRatio > th.BadTableRatio
}

// Evaluate runs every structural check and derives a decision.
func Evaluate(markdown string, th Thresholds) entity.CompletenessReport {
	doc := document.Parse(markdown)
	sections := sectionPresence(doc)

	r := entity.CompletenessReport{
		Sections:       sections,
		PresentCount:   countPresent(sections),
		DiagramCount:   countFlowcharts(doc),
		BadTableRatio:  worstTableRatio(doc),
		FencesBalanced: len(fenceRe.FindAllStringIndex(markdown, -1))%2 == 0,
		Truncated:      isTruncated(markdown),
		Placeholders:   placeholderRe.MatchString(markdown),
	}

	complete := r.DiagramCount == requiredDiagrams &&
		r.PresentCount >= completeMinSections &&
		r.FencesBalanced &&
		!r.Truncated

	switch {
	case !complete:
		r.Decision = entity.DecisionNeedsContinuation
	case needsMoreData(r, th):
		r.Decision = entity.DecisionNeedsMoreData
	default:
		r.Decision = entity.DecisionComplete
	}
	return r
}

func countFlowcharts(doc *document.Document) int {
	n := 0
	for _, d := range doc.Diagrams() {
		if document.IsFlowchart(d.Source) {
			n++
		}
	}
	return n
}

// worstTableRatio returns the highest share of empty-like data cells over
// all tables. A table without data rows counts as entirely empty.
func worstTableRatio(doc *document.Document) float64 {
	worst := 0.0
	for _, t := range doc.Tables() {
		worst = max(worst, tableRatio(t))
	}
	return worst
}

func tableRatio(t document.Table) float64 {
	var total, empty int
	for _, row := range t.Body() {
		for _, cell := range row {
			total++
			if emptyCells[strings.ToLower(document.PlainText(cell))] {
				empty++
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(empty) / float64(total)
}

func isTruncated(markdown string) bool {
	trimmed := strings.TrimSpace(markdown)
	if trimmed == "" {
		return true
	}
	if strings.HasSuffix(trimmed, "…") || strings.HasSuffix(trimmed, "...") {
		return true
	}

	lines := strings.Split(trimmed, "\n")
	last := strings.Join(textnorm.Tokens(lines[len(lines)-1]), " ")
	for _, tail := range truncationTails {
		if strings.HasSuffix(last, tail) {
			return true
		}
	}
	return false
}
