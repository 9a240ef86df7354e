package document

import (
	"regexp"
	"strings"
)

var (
	headingRe   = regexp.MustCompile(`^\s{0,3}(#{1,6})\s+(.*?)\s*#*\s*$`)
	fenceRe     = regexp.MustCompile("^\\s*(```+|~~~+)\\s*([\\w+-]*)")
	breakRe     = regexp.MustCompile(`^\s{0,3}([-*_])(\s*([-*_])){2,}\s*$`)
	separatorRe = regexp.MustCompile(`^\s*\|?\s*:?-{2,}:?\s*(\|\s*:?-{2,}:?\s*)*\|?\s*$`)
	listItemRe  = regexp.MustCompile(`^(\s*)([-*+]|\d{1,9}[.)])\s+(.*)$`)
)

var diagramLangs = map[string]bool{
	"mermaid": true,
}

// Parse turns markdown into a block sequence in a single left-to-right scan.
// At each position the first matching construct wins: heading, fenced block,
// table, list run, paragraph. Thematic breaks are dropped.
func Parse(markdown string) *Document {
	src := strings.ReplaceAll(markdown, "\r\n", "\n")
	p := &parser{lines: strings.Split(src, "\n")}
	p.run()

	return &Document{
		Title:  titleOf(p.blocks),
		Source: markdown,
		Blocks: p.blocks,
	}
}

type parser struct {
	lines  []string
	pos    int
	blocks []Block
}

func (p *parser) run() {
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]

		switch {
		case strings.TrimSpace(line) == "":
			p.pos++
		case headingRe.MatchString(line):
			m := headingRe.FindStringSubmatch(line)
			p.blocks = append(p.blocks, Heading{Level: len(m[1]), Text: strings.TrimSpace(m[2])})
			p.pos++
		case fenceRe.MatchString(line):
			p.fence()
		case breakRe.MatchString(line):
			p.pos++
		case p.atTable():
			p.table()
		case listItemRe.MatchString(line):
			p.list()
		default:
			p.paragraph()
		}
	}
}

func (p *parser) fence() {
	m := fenceRe.FindStringSubmatch(p.lines[p.pos])
	marker, lang := m[1], strings.ToLower(m[2])
	p.pos++

	var body []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++
		if strings.HasPrefix(strings.TrimSpace(line), marker[:3]) && strings.TrimSpace(strings.Trim(strings.TrimSpace(line), marker[:1])) == "" {
			break
		}
		body = append(body, line)
	}

	text := strings.Join(body, "\n")
	if diagramLangs[lang] {
		p.blocks = append(p.blocks, Diagram{Lang: lang, Source: strings.TrimSpace(text)})
		return
	}
	p.blocks = append(p.blocks, Paragraph{Text: text, Preformatted: true})
}

func (p *parser) atTable() bool {
	if p.pos+1 >= len(p.lines) {
		return false
	}
	return strings.Contains(p.lines[p.pos], "|") && separatorRe.MatchString(p.lines[p.pos+1])
}

func (p *parser) table() {
	rows := [][]string{splitRow(p.lines[p.pos])}
	p.pos += 2

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if strings.TrimSpace(line) == "" || !strings.Contains(line, "|") {
			break
		}
		rows = append(rows, splitRow(line))
		p.pos++
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		rows[i] = r
	}

	p.blocks = append(p.blocks, Table{Rows: rows})
}

func splitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	if strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`) {
		s = s[:len(s)-1]
	}

	var (
		cells []string
		cur   strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '|':
			cur.WriteByte('|')
			i++
		case s[i] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	return append(cells, strings.TrimSpace(cur.String()))
}

func (p *parser) list() {
	ordered := isOrdered(listItemRe.FindStringSubmatch(p.lines[p.pos])[2])
	var items []string

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]

		if m := listItemRe.FindStringSubmatch(line); m != nil {
			if isOrdered(m[2]) != ordered && len(m[1]) == 0 {
				break
			}
			items = append(items, strings.TrimSpace(m[3]))
			p.pos++
			continue
		}

		if strings.TrimSpace(line) == "" {
			next := p.nextNonBlank()
			if next < 0 {
				p.pos = len(p.lines)
				break
			}
			m := listItemRe.FindStringSubmatch(p.lines[next])
			if m == nil || isOrdered(m[2]) != ordered {
				break
			}
			p.pos = next
			continue
		}

		// lazy continuation of the previous item
		if len(items) > 0 && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && !p.startsBlock(line) {
			items[len(items)-1] += " " + strings.TrimSpace(line)
			p.pos++
			continue
		}
		break
	}

	p.blocks = append(p.blocks, List{Items: items, Ordered: ordered})
}

func isOrdered(marker string) bool {
	return marker != "-" && marker != "*" && marker != "+"
}

func (p *parser) paragraph() {
	var parts []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if strings.TrimSpace(line) == "" || (len(parts) > 0 && p.startsBlock(line)) {
			break
		}
		parts = append(parts, strings.TrimSpace(line))
		p.pos++
	}
	p.blocks = append(p.blocks, Paragraph{Text: strings.Join(parts, " ")})
}

func (p *parser) startsBlock(line string) bool {
	return headingRe.MatchString(line) ||
		fenceRe.MatchString(line) ||
		breakRe.MatchString(line) ||
		listItemRe.MatchString(line) ||
		p.atTable()
}

func (p *parser) nextNonBlank() int {
	for i := p.pos; i < len(p.lines); i++ {
		if strings.TrimSpace(p.lines[i]) != "" {
			return i
		}
	}
	return -1
}

func titleOf(blocks []Block) string {
	for _, b := range blocks {
		if h, ok := b.(Heading); ok && h.Level == 1 && h.Text != "" {
			return PlainText(h.Text)
		}
	}
	return DefaultTitle
}
