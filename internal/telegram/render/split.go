package render

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageRunes is the Telegram text message limit.
const MaxMessageRunes = 4096

const fenceClose = "\n```"

// Split cuts text into messages of at most limit runes, preferring line
// boundaries. A code block cut in two is closed at the end of one message
// and reopened at the start of the next.
func Split(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
		fence  string
	)
	reserve := utf8.RuneCountInString(fenceClose)

	flush := func() {
		s := strings.TrimRight(cur.String(), "\n")
		if strings.TrimSpace(s) != "" && s != fence {
			if fence != "" {
				s += fenceClose
			}
			chunks = append(chunks, s)
		}
		cur.Reset()
		curLen = 0
		if fence != "" {
			cur.WriteString(fence + "\n")
			curLen = utf8.RuneCountInString(fence) + 1
		}
	}

	for _, line := range strings.Split(text, "\n") {
		budget := limit - reserve
		if fence != "" {
			budget -= utf8.RuneCountInString(fence) + 1
		}
		for _, piece := range wrap(line, budget) {
			n := utf8.RuneCountInString(piece) + 1
			if curLen+n > limit-reserve {
				flush()
			}
			cur.WriteString(piece)
			cur.WriteByte('\n')
			curLen += n
		}

		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "```") {
			if fence == "" {
				fence = trimmed
			} else {
				fence = ""
			}
		}
	}

	if s := strings.TrimRight(cur.String(), "\n"); strings.TrimSpace(s) != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

func wrap(line string, max int) []string {
	if max < 1 {
		max = 1
	}
	if utf8.RuneCountInString(line) <= max {
		return []string{line}
	}

	var out []string
	runes := []rune(line)
	for len(runes) > max {
		out = append(out, string(runes[:max]))
		runes = runes[max:]
	}
	return append(out, string(runes))
}
