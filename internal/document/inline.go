package document

import (
	"regexp"
	"strings"
)

var (
	imageRe  = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe   = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	codeRe   = regexp.MustCompile("`([^`]*)`")
	strongRe = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	emRe     = regexp.MustCompile(`(^|[^\w*])[*_]([^*_\s][^*_]*?)[*_]([^\w*]|$)`)
	strikeRe = regexp.MustCompile(`~~(.+?)~~`)
	tagRe    = regexp.MustCompile(`<br\s*/?>`)
)

// PlainText strips inline markdown markup, keeping the visible text.
func PlainText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = imageRe.ReplaceAllString(s, "$1")
	s = linkRe.ReplaceAllString(s, "$1")
	s = codeRe.ReplaceAllString(s, "$1")
	s = strongRe.ReplaceAllString(s, "$2")
	s = strikeRe.ReplaceAllString(s, "$1")
	s = emRe.ReplaceAllString(s, "$1$2$3")
	return strings.TrimSpace(s)
}

// IsBold reports whether the whole text is a single strong span.
func IsBold(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) > 4 &&
		(strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**") ||
			strings.HasPrefix(s, "__") && strings.HasSuffix(s, "__")) &&
		!strings.Contains(s[2:len(s)-2], "**")
}
