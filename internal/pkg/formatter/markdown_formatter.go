package formatter

import (
	"context"
	"strings"

	"github.com/futig/ba-assistant/internal/document"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

// MarkdownFormatter returns the source the document was parsed from.
type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(_ context.Context, doc *document.Document) ([]byte, error) {
	return []byte(strings.TrimRight(doc.Source, "\n") + "\n"), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
