package formatter

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	htmlContentType   = "text/html; charset=utf-8"
	htmlFileExtension = ".html"

	mermaidScriptURL = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "DejaVu Sans", Arial, sans-serif; font-size: 14px; line-height: 1.5; color: #1f2328; max-width: 960px; margin: 24px auto; padding: 0 24px; }
h1, h2, h3 { color: #0b3d91; margin: 1.2em 0 0.5em; }
table { border-collapse: collapse; width: 100%; table-layout: fixed; margin: 12px 0; }
th, td { border: 1px solid #9aa4b2; padding: 6px 8px; vertical-align: top; word-wrap: break-word; }
th { background: #e8eef7; text-align: left; }
pre { background: #f6f8fa; padding: 8px 12px; white-space: pre-wrap; font-family: "DejaVu Sans Mono", monospace; }
.diagram { text-align: center; margin: 16px 0; }
.diagram img { max-width: 100%; }
</style>
{{- if .Mermaid}}
<script src="{{.MermaidURL}}"></script>
<script>mermaid.initialize({ startOnLoad: true, securityLevel: "strict" });</script>
{{- end}}
</head>
<body>
{{.Body}}
</body>
</html>
`))

type pageData struct {
	Title      string
	Body       template.HTML
	Mermaid    bool
	MermaidURL string
}

// HTMLFormatter renders a standalone page. Diagrams are left to the client
// side mermaid script.
type HTMLFormatter struct {
	md goldmark.Markdown
}

func NewHTMLFormatter() *HTMLFormatter {
	return &HTMLFormatter{
		md: goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify)),
	}
}

func (hf *HTMLFormatter) Format(_ context.Context, doc *document.Document) ([]byte, error) {
	return hf.render(doc, nil)
}

// render embeds images given for diagram blocks as PNG; other diagrams stay mermaid source.
func (hf *HTMLFormatter) render(doc *document.Document, images map[int]entity.RasterImage) ([]byte, error) {
	var (
		body    strings.Builder
		mermaid bool
	)

	for i, b := range doc.Blocks {
		switch v := b.(type) {
		case document.Heading:
			level := min(max(v.Level, 1), 3)
			fmt.Fprintf(&body, "<h%d>%s</h%d>\n", level, hf.inline(v.Text), level)
		case document.Paragraph:
			if v.Preformatted {
				fmt.Fprintf(&body, "<pre>%s</pre>\n", html.EscapeString(v.Text))
				continue
			}
			fmt.Fprintf(&body, "<p>%s</p>\n", hf.inline(v.Text))
		case document.List:
			tag := "ul"
			if v.Ordered {
				tag = "ol"
			}
			fmt.Fprintf(&body, "<%s>\n", tag)
			for _, it := range v.Items {
				fmt.Fprintf(&body, "<li>%s</li>\n", hf.inline(it))
			}
			fmt.Fprintf(&body, "</%s>\n", tag)
		case document.Table:
			hf.table(&body, v)
		case document.Diagram:
			if title, slices, ok := document.ParsePie(v.Source); ok {
				if title != "" {
					fmt.Fprintf(&body, "<p><strong>%s</strong></p>\n", html.EscapeString(title))
				}
				hf.table(&body, document.PieTable(slices))
				continue
			}
			if img, ok := images[i]; ok {
				fmt.Fprintf(&body, "<div class=\"diagram\"><img alt=\"diagram\" src=\"data:image/png;base64,%s\"></div>\n",
					base64.StdEncoding.EncodeToString(img.Data))
				continue
			}
			mermaid = true
			fmt.Fprintf(&body, "<div class=\"diagram\"><pre class=\"mermaid\">%s</pre></div>\n",
				html.EscapeString(document.Normalize(v.Source)))
		}
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title:      doc.Title,
		Body:       template.HTML(body.String()),
		Mermaid:    mermaid,
		MermaidURL: mermaidScriptURL,
	})
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func (hf *HTMLFormatter) table(w *strings.Builder, t document.Table) {
	w.WriteString("<table>\n<thead><tr>")
	for _, c := range t.Header() {
		fmt.Fprintf(w, "<th>%s</th>", hf.inline(c))
	}
	w.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range t.Body() {
		w.WriteString("<tr>")
		for _, c := range row {
			fmt.Fprintf(w, "<td>%s</td>", hf.inline(c))
		}
		w.WriteString("</tr>\n")
	}
	w.WriteString("</tbody>\n</table>\n")
}

// inline converts inline markdown. Raw HTML is escaped by goldmark.
func (hf *HTMLFormatter) inline(s string) string {
	var buf bytes.Buffer
	if err := hf.md.Convert([]byte(s), &buf); err != nil {
		return html.EscapeString(s)
	}
	out := strings.TrimSpace(buf.String())
	out = strings.TrimPrefix(out, "<p>")
	out = strings.TrimSuffix(out, "</p>")
	return out
}

func (hf *HTMLFormatter) ContentType() string {
	return htmlContentType
}

func (hf *HTMLFormatter) FileExtension() string {
	return htmlFileExtension
}
