package formatter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/common"
	uodoc "github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"

	// A4 with 2 cm margins, in points
	docxContentWidth   = 482
	docxMinColumnWidth = 60
	docxMonospaceFont  = "Courier New"
)

// DOCXFormatter builds a Word document. Diagrams are embedded as PNG when the
// rasterizer succeeds.
type DOCXFormatter struct {
	rasterizer Rasterizer
}

func NewDOCXFormatter(rasterizer Rasterizer) *DOCXFormatter {
	return &DOCXFormatter{rasterizer: rasterizer}
}

func (df *DOCXFormatter) Format(ctx context.Context, doc *document.Document) ([]byte, error) {
	images := rasterizeDiagrams(ctx, df.rasterizer, doc)

	w := uodoc.New()
	defer w.Close()

	bullets := w.Numbering.AddDefinition()
	bulletLevel := bullets.AddLevel()
	bulletLevel.SetFormat(wml.ST_NumberFormatBullet)
	bulletLevel.SetText("•")

	numbers := w.Numbering.AddDefinition()
	numberLevel := numbers.AddLevel()
	numberLevel.SetFormat(wml.ST_NumberFormatDecimal)
	numberLevel.SetText("%1.")

	for i, b := range doc.Blocks {
		switch v := b.(type) {
		case document.Heading:
			p := w.AddParagraph()
			p.SetStyle(fmt.Sprintf("Heading%d", min(max(v.Level, 1), 3)))
			p.AddRun().AddText(document.PlainText(v.Text))
		case document.Paragraph:
			if v.Preformatted {
				addMonospace(w, v.Text)
				continue
			}
			addRichText(w.AddParagraph(), v.Text)
		case document.List:
			def := bullets
			if v.Ordered {
				def = numbers
			}
			for _, it := range v.Items {
				p := w.AddParagraph()
				p.SetNumberingDefinition(def)
				p.SetNumberingLevel(0)
				addRichText(p, it)
			}
		case document.Table:
			addTable(w, v)
		case document.Diagram:
			if title, slices, ok := document.ParsePie(v.Source); ok {
				if title != "" {
					r := w.AddParagraph().AddRun()
					r.Properties().SetBold(true)
					r.AddText(title)
				}
				addTable(w, document.PieTable(slices))
				continue
			}
			img, ok := images[i]
			if !ok || addImage(w, img) != nil {
				addMonospace(w, v.Source)
			}
		}
	}

	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		return nil, fmt.Errorf("save docx: %w", err)
	}
	return buf.Bytes(), nil
}

// addRichText writes text with **bold** spans kept bold.
func addRichText(p uodoc.Paragraph, text string) {
	parts := strings.Split(text, "**")
	for i, part := range parts {
		plain := document.PlainText(part)
		if plain == "" {
			continue
		}
		if i > 0 && strings.HasPrefix(part, " ") {
			plain = " " + plain
		}
		if strings.HasSuffix(part, " ") && i < len(parts)-1 {
			plain += " "
		}
		r := p.AddRun()
		if i%2 == 1 && len(parts)%2 == 1 {
			r.Properties().SetBold(true)
		}
		r.AddText(plain)
	}
}

func addMonospace(w *uodoc.Document, text string) {
	for _, line := range strings.Split(text, "\n") {
		r := w.AddParagraph().AddRun()
		r.Properties().SetFontFamily(docxMonospaceFont)
		r.Properties().SetSize(9 * measurement.Point)
		r.AddText(line)
	}
}

func addTable(w *uodoc.Document, t document.Table) {
	widths := ColumnWidths(t.Rows, docxContentWidth, docxMinColumnWidth)
	if len(widths) == 0 {
		return
	}

	table := w.AddTable()
	table.Properties().SetLayout(wml.ST_TblLayoutTypeFixed)
	table.Properties().SetWidth(docxContentWidth * measurement.Point)
	table.Properties().Borders().SetAll(wml.ST_BorderSingle, color.Auto, 0.5*measurement.Point)

	for ri, row := range t.Rows {
		tr := table.AddRow()
		for ci, width := range widths {
			cell := tr.AddCell()
			cell.Properties().SetWidth(measurement.Distance(width) * measurement.Point)

			text := ""
			if ci < len(row) {
				text = document.PlainText(row[ci])
			}
			r := cell.AddParagraph().AddRun()
			if ri == 0 {
				r.Properties().SetBold(true)
			}
			r.AddText(text)
		}
	}

	w.AddParagraph()
}

func addImage(w *uodoc.Document, img entity.RasterImage) error {
	ci, err := common.ImageFromBytes(img.Data)
	if err != nil {
		return fmt.Errorf("decode diagram image: %w", err)
	}
	ref, err := w.AddImage(ci)
	if err != nil {
		return fmt.Errorf("add diagram image: %w", err)
	}

	inline, err := w.AddParagraph().AddRun().AddDrawingInline(ref)
	if err != nil {
		return fmt.Errorf("place diagram image: %w", err)
	}
	// bitmaps come at 96 dpi
	width, height := fitWidth(float64(img.Width)*0.75, float64(img.Height)*0.75, docxContentWidth)
	inline.SetSize(measurement.Distance(width)*measurement.Point, measurement.Distance(height)*measurement.Point)
	return nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
