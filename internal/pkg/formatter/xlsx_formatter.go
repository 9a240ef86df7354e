package formatter

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/spreadsheet"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxFileExtension = ".xlsx"

	maxSheetName     = 31
	minSheetColumn   = 10
	maxSheetColumn   = 60
	placeholderSheet = "Нет таблиц"
)

var sheetNameReplacer = strings.NewReplacer(
	"[", " ", "]", " ", ":", " ", "*", " ", "?", " ", "/", " ", `\`, " ",
)

// XLSXFormatter puts every table of the document on its own worksheet.
type XLSXFormatter struct{}

func NewXLSXFormatter() *XLSXFormatter {
	return &XLSXFormatter{}
}

func (xf *XLSXFormatter) Format(_ context.Context, doc *document.Document) ([]byte, error) {
	wb := spreadsheet.New()
	defer wb.Close()

	tables := SheetTables(doc)
	if len(tables) == 0 {
		sheet := wb.AddSheet()
		sheet.SetName(placeholderSheet)
		sheet.AddRow().AddCell().SetString("В документе нет таблиц")
	}

	bold := wb.StyleSheet.AddCellStyle()
	font := wb.StyleSheet.AddFont()
	font.SetBold(true)
	bold.SetFont(font)

	for _, st := range tables {
		sheet := wb.AddSheet()
		sheet.SetName(st.Name)

		for ri, row := range st.Table.Rows {
			r := sheet.AddRow()
			for _, value := range row {
				c := r.AddCell()
				c.SetString(document.PlainText(value))
				if ri == 0 {
					c.SetStyle(bold)
				}
			}
		}

		for ci, width := range SheetColumnWidths(st.Table) {
			sheet.Column(uint32(ci + 1)).SetWidth(measurement.Distance(width) * measurement.Character)
		}
	}

	var buf bytes.Buffer
	if err := wb.Save(&buf); err != nil {
		return nil, fmt.Errorf("save xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// SheetTable is a table with the unique worksheet name it is written under.
type SheetTable struct {
	Name  string
	Table document.Table
}

// SheetTables names the document tables after the nearest preceding heading.
// Names are unique and fit the 31 character limit.
func SheetTables(doc *document.Document) []SheetTable {
	var (
		out     []SheetTable
		heading string
		used    = make(map[string]bool)
	)

	for _, b := range doc.Blocks {
		switch v := b.(type) {
		case document.Heading:
			heading = document.PlainText(v.Text)
		case document.Table:
			base := sheetName(heading, len(out)+1)
			name := base
			for n := 2; used[strings.ToLower(name)]; n++ {
				suffix := fmt.Sprintf(" (%d)", n)
				name = truncateRunes(base, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
			}
			used[strings.ToLower(name)] = true
			out = append(out, SheetTable{Name: name, Table: v})
		}
	}
	return out
}

func sheetName(heading string, n int) string {
	name := strings.Join(strings.Fields(sheetNameReplacer.Replace(heading)), " ")
	name = strings.Trim(name, "'")
	if name == "" {
		name = fmt.Sprintf("Таблица %d", n)
	}
	return truncateRunes(name, maxSheetName)
}

// SheetColumnWidths sizes columns in characters by their longest cell.
func SheetColumnWidths(t document.Table) []int {
	widths := make([]int, t.Columns())
	for _, row := range t.Rows {
		for ci, value := range row {
			if ci >= len(widths) {
				break
			}
			widths[ci] = max(widths[ci], utf8.RuneCountInString(document.PlainText(value))+2)
		}
	}
	for i, w := range widths {
		widths[i] = min(max(w, minSheetColumn), maxSheetColumn)
	}
	return widths
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func (xf *XLSXFormatter) ContentType() string {
	return xlsxContentType
}

func (xf *XLSXFormatter) FileExtension() string {
	return xlsxFileExtension
}
