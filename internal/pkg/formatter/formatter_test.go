package formatter

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMarkdown = "# Payments BRD\n\n" +
	"## Goals\n\n- Faster processing\n- Fewer errors\n\n" +
	"## Inputs and outputs\n\n| Input | Output |\n|---|---|\n| Request | Payment order |\n\n" +
	"## Process\n\n```mermaid\ngraph TD\n  A[Request] --> B[Check]\n```\n\n" +
	"## Shares\n\n```mermaid\npie title Channels\n  Online : 60\n  Office : 40\n```\n"

type stubRasterizer struct {
	img   entity.RasterImage
	err   error
	calls []string
}

func (s *stubRasterizer) Rasterize(_ context.Context, source string) (entity.RasterImage, error) {
	s.calls = append(s.calls, source)
	return s.img, s.err
}

type stubPrinter struct {
	html []byte
	err  error
}

func (s *stubPrinter) PrintPDF(_ context.Context, html []byte) ([]byte, error) {
	s.html = html
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-browser"), nil
}

func testPNG(t *testing.T, w, h int) entity.RasterImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 220, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return entity.RasterImage{Data: buf.Bytes(), Width: w, Height: h}
}

func TestColumnWidthsProperties(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		cols := 1 + rnd.Intn(8)
		rows := make([][]string, 1+rnd.Intn(5))
		for r := range rows {
			rows[r] = make([]string, cols)
			for c := range rows[r] {
				rows[r][c] = strings.Repeat("ж", rnd.Intn(120))
			}
		}
		contentWidth := 20 + rnd.Intn(600)
		minWidth := 5 + rnd.Intn(80)

		widths := ColumnWidths(rows, contentWidth, minWidth)
		require.Len(t, widths, cols)

		sum := 0
		for _, w := range widths {
			sum += w
			if contentWidth/cols >= minWidth {
				assert.GreaterOrEqual(t, w, minWidth)
			}
		}
		assert.LessOrEqual(t, sum, contentWidth)
	}
}

func TestColumnWidthsWeights(t *testing.T) {
	rows := [][]string{
		{"a", strings.Repeat("x", 30)},
		{"b", "y"},
	}

	widths := ColumnWidths(rows, 400, 40)

	assert.Equal(t, []int{100, 300}, widths)
	assert.Nil(t, ColumnWidths(nil, 400, 40))
}

func TestColumnWidthsShrinksWidest(t *testing.T) {
	rows := [][]string{{"a", "b", strings.Repeat("z", 200)}}

	widths := ColumnWidths(rows, 300, 60)

	assert.Equal(t, 60, widths[0])
	assert.Equal(t, 60, widths[1])
	assert.Equal(t, 180, widths[2])
}

func TestFactoryCreate(t *testing.T) {
	f := NewFactory(nil, nil)

	for _, format := range append([]entity.ResultFormat{entity.FormatMarkdown}, entity.ExportFormats...) {
		fm, err := f.Create(format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, fm.ContentType())
		assert.True(t, strings.HasPrefix(fm.FileExtension(), "."))
	}

	_, err := f.Create("odt")
	assert.ErrorIs(t, err, entity.ErrUnsupportedFormat)
}

func TestHTMLFormatter(t *testing.T) {
	doc := document.Parse(sampleMarkdown + "\nText with <script>alert(1)</script> and **bold**.\n")

	out, err := NewHTMLFormatter().Format(context.Background(), doc)
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<title>Payments BRD</title>")
	assert.Contains(t, page, "<h2>Goals</h2>")
	assert.Contains(t, page, "<li>Faster processing</li>")
	assert.Contains(t, page, "<th>Input</th><th>Output</th>")
	assert.Contains(t, page, `<pre class="mermaid">graph LR`)
	assert.Contains(t, page, "mermaid.min.js")
	assert.Contains(t, page, "<td>Online</td><td>60</td>")
	assert.Contains(t, page, "<strong>bold</strong>")
	assert.NotContains(t, page, "<script>alert(1)</script>")
}

func TestHTMLWithoutDiagramsSkipsScript(t *testing.T) {
	out, err := NewHTMLFormatter().Format(context.Background(), document.Parse("# T\n\nplain"))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "mermaid.min.js")
}

func TestPDFPrefersBrowser(t *testing.T) {
	r := &stubRasterizer{img: testPNG(t, 40, 20)}
	p := &stubPrinter{}

	out, err := NewPDFFormatter(r, p).Format(context.Background(), document.Parse(sampleMarkdown))
	require.NoError(t, err)

	assert.Equal(t, "%PDF-browser", string(out))
	assert.Contains(t, string(p.html), "data:image/png;base64,")
	require.Len(t, r.calls, 1)
	assert.True(t, strings.HasPrefix(r.calls[0], "graph LR"))
}

func TestPDFDrawsWhenBrowserFails(t *testing.T) {
	r := &stubRasterizer{img: testPNG(t, 400, 200)}
	p := &stubPrinter{err: errors.New("no browser")}

	out, err := NewPDFFormatter(r, p).Format(context.Background(), document.Parse(sampleMarkdown))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFDegradesBrokenDiagram(t *testing.T) {
	r := &stubRasterizer{img: entity.RasterImage{Data: []byte("not a png"), Width: 10, Height: 10}}

	out, err := NewPDFFormatter(r, nil).Format(context.Background(), document.Parse(sampleMarkdown))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRasterizeDiagramsSkipsFailures(t *testing.T) {
	doc := document.Parse(sampleMarkdown)

	images := rasterizeDiagrams(context.Background(), &stubRasterizer{err: errors.New("boom")}, doc)
	assert.Empty(t, images)

	images = rasterizeDiagrams(context.Background(), nil, doc)
	assert.Empty(t, images)
}

func TestFitWidth(t *testing.T) {
	w, h := fitWidth(1000, 500, 250)
	assert.InDelta(t, 250, w, 1e-9)
	assert.InDelta(t, 125, h, 1e-9)

	w, h = fitWidth(100, 50, 250)
	assert.InDelta(t, 100, w, 1e-9)
	assert.InDelta(t, 50, h, 1e-9)
}

func TestSheetTables(t *testing.T) {
	md := "## Роли: [основные]\n| a | b |\n|---|---|\n| 1 | 2 |\n\n" +
		"## Роли: [основные]\n| c |\n|---|\n| 3 |\n\n" +
		"| d |\n|---|\n| 4 |\n\n" +
		"## " + strings.Repeat("Очень длинный заголовок ", 3) + "\n| e |\n|---|\n| 5 |\n"

	sheets := SheetTables(document.Parse(md))

	require.Len(t, sheets, 4)
	assert.Equal(t, "Роли основные", sheets[0].Name)
	assert.Equal(t, "Роли основные (2)", sheets[1].Name)
	assert.Equal(t, "Роли основные (3)", sheets[2].Name)
	for _, s := range sheets {
		assert.LessOrEqual(t, len([]rune(s.Name)), 31)
	}
}

func TestSheetColumnWidths(t *testing.T) {
	table := document.Table{Rows: [][]string{
		{"id", strings.Repeat("w", 100)},
		{"1", "short"},
	}}

	assert.Equal(t, []int{10, 60}, SheetColumnWidths(table))
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(context.Background(), document.Parse("# T\n\nbody\n\n\n"))
	require.NoError(t, err)
	assert.Equal(t, "# T\n\nbody\n", string(out))
}

func TestPDFDrawsCyrillicWithEmbeddedFont(t *testing.T) {
	md := "# Бизнес требования\n\n## Цели процесса\n\n- Сократить время обработки заявки\n\n" +
		"| Вход | Выход |\n|---|---|\n| Заявка клиента на перевод средств между счетами | Исполненный платеж |\n"

	out, err := NewPDFFormatter(nil, nil).Format(context.Background(), document.Parse(md))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	// unicode text goes through a composite font, never the cp1252 core fonts
	assert.Contains(t, string(out), "/Encoding /Identity-H")
	assert.Contains(t, string(out), "/FontFile2")
	assert.NotContains(t, string(out), "/BaseFont /Helvetica")
}

func TestPDFLineCountMeasuresRunes(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(pdfFontName, "", pdfFontRegular)
	pdf.SetFont(pdfFontName, "", 10)
	w := &pdfWriter{pdf: pdf, font: pdfFontName}

	assert.Equal(t, 1, w.lineCount("Заявка", 40))
	assert.Equal(t, 2, w.lineCount("Заявка\nПлатеж", 40))

	long := strings.Repeat("платеж ", 20)
	assert.Greater(t, w.lineCount(long, 40), 2)
	assert.Equal(t, 1, w.lineCount("", 40))
}
