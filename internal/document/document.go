package document

const DefaultTitle = "Бизнес требования"

// Block is one element of a parsed document.
type Block interface {
	isBlock()
}

type Heading struct {
	Level int
	Text  string
}

// Paragraph holds running text. Preformatted paragraphs come from fenced code
// that is not a diagram and keep their line breaks.
type Paragraph struct {
	Text         string
	Preformatted bool
}

type List struct {
	Items   []string
	Ordered bool
}

// Table rows are padded to the same width. The first row is the header.
type Table struct {
	Rows [][]string
}

type Diagram struct {
	Lang   string
	Source string
}

func (Heading) isBlock()   {}
func (Paragraph) isBlock() {}
func (List) isBlock()      {}
func (Table) isBlock()     {}
func (Diagram) isBlock()   {}

// Header returns the first row or nil.
func (t Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Body returns data rows without the header.
func (t Table) Body() [][]string {
	if len(t.Rows) < 2 {
		return nil
	}
	return t.Rows[1:]
}

func (t Table) Columns() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// Document is the immutable result of a single parse pass.
type Document struct {
	Title  string
	Source string
	Blocks []Block
}

func (d *Document) Tables() []Table {
	var tables []Table
	for _, b := range d.Blocks {
		if t, ok := b.(Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

func (d *Document) Diagrams() []Diagram {
	var diagrams []Diagram
	for _, b := range d.Blocks {
		if dg, ok := b.(Diagram); ok {
			diagrams = append(diagrams, dg)
		}
	}
	return diagrams
}

func (d *Document) IsEmpty() bool {
	return len(d.Blocks) == 0
}
