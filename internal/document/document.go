// Package document defines a declarative, renderer-independent description of
// a printable document: an ordered list of blocks plus named styles.
//
// A Definition is plain data. It is built fresh for one render call and holds
// no references to any PDF library, so tests can inspect it directly.
package document

// Kind tags a Block variant.
type Kind string

const (
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindTable   Kind = "table"
	KindColumns Kind = "columns"
)

// Block is one element of the document content. The set of variants is closed:
// TextBlock, ImageBlock, TableBlock and ColumnsBlock.
type Block interface {
	Kind() Kind
}

// Alignment is horizontal placement within the available width.
type Alignment string

const (
	AlignInherit Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
)

// Color is a semantic color name understood by renderers.
type Color string

const (
	ColorDefault  Color = ""
	ColorPositive Color = "green"
	ColorNegative Color = "red"
)

// Margin is [left, top, right, bottom] in points.
type Margin [4]float64

func (m Margin) Left() float64   { return m[0] }
func (m Margin) Top() float64    { return m[1] }
func (m Margin) Right() float64  { return m[2] }
func (m Margin) Bottom() float64 { return m[3] }

// Style is a reusable set of text attributes. Zero values mean "inherit".
type Style struct {
	Font      string
	FontSize  float64
	Bold      bool
	Italics   bool
	Alignment Alignment
	Color     Color
	Margin    *Margin
}

// Merge returns s overlaid with the non-zero attributes of o.
func (s Style) Merge(o Style) Style {
	if o.Font != "" {
		s.Font = o.Font
	}
	if o.FontSize > 0 {
		s.FontSize = o.FontSize
	}
	if o.Bold {
		s.Bold = true
	}
	if o.Italics {
		s.Italics = true
	}
	if o.Alignment != AlignInherit {
		s.Alignment = o.Alignment
	}
	if o.Color != ColorDefault {
		s.Color = o.Color
	}
	if o.Margin != nil {
		m := *o.Margin
		s.Margin = &m
	}
	return s
}

// TextBlock is a paragraph. Style names an entry in Definition.Styles; the
// inline attributes override it.
type TextBlock struct {
	Text   string
	Style  string
	Inline Style
}

// ImageBlock places an image file scaled to Width points.
type ImageBlock struct {
	Path      string
	Width     float64
	Alignment Alignment
	Margin    *Margin
}

// Cell is one table cell. ColSpan > 1 merges the following cells, which must
// still be present as placeholders so every row has the same length.
type Cell struct {
	Text    string
	Bold    bool
	Color   Color
	ColSpan int
}

// TableBlock is a grid with fixed percentage column widths. The first
// HeaderRows rows of Body are repeated when the table breaks across pages.
type TableBlock struct {
	HeaderRows int
	Widths     []float64
	Body       [][]Cell
	Margin     *Margin
}

// ColumnsBlock lays its children out side by side. A nil child is an empty column.
type ColumnsBlock struct {
	Columns []Block
	Margin  *Margin
}

func (TextBlock) Kind() Kind    { return KindText }
func (ImageBlock) Kind() Kind   { return KindImage }
func (TableBlock) Kind() Kind   { return KindTable }
func (ColumnsBlock) Kind() Kind { return KindColumns }

// BodyRows returns the rows after the header.
func (t TableBlock) BodyRows() [][]Cell {
	if t.HeaderRows >= len(t.Body) {
		return nil
	}
	return t.Body[t.HeaderRows:]
}

// Definition is the complete document: content in reading order, named styles
// and the style every text element starts from.
type Definition struct {
	Title        string
	Content      []Block
	Styles       map[string]Style
	DefaultStyle Style
}

// ResolveText computes the effective style of a text block.
func (d *Definition) ResolveText(b TextBlock) Style {
	s := d.DefaultStyle
	if named, ok := d.Styles[b.Style]; ok {
		s = s.Merge(named)
	}
	return s.Merge(b.Inline)
}

// Tables returns every table in the content, including tables nested in columns.
func (d *Definition) Tables() []TableBlock {
	var out []TableBlock
	var walk func(blocks []Block)
	walk = func(blocks []Block) {
		for _, b := range blocks {
			switch v := b.(type) {
			case TableBlock:
				out = append(out, v)
			case ColumnsBlock:
				walk(v.Columns)
			}
		}
	}
	walk(d.Content)
	return out
}

// Texts returns the text of every text block in reading order.
func (d *Definition) Texts() []string {
	var out []string
	var walk func(blocks []Block)
	walk = func(blocks []Block) {
		for _, b := range blocks {
			switch v := b.(type) {
			case TextBlock:
				out = append(out, v.Text)
			case ColumnsBlock:
				walk(v.Columns)
			}
		}
	}
	walk(d.Content)
	return out
}

// Images returns the path of every image block in reading order.
func (d *Definition) Images() []string {
	var out []string
	var walk func(blocks []Block)
	walk = func(blocks []Block) {
		for _, b := range blocks {
			switch v := b.(type) {
			case ImageBlock:
				out = append(out, v.Path)
			case ColumnsBlock:
				walk(v.Columns)
			}
		}
	}
	walk(d.Content)
	return out
}

// M builds a Margin pointer.
func M(left, top, right, bottom float64) *Margin {
	return &Margin{left, top, right, bottom}
}
