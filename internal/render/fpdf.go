package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvloznov/statement-pdf/internal/document"
	"github.com/go-pdf/fpdf"
)

// FPDF renders definitions with the fpdf engine.
type FPDF struct {
	cfg    Config
	family string
	fonts  map[string][]byte
}

// NewFPDF validates cfg and loads the configured font files. A missing font
// file is reported here rather than on every request.
func NewFPDF(cfg Config) (*FPDF, error) {
	merged := DefaultConfig()
	applyConfig(&merged, cfg)

	r := &FPDF{cfg: merged, family: coreFontFamily}
	if merged.Fonts.empty() {
		return r, nil
	}

	f := merged.Fonts
	if f.Family == "" {
		return nil, fmt.Errorf("NewFPDF: font family is required when font paths are set")
	}
	if f.Normal == "" || f.Bold == "" || f.Italics == "" || f.BoldItalics == "" {
		return nil, fmt.Errorf("NewFPDF: all four font variants (normal, bold, italics, bold_italics) are required")
	}

	r.family = f.Family
	r.fonts = make(map[string][]byte, 4)
	for style, path := range map[string]string{"": f.Normal, "B": f.Bold, "I": f.Italics, "BI": f.BoldItalics} {
		if ext := strings.ToLower(filepath.Ext(path)); ext != ".ttf" {
			return nil, fmt.Errorf("NewFPDF: font %s must be a .ttf file", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("NewFPDF: font missing: %w", err)
		}
		r.fonts[style] = data
	}
	return r, nil
}

// Family returns the font family text is set in.
func (r *FPDF) Family() string {
	return r.family
}

// Render implements Renderer.
func (r *FPDF) Render(ctx context.Context, def *document.Definition, w io.Writer) error {
	if def == nil {
		return fmt.Errorf("%w: definition is nil", ErrRender)
	}
	if w == nil {
		return fmt.Errorf("%w: writer is nil", ErrRender)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pdf := fpdf.New("P", "pt", r.cfg.PageSize, "")
	pdf.SetMargins(r.cfg.Margin, r.cfg.Margin, r.cfg.Margin)
	pdf.SetAutoPageBreak(true, r.cfg.Margin)
	if def.Title != "" {
		pdf.SetTitle(def.Title, true)
	}
	pdf.SetCreator("statement-pdf", true)

	tr := func(s string) string { return s }
	if r.fonts == nil {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	} else {
		for style, data := range r.fonts {
			pdf.AddUTF8FontFromBytes(r.family, style, data)
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: font setup: %v", ErrRender, err)
	}

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	p := &pass{
		pdf:        pdf,
		def:        def,
		family:     r.family,
		core:       r.fonts == nil,
		tr:         tr,
		lineHeight: r.cfg.LineHeight,
		padding:    r.cfg.CellPadding,
		margin:     r.cfg.Margin,
		pageW:      pageW,
		pageH:      pageH,
	}

	for i, block := range def.Content {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.block(block, p.margin, p.contentWidth())
		if pdf.Err() {
			return fmt.Errorf("%w: block %d (%s): %v", ErrRender, i, kindOf(block), pdf.Error())
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: output: %v", ErrRender, err)
	}
	return nil
}

func kindOf(b document.Block) document.Kind {
	if b == nil {
		return "empty"
	}
	return b.Kind()
}

// pass holds the state of a single render.
type pass struct {
	pdf        *fpdf.Fpdf
	def        *document.Definition
	family     string
	core       bool
	tr         func(string) string
	lineHeight float64
	padding    float64
	margin     float64
	pageW      float64
	pageH      float64
}

func (p *pass) contentWidth() float64 {
	return p.pageW - 2*p.margin
}

func (p *pass) block(b document.Block, x, w float64) {
	switch v := b.(type) {
	case document.TextBlock:
		p.text(v, x, w)
	case document.ImageBlock:
		p.image(v, x, w)
	case document.TableBlock:
		p.table(v, x, w)
	case document.ColumnsBlock:
		p.columns(v, x, w)
	case nil:
	default:
		p.pdf.SetError(fmt.Errorf("unsupported block %T", b))
	}
}

func (p *pass) setFont(bold, italics bool, size float64) {
	style := ""
	if bold {
		style += "B"
	}
	if italics {
		style += "I"
	}
	if size <= 0 {
		size = 10
	}
	p.pdf.SetFont(p.family, style, size)
}

func (p *pass) setColor(c document.Color) {
	switch c {
	case document.ColorPositive:
		p.pdf.SetTextColor(0, 128, 0)
	case document.ColorNegative:
		p.pdf.SetTextColor(255, 0, 0)
	default:
		p.pdf.SetTextColor(0, 0, 0)
	}
}

func alignString(a document.Alignment) string {
	switch a {
	case document.AlignCenter:
		return "C"
	case document.AlignRight:
		return "R"
	default:
		return "L"
	}
}

func marginOf(m *document.Margin) document.Margin {
	if m == nil {
		return document.Margin{}
	}
	return *m
}

func (p *pass) text(b document.TextBlock, x, w float64) {
	s := p.def.ResolveText(b)
	m := marginOf(s.Margin)

	p.setFont(s.Bold, s.Italics, s.FontSize)
	p.setColor(s.Color)
	_, lh := p.pdf.GetFontSize()
	lh *= p.lineHeight

	p.pdf.SetY(p.pdf.GetY() + m.Top())
	p.pdf.SetX(x + m.Left())
	p.pdf.MultiCell(w-m.Left()-m.Right(), lh, p.tr(b.Text), "", alignString(s.Alignment), false)
	p.pdf.SetY(p.pdf.GetY() + m.Bottom())
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return ""
	}
}

func (p *pass) image(b document.ImageBlock, x, w float64) {
	if b.Path == "" {
		return
	}
	typ := imageType(b.Path)
	if typ == "" {
		p.pdf.SetError(fmt.Errorf("image %s must be PNG, JPEG or GIF", b.Path))
		return
	}
	opts := fpdf.ImageOptions{ImageType: typ, ReadDpi: true}
	info := p.pdf.RegisterImageOptions(b.Path, opts)
	if p.pdf.Err() || info == nil {
		return
	}
	iw, ih := info.Extent()
	if iw <= 0 || ih <= 0 {
		p.pdf.SetError(fmt.Errorf("image %s has invalid dimensions", b.Path))
		return
	}

	m := marginOf(b.Margin)
	width := b.Width
	if width <= 0 || width > w {
		width = w
	}
	height := width * ih / iw

	p.pdf.SetY(p.pdf.GetY() + m.Top())
	p.ensureSpace(height)

	ix := x + m.Left()
	switch b.Alignment {
	case document.AlignCenter:
		ix = x + (w-width)/2
	case document.AlignRight:
		ix = x + w - width - m.Right()
	}
	y := p.pdf.GetY()
	p.pdf.ImageOptions(b.Path, ix, y, width, height, false, opts, 0, "")
	p.pdf.SetY(y + height + m.Bottom())
}

func (p *pass) ensureSpace(h float64) {
	if p.pdf.GetY()+h > p.pageH-p.margin {
		p.pdf.AddPage()
	}
}

func (p *pass) columns(b document.ColumnsBlock, x, w float64) {
	m := marginOf(b.Margin)
	p.pdf.SetY(p.pdf.GetY() + m.Top())

	// Images keep their fixed width; the rest share what is left.
	widths := make([]float64, len(b.Columns))
	fixed, flexible := 0.0, 0
	for i, c := range b.Columns {
		if img, ok := c.(document.ImageBlock); ok && img.Width > 0 {
			widths[i] = img.Width
			fixed += img.Width
			continue
		}
		flexible++
	}
	if flexible > 0 {
		share := (w - m.Left() - m.Right() - fixed) / float64(flexible)
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = share
			}
		}
	}

	startY := p.pdf.GetY()
	maxY := startY
	cx := x + m.Left()
	for i, c := range b.Columns {
		p.pdf.SetY(startY)
		p.block(c, cx, widths[i])
		if y := p.pdf.GetY(); y > maxY {
			maxY = y
		}
		cx += widths[i]
	}
	p.pdf.SetY(maxY + m.Bottom())
}

func (p *pass) splitCell(text string, w float64) []string {
	text = p.tr(text)
	if text == "" {
		return []string{""}
	}
	if p.core {
		raw := p.pdf.SplitLines([]byte(text), w)
		lines := make([]string, 0, len(raw))
		for _, l := range raw {
			lines = append(lines, string(l))
		}
		if len(lines) == 0 {
			return []string{""}
		}
		return lines
	}
	lines := p.pdf.SplitText(text, w)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

type laidOutCell struct {
	cell  document.Cell
	width float64
	lines []string
}

func (p *pass) layoutRow(row []document.Cell, widths []float64, fontSize float64) ([]laidOutCell, float64) {
	cells := make([]laidOutCell, 0, len(row))
	maxLines := 1
	for j := 0; j < len(row) && j < len(widths); {
		cell := row[j]
		span := cell.ColSpan
		if span < 1 {
			span = 1
		}
		if j+span > len(widths) {
			span = len(widths) - j
		}
		cw := 0.0
		for _, wd := range widths[j : j+span] {
			cw += wd
		}
		p.setFont(cell.Bold, false, fontSize)
		lines := p.splitCell(cell.Text, cw)
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
		cells = append(cells, laidOutCell{cell: cell, width: cw, lines: lines})
		j += span
	}
	_, lh := p.pdf.GetFontSize()
	lh *= p.lineHeight
	return cells, float64(maxLines)*lh + 2*p.padding
}

func (p *pass) drawRow(cells []laidOutCell, x, y, height, fontSize float64) {
	_, lh := p.pdf.GetFontSize()
	lh *= p.lineHeight
	for _, c := range cells {
		p.pdf.SetTextColor(0, 0, 0)
		p.pdf.Rect(x, y, c.width, height, "D")
		p.setFont(c.cell.Bold, false, fontSize)
		p.setColor(c.cell.Color)
		for k, line := range c.lines {
			p.pdf.SetXY(x, y+p.padding+float64(k)*lh)
			p.pdf.CellFormat(c.width, lh, line, "", 0, "L", false, 0, "")
		}
		x += c.width
	}
	p.pdf.SetY(y + height)
}

func (p *pass) table(b document.TableBlock, x, w float64) {
	if len(b.Body) == 0 {
		return
	}
	m := marginOf(b.Margin)
	tw := w - m.Left() - m.Right()
	tx := x + m.Left()

	total := 0.0
	for _, pct := range b.Widths {
		total += pct
	}
	if total < 100 {
		total = 100
	}
	widths := make([]float64, len(b.Widths))
	for i, pct := range b.Widths {
		widths[i] = tw * pct / total
	}

	fontSize := p.def.DefaultStyle.FontSize
	p.pdf.SetDrawColor(0, 0, 0)
	p.pdf.SetLineWidth(0.5)
	p.pdf.SetY(p.pdf.GetY() + m.Top())

	// Automatic breaks are handled here so rows never split across pages.
	p.pdf.SetAutoPageBreak(false, p.margin)
	defer p.pdf.SetAutoPageBreak(true, p.margin)

	header := b.Body[:min(b.HeaderRows, len(b.Body))]
	for i, row := range b.Body {
		cells, height := p.layoutRow(row, widths, fontSize)
		if p.pdf.GetY()+height > p.pageH-p.margin && i >= b.HeaderRows {
			p.pdf.AddPage()
			for _, h := range header {
				hc, hh := p.layoutRow(h, widths, fontSize)
				p.drawRow(hc, tx, p.pdf.GetY(), hh, fontSize)
			}
		}
		p.drawRow(cells, tx, p.pdf.GetY(), height, fontSize)
	}
	p.pdf.SetY(p.pdf.GetY() + m.Bottom())
}

var _ Renderer = (*FPDF)(nil)
