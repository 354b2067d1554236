// Package pdf renders the letter-sized HR documents produced by the NTE and document builder modules.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 5.5
	logoName   = "logo"
)

// Options configures the running header and footer.
type Options struct {
	Title string
	// Meta is printed in small type under the title.
	Meta string
	// Logo is a PNG image drawn in the top-left corner at LogoWidth millimetres.
	Logo      []byte
	LogoWidth float64
	// Footer returns the footer lines for a page number starting at 1.
	Footer func(page int) []string
}

// Document is a single PDF being written top to bottom.
type Document struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	opts Options
	logo bool
}

func New(opts Options) *Document {
	p := fpdf.New("P", "mm", "Letter", "")
	p.SetMargins(20, 20, 20)
	p.SetAutoPageBreak(true, 25)
	p.SetTitle(opts.Title, true)

	d := &Document{pdf: p, tr: p.UnicodeTranslatorFromDescriptor(""), opts: opts}

	if len(opts.Logo) > 0 {
		info := p.RegisterImageOptionsReader(logoName, fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}, bytes.NewReader(opts.Logo))
		d.logo = info != nil && p.Ok()
		if !d.logo {
			// An unreadable logo must not take the whole document down.
			p.ClearError()
		}
	}

	p.SetHeaderFunc(d.header)
	p.SetFooterFunc(d.footer)
	return d
}

func (d *Document) header() {
	p := d.pdf
	left, top, right, _ := p.GetMargins()
	pageW, _ := p.GetPageSize()
	width := pageW - left - right

	logoW := d.opts.LogoWidth
	if logoW <= 0 {
		logoW = 30
	}
	if d.logo {
		p.ImageOptions(logoName, left, top, logoW, 0, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	p.SetXY(left, top)
	p.SetFont(fontFamily, "B", 16)
	p.SetTextColor(33, 33, 33)
	p.CellFormat(width, 8, d.tr(d.opts.Title), "", 1, "R", false, 0, "")
	if d.opts.Meta != "" {
		p.SetFont(fontFamily, "", 9)
		p.SetTextColor(90, 90, 90)
		p.CellFormat(width, 5, d.tr(d.opts.Meta), "", 1, "R", false, 0, "")
	}

	y := top + 18
	if p.GetY()+3 > y {
		y = p.GetY() + 3
	}
	p.SetDrawColor(68, 68, 68)
	p.SetLineWidth(0.5)
	p.Line(left, y, pageW-right, y)
	p.SetY(y + 6)
	p.SetTextColor(34, 34, 34)
}

func (d *Document) footer() {
	if d.opts.Footer == nil {
		return
	}
	p := d.pdf
	lines := d.opts.Footer(p.PageNo())
	p.SetY(-15 - float64(len(lines)-1)*4)
	p.SetFont(fontFamily, "", 8)
	p.SetTextColor(102, 102, 102)
	for _, l := range lines {
		p.CellFormat(0, 4, d.tr(l), "", 1, "C", false, 0, "")
	}
}

// AddPage starts a new page with the running header.
func (d *Document) AddPage() {
	d.pdf.AddPage()
}

// SetHeader changes the title and meta line for pages added afterwards.
func (d *Document) SetHeader(title, meta string) {
	d.opts.Title = title
	d.opts.Meta = meta
}

func (d *Document) Heading(text string) {
	d.pdf.Ln(2)
	d.pdf.SetFont(fontFamily, "B", 12)
	d.pdf.CellFormat(0, 7, d.tr(text), "", 1, "L", false, 0, "")
}

func (d *Document) Paragraph(text string) {
	d.pdf.SetFont(fontFamily, "", 11)
	d.pdf.MultiCell(0, lineHeight, d.tr(text), "", "J", false)
	d.pdf.Ln(2)
}

// Bullet writes one indented list item.
func (d *Document) Bullet(text string) {
	p := d.pdf
	left, _, _, _ := p.GetMargins()
	p.SetFont(fontFamily, "", 11)
	p.SetX(left + 4)
	p.CellFormat(5, lineHeight, d.tr("•"), "", 0, "L", false, 0, "")
	p.MultiCell(0, lineHeight, d.tr(text), "", "L", false)
}

// Fields renders label/value pairs as a bordered two-pair-per-row grid.
func (d *Document) Fields(pairs [][2]string) {
	p := d.pdf
	left, _, right, _ := p.GetMargins()
	pageW, _ := p.GetPageSize()
	col := (pageW - left - right) / 4

	for i := 0; i < len(pairs); i += 2 {
		p.SetFillColor(245, 245, 245)
		p.SetFont(fontFamily, "B", 10)
		p.CellFormat(col, 7, d.tr(pairs[i][0]), "1", 0, "L", true, 0, "")
		p.SetFont(fontFamily, "", 10)
		if i+1 >= len(pairs) {
			p.CellFormat(col*3, 7, d.tr(pairs[i][1]), "1", 1, "L", false, 0, "")
			continue
		}
		p.CellFormat(col, 7, d.tr(pairs[i][1]), "1", 0, "L", false, 0, "")
		p.SetFont(fontFamily, "B", 10)
		p.CellFormat(col, 7, d.tr(pairs[i+1][0]), "1", 0, "L", true, 0, "")
		p.SetFont(fontFamily, "", 10)
		p.CellFormat(col, 7, d.tr(pairs[i+1][1]), "1", 1, "L", false, 0, "")
	}
	p.Ln(3)
}

// Box writes body inside a bordered block, italic when emphasised.
func (d *Document) Box(body string, italic bool) {
	style := ""
	if italic {
		style = "I"
	}
	d.pdf.SetFont(fontFamily, style, 10)
	d.pdf.SetDrawColor(204, 204, 204)
	d.pdf.SetLineWidth(0.2)
	d.pdf.MultiCell(0, lineHeight, d.tr(body), "1", "J", false)
	d.pdf.Ln(3)
}

// Signatures draws two signature lines side by side.
func (d *Document) Signatures(leftLabel, rightLabel string) {
	p := d.pdf
	left, _, right, _ := p.GetMargins()
	pageW, _ := p.GetPageSize()
	width := (pageW - left - right) * 0.45
	gap := (pageW - left - right) - 2*width

	p.Ln(20)
	y := p.GetY()
	p.SetDrawColor(0, 0, 0)
	p.SetLineWidth(0.3)
	p.Line(left, y, left+width, y)
	p.Line(left+width+gap, y, pageW-right, y)
	p.SetFont(fontFamily, "", 8)
	p.CellFormat(width, 5, d.tr(leftLabel), "", 0, "C", false, 0, "")
	p.CellFormat(gap, 5, "", "", 0, "C", false, 0, "")
	p.CellFormat(width, 5, d.tr(rightLabel), "", 1, "C", false, 0, "")
}

// Bytes finishes the document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// SafeName keeps ASCII letters and digits only, for use in file names.
func SafeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
