package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/trimcrop-cli/db"
)

// pdfColumns are relative widths for Header in landscape A4.
var pdfColumns = []float64{8, 16, 40, 18, 38, 18, 16, 48, 30}

func writePDF(w io.Writer, subs []db.Submission) error {
	p := gofpdf.New("L", "mm", "A4", "")
	p.SetMargins(15, 15, 15)
	p.SetAutoPageBreak(true, 15)
	p.SetTitle("Submissions", false)
	p.AddPage()
	tr := p.UnicodeTranslatorFromDescriptor("")

	p.SetFont("Helvetica", "B", 16)
	p.CellFormat(0, 10, "Submissions", "", 1, "", false, 0, "")
	p.SetFont("Helvetica", "", 10)
	p.CellFormat(0, 6, fmt.Sprintf("%d total", len(subs)), "", 1, "", false, 0, "")
	p.Ln(3)

	pageWidth, _ := p.GetPageSize()
	left, _, right, _ := p.GetMargins()
	tableWidth := pageWidth - left - right
	var total float64
	for _, c := range pdfColumns {
		total += c
	}
	const cellHeight = 7.0

	row := func(cells []string, header bool) {
		if header {
			p.SetFont("Helvetica", "B", 9)
			p.SetFillColor(240, 240, 240)
		} else {
			p.SetFont("Helvetica", "", 9)
			p.SetFillColor(255, 255, 255)
		}
		p.SetDrawColor(200, 200, 200)
		for i, text := range cells {
			width := tableWidth * pdfColumns[i] / total
			text = tr(text)
			for p.GetStringWidth(text) > width-3 && len(text) > 3 {
				text = text[:len(text)-4] + "..."
			}
			p.CellFormat(width, cellHeight, " "+text, "1", 0, "", header, 0, "")
		}
		p.Ln(cellHeight)
	}

	row(Header, true)
	for _, s := range subs {
		row(NewRow(s).Cells(), false)
	}

	for _, s := range subs {
		if s.Status != db.StatusFailed || s.Error == "" {
			continue
		}
		p.Ln(4)
		p.SetFont("Helvetica", "B", 11)
		p.CellFormat(0, 7, tr(fmt.Sprintf("#%d %s failed", s.ID, s.Title)), "", 1, "", false, 0, "")
		p.SetFont("Courier", "", 9)
		p.MultiCell(0, 5, tr(s.Error), "", "", false)
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
