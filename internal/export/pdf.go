package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/fyerfyer/cersai-digest/internal/extract"
)

const (
	pdfMargin   = 15.0
	pdfKeyWidth = 60.0
	pdfValWidth = 120.0
	pdfLineH    = 6.0
)

// pdfWriter 在gofpdf上绘制键值表
type pdfWriter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// RenderPDF 把批处理结果渲染为A4分页PDF
func RenderPDF(result *extract.BatchResult, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(ReportTitle, true)
	pdf.AddPage()

	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, ReportTitle, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, "Generated on "+generatedAt.Format(timeLayout), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	w.heading("Company Details", 14)
	w.table(companyRows(result.Company))

	if len(result.Assets) > 0 {
		w.heading("Asset Details", 14)
	}
	for i, entry := range result.Assets {
		w.heading(fmt.Sprintf("Asset %d", i+1), 12)
		if entry.Failed() {
			w.table(failureRows(entry.Failure))
			continue
		}
		w.table(fieldRows(entry.Record.Asset, assetLabels))
		w.heading("Security Interest Details", 11)
		w.table(fieldRows(entry.Record.Security, securityLabels))
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) heading(text string, size float64) {
	w.pdf.SetFont("Arial", "B", size)
	w.pdf.CellFormat(0, size*0.7, w.tr(text), "", 1, "L", false, 0, "")
	w.pdf.Ln(2)
}

// table 绘制两列键值表，值过长时在单元格内换行
func (w *pdfWriter) table(rows []row) {
	_, pageH := w.pdf.GetPageSize()

	for _, r := range rows {
		key, val := w.tr(r.Label), w.tr(r.Value)

		w.pdf.SetFont("Arial", "", 9)
		valLines := w.pdf.SplitLines([]byte(val), pdfValWidth-2)
		w.pdf.SetFont("Arial", "B", 9)
		keyLines := w.pdf.SplitLines([]byte(key), pdfKeyWidth-2)

		n := max(len(valLines), len(keyLines), 1)
		h := float64(n) * pdfLineH
		if w.pdf.GetY()+h > pageH-pdfMargin {
			w.pdf.AddPage()
		}

		x, y := w.pdf.GetXY()
		w.pdf.SetFillColor(240, 240, 240)
		w.pdf.Rect(x, y, pdfKeyWidth, h, "FD")
		w.pdf.MultiCell(pdfKeyWidth, pdfLineH, key, "", "L", false)

		w.pdf.SetXY(x+pdfKeyWidth, y)
		w.pdf.SetFont("Arial", "", 9)
		w.pdf.Rect(x+pdfKeyWidth, y, pdfValWidth, h, "D")
		w.pdf.MultiCell(pdfValWidth, pdfLineH, val, "", "L", false)

		w.pdf.SetXY(x, y+h)
	}
	w.pdf.Ln(4)
}
