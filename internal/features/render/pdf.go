package render

import (
	"bytes"
	"context"
	"strings"

	"github.com/go-pdf/fpdf"
)

type PDFRenderer struct{}

func (PDFRenderer) Render(ctx context.Context, vm *ViewModel) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(vm.Reference, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 8, tr(vm.Organization.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	contact := strings.TrimSpace(strings.Join(nonEmpty(vm.Organization.Address, vm.Organization.Phone, vm.Organization.Email), "  |  "))
	if contact != "" {
		pdf.CellFormat(0, 5, tr(contact), "", 1, "L", false, 0, "")
	}
	y := pdf.GetY() + 2
	pdf.Line(20, y, 190, y)
	pdf.Ln(6)

	if vm.Confidential {
		pdf.SetTextColor(176, 0, 0)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "CONFIDENTIAL", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Times", "", 11)
	pdf.CellFormat(85, 6, tr("No. "+vm.Reference), "", 0, "L", false, 0, "")
	pdf.CellFormat(85, 6, vm.Date.Format("02.01.2006"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	for _, r := range vm.Recipients {
		line := strings.Join(nonEmpty(r.Name, r.Department, r.Organization), ", ")
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Times", "B", 12)
	pdf.MultiCell(0, 6, tr(vm.Subject), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Times", "", 12)
	for _, p := range vm.Paragraphs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.MultiCell(0, 6, tr(p), "", "J", false)
		pdf.Ln(2)
	}

	pdf.Ln(12)
	if vm.Signed {
		top := pdf.GetY()
		pdf.SetFont("Times", "", 11)
		pdf.CellFormat(100, 6, tr(vm.SigneeTitle), "", 1, "L", false, 0, "")
		pdf.SetFont("Times", "B", 12)
		pdf.CellFormat(100, 6, tr(vm.SigneeName), "", 1, "L", false, 0, "")

		if vm.QRPayload != "" {
			png, err := encodeQR(vm.QRPayload, qrSize)
			if err != nil {
				return nil, err
			}
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
			pdf.ImageOptions("qr", 160, top-4, 30, 30, false, opts, 0, vm.VerificationLink)
		}
	} else {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, tr(vm.Status+", not signed"), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (PDFRenderer) ContentType() string { return "application/pdf" }
func (PDFRenderer) Extension() string   { return "pdf" }

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
