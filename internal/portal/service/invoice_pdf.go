package service

import (
	"bytes"
	"fmt"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/jung-kurt/gofpdf"
)

// InvoicePDF renders invoices as printable A4 PDFs using the built-in
// Helvetica font, so no font files need to ship with the binary.
type InvoicePDF struct {
	// StudioName appears in the document header and PDF metadata.
	StudioName string
}

func NewInvoicePDF(studioName string) *InvoicePDF {
	if studioName == "" {
		studioName = "Halcyon Studio"
	}
	return &InvoicePDF{StudioName: studioName}
}

// Render produces the PDF bytes for an invoice with its line items.
func (g *InvoicePDF) Render(inv domain.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", inv.Number), false)
	pdf.SetAuthor(g.StudioName, false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	sub := fmt.Sprintf("%s  -  issued %s", inv.Number, inv.CreatedAt.Format("Jan 2, 2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	// Parties
	g.sectionTitle(pdf, "Billed to")
	g.kvLine(pdf, "Client", inv.ClientName)
	g.kvLine(pdf, "From", g.StudioName)
	g.kvLine(pdf, "Due", inv.DueDate.Format("Jan 2, 2006"))
	g.kvLine(pdf, "Status", inv.Status)
	pdf.Ln(2)
	g.hr(pdf)

	// Line items
	g.sectionTitle(pdf, "Items")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 7, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range inv.Items {
		amount := item.Quantity * item.UnitPriceCents
		pdf.CellFormat(90, 7, item.Description, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, formatCents(item.UnitPriceCents, inv.Currency), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, formatCents(amount, inv.Currency), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	g.hr(pdf)

	// Total
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(140, 9, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 9, formatCents(inv.TotalCents(), inv.Currency), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *InvoicePDF) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func (g *InvoicePDF) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *InvoicePDF) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 1.5)
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, currency)
}
