package exports

import (
	"bytes"
	"fmt"

	"energiebroker_backend/internal/comparison/transport"
	"energiebroker_backend/internal/energy"

	"github.com/jung-kurt/gofpdf"
)

var summaryColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 8, "C"},
	{"Contract", 48, "L"},
	{"Leverancier", 38, "L"},
	{"Model", 22, "L"},
	{"Per maand", 22, "R"},
	{"Per jaar", 24, "R"},
	{"Besparing", 18, "R"},
}

// RenderPDF renders an A4 summary of the comparison followed by a specification per contract.
func RenderPDF(cmp transport.Comparison) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 9, tr("Vergelijking energiecontracten"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Gegenereerd: %s", cmp.GeneratedAt.Format("02-01-2006 15:04")))
	pdf.Ln(5)
	for _, line := range profileSummary(cmp.Profile) {
		pdf.Cell(0, 5, tr(line))
		pdf.Ln(5)
	}
	pdf.Cell(0, 5, tr(fmt.Sprintf("Bedragen %s", quotedBy(cmp.Customer))))
	pdf.Ln(5)
	if cmp.Market != nil {
		pdf.Cell(0, 5, tr(fmt.Sprintf("Marktprijs stroom dag/nacht: %.5f / %.5f per kWh, gas %.5f per m³ (%s)",
			cmp.Market.ElectricityDay, cmp.Market.ElectricityNight, cmp.Market.Gas, cmp.Market.Source)))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	for _, col := range summaryColumns {
		pdf.CellFormat(col.width, 6, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for i, e := range cmp.Entries {
		b := e.Breakdown
		values := []string{
			fmt.Sprintf("%d", i+1),
			e.Contract.Name,
			e.Contract.Supplier,
			modelLabel(b.Model),
			euro(b.Monthly(cmp.Customer)),
			euro(b.Annual(cmp.Customer)),
			euro(b.Savings.Monthly),
		}
		for j, col := range summaryColumns {
			pdf.CellFormat(col.width, 6, tr(values[j]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if cmp.Excluded > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(0, 5, fmt.Sprintf("%d contract(en) niet beschikbaar voor dit verbruik.", cmp.Excluded))
		pdf.Ln(5)
	}

	for _, e := range cmp.Entries {
		writeSpecification(pdf, tr, e, cmp.Customer)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSpecification(pdf *gofpdf.Fpdf, tr func(string) string, e transport.Entry, customer energy.CustomerClass) {
	b := e.Breakdown
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("%s - %s", e.Contract.Name, e.Contract.Supplier)))
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 9)
	for _, l := range b.Lines() {
		label := l.Label
		if l.Quantity > 0 && l.Unit != "" {
			label = fmt.Sprintf("%s (%.0f %s x %.5f)", l.Label, l.Quantity, l.Unit, l.Rate)
		}
		pdf.CellFormat(140, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 5, tr(euro(l.Amount)), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	totals := []struct {
		label  string
		amount string
	}{
		{"Leverancierskosten", euro(b.SupplierSubtotal)},
		{"Energiebelasting", euro(b.TaxSubtotal)},
		{"Netbeheerkosten", euro(b.NetworkSubtotal)},
		{"Totaal excl. btw", euro(b.TotalExclVat)},
		{"Btw", euro(b.Vat)},
		{"Totaal incl. btw", euro(b.TotalInclVat)},
		{fmt.Sprintf("Per maand %s", quotedBy(customer)), euro(b.Monthly(customer))},
		{"Besparing per jaar", euro(b.Savings.Annual)},
	}
	pdf.SetFont("Arial", "B", 9)
	for _, t := range totals {
		pdf.CellFormat(140, 5, tr(t.label), "T", 0, "L", false, 0, "")
		pdf.CellFormat(40, 5, tr(t.amount), "T", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if note := fallbackNote(b); note != "" {
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, 4, tr(note), "", "L", false)
	}
}
