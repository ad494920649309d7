package exports

import (
	"bytes"
	"fmt"

	"energiebroker_backend/internal/comparison/transport"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook.
const (
	SheetComparison    = "Vergelijking"
	SheetSpecification = "Specificatie"
)

var comparisonHeader = []any{
	"Positie", "Contract", "Leverancier", "Model", "Aanbevolen",
	"Leverancierskosten", "Energiebelasting", "Netbeheerkosten",
	"Totaal excl. btw", "Btw", "Totaal incl. btw", "Per maand", "Besparing per maand", "Standaardwaarden",
}

var specificationHeader = []any{"Contract", "Code", "Omschrijving", "Hoeveelheid", "Eenheid", "Tarief", "Bedrag"}

// RenderXLSX renders the comparison as a workbook with one row per contract and a sheet with
// every line item.
func RenderXLSX(cmp transport.Comparison) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetComparison); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSpecification); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetComparison, "A1", &comparisonHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetSheetRow(SheetSpecification, "A1", &specificationHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	specRow := 2
	for i, e := range cmp.Entries {
		b := e.Breakdown
		row := []any{
			i + 1,
			e.Contract.Name,
			e.Contract.Supplier,
			modelLabel(b.Model),
			e.Contract.Recommended,
			transport.Float(b.SupplierSubtotal),
			transport.Float(b.TaxSubtotal),
			transport.Float(b.NetworkSubtotal),
			transport.Float(b.TotalExclVat),
			transport.Float(b.Vat),
			transport.Float(b.TotalInclVat),
			transport.Float(b.Monthly(cmp.Customer)),
			transport.Float(b.Savings.Monthly),
			fallbackNote(b),
		}
		if err := f.SetSheetRow(SheetComparison, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("write contract row: %w", err)
		}

		for _, l := range b.Lines() {
			line := []any{e.Contract.Name, l.Code, l.Label, l.Quantity, l.Unit, l.Rate, transport.Float(l.Amount)}
			if err := f.SetSheetRow(SheetSpecification, fmt.Sprintf("A%d", specRow), &line); err != nil {
				return nil, fmt.Errorf("write line item: %w", err)
			}
			specRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
