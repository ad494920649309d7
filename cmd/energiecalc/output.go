package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"energiebroker_backend/internal/comparison/transport"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

// render writes v as JSON or YAML, or the table for the table format. YAML keys follow the JSON
// field names.
func render(w io.Writer, format string, v any, table pterm.TableData) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}

	out, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(table).
		Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func breakdownTable(b transport.BreakdownResponse) pterm.TableData {
	data := pterm.TableData{{"Post", "Hoeveelheid", "Tarief", "Bedrag"}}
	for _, l := range b.Lines {
		qty, rate := "", ""
		if l.Quantity != 0 {
			qty = strconv.FormatFloat(l.Quantity, 'f', -1, 64) + " " + l.Unit
		}
		if l.Rate != 0 {
			rate = strconv.FormatFloat(l.Rate, 'f', -1, 64)
		}
		data = append(data, []string{l.Label, qty, rate, money(l.Amount)})
	}

	data = append(data,
		[]string{"Totaal excl. btw", "", "", money(b.TotalExclVat)},
		[]string{"Btw", "", "", money(b.Vat)},
		[]string{"Totaal incl. btw", "", "", money(b.TotalInclVat)},
		[]string{"Per maand (" + b.Customer + ")", "", "", money(b.Monthly)},
		[]string{"Besparing per maand", "", "", money(b.Savings.Monthly)},
	)
	if b.DerivedViaFallback {
		for _, f := range b.Fallbacks {
			data = append(data, []string{"Standaardwaarde: " + f, "", "", ""})
		}
	}
	return data
}

func money(v float64) string {
	return fmt.Sprintf("€ %.2f", v)
}
