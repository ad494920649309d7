// Package exports renders comparisons as PDF and XLSX documents and archives them in object
// storage.
package exports

import (
	"fmt"
	"strings"

	"energiebroker_backend/internal/comparison/transport"
	"energiebroker_backend/internal/energy"

	"github.com/shopspring/decimal"
)

// Formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// File is a rendered export.
type File struct {
	Format      string
	FileName    string
	ContentType string
	Data        []byte
}

// Render renders the comparison in the requested format.
func Render(format string, cmp transport.Comparison) (File, error) {
	var (
		data []byte
		err  error
		f    = File{Format: format}
	)
	switch format {
	case FormatPDF:
		data, err = RenderPDF(cmp)
		f.ContentType = contentTypePDF
	case FormatXLSX:
		data, err = RenderXLSX(cmp)
		f.ContentType = contentTypeXLSX
	default:
		return File{}, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return File{}, err
	}
	f.Data = data
	f.FileName = fmt.Sprintf("vergelijking-%s.%s", cmp.GeneratedAt.Format("20060102-1504"), format)
	return f, nil
}

// euro formats an amount the Dutch way: € 1.446,48.
func euro(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("€ %s%s,%s", sign, b.String(), frac)
}

func quotedBy(customer energy.CustomerClass) string {
	if customer == energy.CustomerBusiness {
		return "excl. btw"
	}
	return "incl. btw"
}

func modelLabel(m energy.PricingModel) string {
	switch m {
	case energy.ModelFixed:
		return "Vast"
	case energy.ModelDynamic:
		return "Dynamisch"
	case energy.ModelNegotiated:
		return "Maatwerk"
	}
	return string(m)
}

func fallbackNote(b energy.CostBreakdown) string {
	if !b.DerivedViaFallback {
		return ""
	}
	return "Berekend met standaardwaarden: " + strings.Join(b.Fallbacks, ", ")
}

func profileSummary(p energy.ConsumptionProfile) []string {
	lines := []string{fmt.Sprintf("Stroom: %.0f kWh", p.ElectricityTotal())}
	if p.HasGas() {
		lines = append(lines, fmt.Sprintf("Gas: %.0f m³", p.GasM3()))
	}
	if p.FeedInKwh() > 0 {
		lines = append(lines, fmt.Sprintf("Teruglevering: %.0f kWh", p.FeedInKwh()))
	}
	if p.CapacityElectricity != "" {
		lines = append(lines, "Aansluiting: "+p.CapacityElectricity)
	}
	return lines
}
