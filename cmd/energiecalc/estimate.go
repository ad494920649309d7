package main

import (
	"fmt"

	"energiebroker_backend/internal/energy"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// estimateResult combines both estimators for output.
type estimateResult struct {
	Usage    energy.UsageEstimate    `json:"usage"`
	Capacity energy.CapacityEstimate `json:"capacity"`
}

func newEstimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate household usage and connection capacity",
		RunE:  runEstimate,
	}
	f := cmd.Flags()
	f.Int("residents", 2, "Number of residents")
	f.Bool("solar", false, "The household has solar panels")
	f.String("dwelling", "", "Dwelling type: apartment, terraced, semi-detached or detached")
	return cmd
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("output")
	if err := checkFormat(format); err != nil {
		return err
	}

	residents, _ := cmd.Flags().GetInt("residents")
	solar, _ := cmd.Flags().GetBool("solar")
	dwelling, _ := cmd.Flags().GetString("dwelling")
	if residents < 1 {
		return fmt.Errorf("residents must be at least 1")
	}
	switch dwelling {
	case "", "apartment", "terraced", "semi-detached", "detached":
	default:
		return fmt.Errorf("unknown dwelling %q", dwelling)
	}

	usage := energy.EstimateHouseholdUsage(residents, solar, dwelling)
	result := estimateResult{Usage: usage, Capacity: energy.EstimateCapacity(usage.Electricity, usage.Gas)}

	table := pterm.TableData{
		{"Schatting", "Waarde"},
		{"Stroom", fmt.Sprintf("%.0f kWh", usage.Electricity)},
		{"Normaal", fmt.Sprintf("%.0f kWh", usage.Peak)},
		{"Dal", fmt.Sprintf("%.0f kWh", usage.OffPeak)},
		{"Gas", fmt.Sprintf("%.0f m³", usage.Gas)},
		{"Aansluiting stroom", result.Capacity.Electricity},
		{"Aansluiting gas", result.Capacity.Gas},
	}
	return render(cmd.OutOrStdout(), format, result, table)
}
