package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"energiebroker_backend/internal/comparison/service"
	"energiebroker_backend/internal/comparison/transport"
	contracts "energiebroker_backend/internal/contracts/transport"
	"energiebroker_backend/internal/energy"
	"energiebroker_backend/platform/config"
	"energiebroker_backend/platform/logger"
	"energiebroker_backend/platform/validator"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func newCalculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Price one consumption profile against one contract",
		Example: `  energiecalc calculate --combined 3500 --single-rate --capacity-electricity 3x25A \
    --model fixed --rate-single 0.25 --standing-electricity 5
  energiecalc calculate --request profile.yaml -o yaml`,
		RunE: runCalculate,
	}

	f := cmd.Flags()
	f.String("request", "", "YAML or JSON file with a full calculation request; flags override it")

	f.Float64("combined", 0, "Single-rate annual electricity in kWh")
	f.Float64("peak", 0, "Normal-rate annual electricity in kWh")
	f.Float64("off-peak", 0, "Off-peak annual electricity in kWh")
	f.Float64("gas", 0, "Annual gas in m³")
	f.Float64("feed-in", 0, "Annual feed-in in kWh")
	f.Bool("single-rate", false, "The connection has a single-rate meter")
	f.String("capacity-electricity", "", "Electricity connection, e.g. 3x25A")
	f.String("capacity-gas", "", "Gas connection, e.g. G6")
	f.String("customer", "", "Customer class: consumer or business")

	f.String("model", "", "Pricing model: fixed, dynamic or negotiated")
	f.Float64("rate-single", 0, "Single electricity rate in €/kWh")
	f.Float64("rate-normal", 0, "Normal electricity rate in €/kWh")
	f.Float64("rate-off-peak", 0, "Off-peak electricity rate in €/kWh")
	f.Float64("rate-gas", 0, "Gas rate in €/m³")
	f.Float64("markup-electricity", 0, "Dynamic electricity markup in €/kWh")
	f.Float64("markup-gas", 0, "Dynamic gas markup in €/m³")
	f.Float64("markup-feed-in", 0, "Dynamic feed-in markup in €/kWh")
	f.Float64("standing-electricity", 0, "Monthly electricity standing charge in €")
	f.Float64("standing-gas", 0, "Monthly gas standing charge in €")
	f.Float64("feed-in-compensation", 0, "Feed-in administration fee in €/kWh")

	f.Float64("market-day", 0, "Day-ahead electricity price for day hours in €/kWh")
	f.Float64("market-night", 0, "Day-ahead electricity price for night hours in €/kWh")
	f.Float64("market-gas", 0, "Gas market price in €/m³")
	f.Float64("reference-monthly", 0, "Monthly amount to compute savings against in €")
	return cmd
}

func runCalculate(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("output")
	if err := checkFormat(format); err != nil {
		return err
	}

	req, err := buildRequest(cmd.Flags())
	if err != nil {
		return err
	}

	val := validator.New()
	if err := contracts.RegisterValidators(val); err != nil {
		return err
	}
	if err := val.Struct(req); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	svc, err := newService(cmd)
	if err != nil {
		return err
	}

	result, err := svc.Calculate(context.Background(), req)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), format, result, breakdownTable(result))
}

func newService(cmd *cobra.Command) (*service.Service, error) {
	path, _ := cmd.Flags().GetString("tariffs")
	tariffs := energy.DefaultTariffs()
	if err := config.LoadTariffFile(path, &tariffs); err != nil {
		return nil, err
	}
	if err := tariffs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tariffs: %w", err)
	}
	log := logger.NewWithWriter("production", io.Discard)
	return service.New(energy.NewEngine(energy.WithTariffs(tariffs)), nil, log), nil
}

// buildRequest starts from the request file, if any, and applies every flag that was set.
func buildRequest(flags *pflag.FlagSet) (transport.CalculationRequest, error) {
	var req transport.CalculationRequest
	if path, _ := flags.GetString("request"); path != "" {
		loaded, err := readRequest(path)
		if err != nil {
			return req, err
		}
		req = loaded
	}

	optional := func(name string, target **float64) {
		if flags.Changed(name) {
			v, _ := flags.GetFloat64(name)
			*target = &v
		}
	}

	optional("combined", &req.Profile.Combined)
	optional("peak", &req.Profile.Peak)
	optional("off-peak", &req.Profile.OffPeak)
	optional("gas", &req.Profile.Gas)
	optional("feed-in", &req.Profile.FeedIn)
	if flags.Changed("single-rate") {
		req.Profile.SingleRate, _ = flags.GetBool("single-rate")
	}
	if flags.Changed("capacity-electricity") {
		req.Profile.CapacityElectricity, _ = flags.GetString("capacity-electricity")
	}
	if flags.Changed("capacity-gas") {
		req.Profile.CapacityGas, _ = flags.GetString("capacity-gas")
	}
	if flags.Changed("customer") {
		req.CustomerClass, _ = flags.GetString("customer")
	}

	if flags.Changed("model") {
		req.Contract.Model, _ = flags.GetString("model")
	}
	for _, name := range []string{"rate-single", "rate-normal", "rate-off-peak", "rate-gas"} {
		if flags.Changed(name) && req.Contract.Rates == nil {
			req.Contract.Rates = &contracts.Rates{}
		}
	}
	if r := req.Contract.Rates; r != nil {
		optional("rate-single", &r.Single)
		optional("rate-normal", &r.Normal)
		optional("rate-off-peak", &r.OffPeak)
		optional("rate-gas", &r.Gas)
	}
	for _, name := range []string{"markup-electricity", "markup-gas", "markup-feed-in"} {
		if flags.Changed(name) && req.Contract.Markups == nil {
			req.Contract.Markups = &contracts.Markups{}
		}
	}
	if m := req.Contract.Markups; m != nil {
		if flags.Changed("markup-electricity") {
			m.Electricity, _ = flags.GetFloat64("markup-electricity")
		}
		if flags.Changed("markup-feed-in") {
			m.FeedIn, _ = flags.GetFloat64("markup-feed-in")
		}
		optional("markup-gas", &m.Gas)
	}
	optional("standing-electricity", &req.Contract.StandingElectricityMonthly)
	optional("standing-gas", &req.Contract.StandingGasMonthly)
	optional("feed-in-compensation", &req.Contract.FeedInCompensation)

	if flags.Changed("market-day") || flags.Changed("market-night") || flags.Changed("market-gas") {
		if req.MarketPrice == nil {
			req.MarketPrice = &transport.MarketPriceInput{}
		}
		optional("market-day", &req.MarketPrice.ElectricityDay)
		optional("market-night", &req.MarketPrice.ElectricityNight)
		optional("market-gas", &req.MarketPrice.Gas)
	}
	optional("reference-monthly", &req.ReferenceMonthly)
	return req, nil
}

// readRequest decodes a YAML (or JSON, which is valid YAML) file using the request's JSON field
// names.
func readRequest(path string) (transport.CalculationRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return transport.CalculationRequest{}, fmt.Errorf("read request: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return transport.CalculationRequest{}, fmt.Errorf("parse request: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return transport.CalculationRequest{}, fmt.Errorf("parse request: %w", err)
	}

	var req transport.CalculationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return transport.CalculationRequest{}, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}
