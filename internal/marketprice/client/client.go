// Package client provides the HTTP client for the EnergyZero day-ahead price API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"energiebroker_backend/internal/marketprice/transport"
	"energiebroker_backend/platform/logger"
)

const (
	usageElectricity = "1"
	usageGas         = "3"
	intervalHourly   = "4"

	dayStartHour = 6
	dayEndHour   = 23

	// FallbackGasPrice is used when the feed publishes no gas prices for the date.
	FallbackGasPrice = 0.80
)

// ErrNoPrices is returned when the feed has no electricity prices for the requested date.
var ErrNoPrices = errors.New("no electricity prices published")

// Client is the HTTP client for EnergyZero.
type Client struct {
	httpClient *http.Client
	baseURL    string
	location   *time.Location
	log        *logger.Logger
}

// New creates a new EnergyZero client.
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		loc = time.UTC
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		location:   loc,
		log:        log,
	}
}

// FetchDay fetches the electricity and gas prices for the delivery date and summarises them.
func (c *Client) FetchDay(ctx context.Context, date time.Time) (transport.Snapshot, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	electricity, err := c.fetchPrices(ctx, day, usageElectricity)
	if err != nil {
		return transport.Snapshot{}, fmt.Errorf("electricity prices: %w", err)
	}
	if len(electricity) == 0 {
		return transport.Snapshot{}, ErrNoPrices
	}

	gas, err := c.fetchPrices(ctx, day, usageGas)
	if err != nil {
		return transport.Snapshot{}, fmt.Errorf("gas prices: %w", err)
	}

	snap := summarise(electricity, gas, c.location)
	snap.Date = day
	snap.Source = transport.SourceEnergyZero
	snap.FetchedAt = time.Now().UTC()

	c.log.Info("energyzero prices fetched",
		"date", day.Format(time.DateOnly),
		"electricity", snap.ElectricityAvg,
		"gas", snap.Gas,
	)
	return snap, nil
}

func (c *Client) fetchPrices(ctx context.Context, day time.Time, usageType string) ([]apiPrice, error) {
	params := url.Values{}
	params.Set("fromDate", day.Format(time.DateOnly))
	params.Set("tillDate", day.AddDate(0, 0, 1).Format(time.DateOnly))
	params.Set("interval", intervalHourly)
	params.Set("usageType", usageType)
	params.Set("inclBtw", "false")

	reqURL := fmt.Sprintf("%s/v1/energyprices?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("energyzero request failed", "error", err, "url", reqURL)
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("energyzero upstream error", "status", resp.StatusCode, "url", reqURL)
		return nil, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Error("energyzero decode failed", "error", err)
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return body.Prices, nil
}

// apiResponse is the subset of the EnergyZero response we read.
type apiResponse struct {
	Prices []apiPrice `json:"Prices"`
}

type apiPrice struct {
	Price       float64 `json:"price"`
	ReadingDate string  `json:"readingDate"`
}

// hour returns the local delivery hour of the price, falling back to its position in the series.
func (p apiPrice) hour(index int, loc *time.Location) int {
	if p.ReadingDate != "" {
		if ts, err := time.Parse(time.RFC3339, p.ReadingDate); err == nil {
			return ts.In(loc).Hour()
		}
	}
	return index % 24
}

// summarise splits the hourly electricity prices into day (06-23) and night (23-06) averages.
func summarise(electricity, gas []apiPrice, loc *time.Location) transport.Snapshot {
	var (
		sum, daySum, nightSum float64
		dayN, nightN          int
		lo, hi                = math.Inf(1), math.Inf(-1)
	)
	for i, p := range electricity {
		sum += p.Price
		lo = math.Min(lo, p.Price)
		hi = math.Max(hi, p.Price)
		if h := p.hour(i, loc); h >= dayStartHour && h < dayEndHour {
			daySum += p.Price
			dayN++
		} else {
			nightSum += p.Price
			nightN++
		}
	}

	avg := sum / float64(len(electricity))
	snap := transport.Snapshot{
		ElectricityAvg:   avg,
		ElectricityDay:   avg,
		ElectricityNight: avg,
		ElectricityMin:   lo,
		ElectricityMax:   hi,
		Gas:              FallbackGasPrice,
	}
	if dayN > 0 {
		snap.ElectricityDay = daySum / float64(dayN)
	}
	if nightN > 0 {
		snap.ElectricityNight = nightSum / float64(nightN)
	}

	if len(gas) > 0 {
		var gasSum float64
		for _, p := range gas {
			gasSum += p.Price
		}
		snap.Gas = gasSum / float64(len(gas))
	}
	return snap
}
