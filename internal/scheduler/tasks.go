package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TaskMarketPriceRefresh = "marketprice.refresh"

// DateLayout is the delivery date format carried in task payloads.
const DateLayout = "2006-01-02"

// MarketPriceRefreshPayload names the delivery date to fetch. An empty date means today.
type MarketPriceRefreshPayload struct {
	Date string `json:"date,omitempty"`
}

// Day parses the delivery date in loc. The zero time is returned for an empty date.
func (p MarketPriceRefreshPayload) Day(loc *time.Location) (time.Time, error) {
	if p.Date == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation(DateLayout, p.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid refresh date %q: %w", p.Date, err)
	}
	return day, nil
}

func NewMarketPriceRefreshTask(payload MarketPriceRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMarketPriceRefresh, data), nil
}

func ParseMarketPriceRefreshPayload(task *asynq.Task) (MarketPriceRefreshPayload, error) {
	var payload MarketPriceRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return MarketPriceRefreshPayload{}, err
	}
	return payload, nil
}
