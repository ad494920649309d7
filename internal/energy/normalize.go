package energy

// NetConsumption is electricity consumption after the feed-in offset (saldering).
type NetConsumption struct {
	Peak    float64 `json:"peak"`
	OffPeak float64 `json:"offPeak"`
	// OffsetApplied is the part of feed-in that was netted against consumption.
	OffsetApplied float64 `json:"offsetApplied"`
	// Surplus is feed-in exceeding total consumption.
	Surplus float64 `json:"surplus"`
}

// Total returns the net billable electricity.
func (n NetConsumption) Total() float64 {
	return n.Peak + n.OffPeak
}

// Normalize applies the feed-in offset to the raw metered consumption.
//
// Single-rate meters net the full feed-in against the combined reading. Dual-rate meters split
// feed-in evenly over both brackets; a bracket that would go negative spills the excess into
// the other bracket, and neither bracket is ever allowed below zero.
func Normalize(p ConsumptionProfile) (NetConsumption, error) {
	if err := p.Validate(); err != nil {
		return NetConsumption{}, err
	}

	feedIn := p.FeedInKwh()
	peak, offPeak := p.split()
	if feedIn == 0 {
		return NetConsumption{Peak: peak, OffPeak: offPeak}, nil
	}

	total := p.ElectricityTotal()
	var net NetConsumption
	if p.SingleRate {
		net.Peak = max(0, total-feedIn)
	} else {
		half := feedIn / 2
		netPeak := peak - half
		netOffPeak := offPeak - half
		if netPeak < 0 {
			netOffPeak += netPeak
			netPeak = 0
		}
		if netOffPeak < 0 {
			netPeak += netOffPeak
			netOffPeak = 0
		}
		net.Peak = max(0, netPeak)
		net.OffPeak = max(0, netOffPeak)
	}

	net.OffsetApplied = total - net.Total()
	net.Surplus = max(0, feedIn-net.OffsetApplied)
	return net, nil
}
