package service

import (
	ratesdomain "github.com/carlosvidal/aquabill/internal/rates/domain"
	"github.com/shopspring/decimal"
)

// consumptionFor derives a unit's billable consumption from its current
// and previous readings. A negative delta means the meter was replaced
// or rolled over; the current value itself is billed and the caller
// flags an anomaly. The minimum-consumption floor applies after the
// replacement adjustment.
func consumptionFor(current, previous float64, rates ratesdomain.WaterRates) (consumption float64, rollover bool) {
	consumption = current - previous
	if consumption < 0 {
		consumption = current
		rollover = true
	}
	if rates.MinimumConsumption != nil && consumption < *rates.MinimumConsumption {
		consumption = *rates.MinimumConsumption
	}
	return consumption, rollover
}

// individualCostFor prices a unit's own consumption. Rounding happens
// once, after the fixed charge is added.
func individualCostFor(consumption float64, rates ratesdomain.WaterRates) float64 {
	cost := consumption * rates.BasicRate
	if rates.FixedCharge != nil {
		cost += *rates.FixedCharge
	}
	return round2(cost)
}

// round2 rounds half-up to two decimal places.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
