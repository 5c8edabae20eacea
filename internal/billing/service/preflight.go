package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"

	billingdomain "github.com/carlosvidal/aquabill/internal/billing/domain"
	perioddomain "github.com/carlosvidal/aquabill/internal/period/domain"
)

// Validate runs the read-only pre-flight checks for a calculation pass.
// It reports every problem it finds instead of stopping at the first.
func (s *Service) Validate(ctx context.Context, periodID string) (*billingdomain.ValidationReport, error) {
	report := &billingdomain.ValidationReport{Errors: []string{}}

	id, err := parsePeriodID(periodID)
	if err != nil {
		report.Errors = append(report.Errors, "invalid period identifier")
		return report, nil
	}

	period, err := s.loadPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if period == nil {
		report.Errors = append(report.Errors, "period not found")
		return report, nil
	}

	if period.Status != perioddomain.PeriodStatusCalculating {
		report.Errors = append(report.Errors, fmt.Sprintf(
			"period status is %s, calculation requires %s",
			period.Status,
			perioddomain.PeriodStatusCalculating,
		))
	}
	if period.TotalVolume == nil || *period.TotalVolume <= 0 {
		report.Errors = append(report.Errors, "receipt total volume is missing or not positive")
	}
	if period.TotalAmount == nil || *period.TotalAmount <= 0 {
		report.Errors = append(report.Errors, "receipt total amount is missing or not positive")
	}

	units, err := s.condoRepo.ListBillableUnits(ctx, s.db, period.CondominiumID)
	if err != nil {
		return nil, err
	}
	readings, err := s.readingRepo.ListForPeriod(ctx, s.db, period.ID)
	if err != nil {
		return nil, err
	}

	type readingState struct {
		validated bool
		anomalous bool
	}
	byMeter := make(map[snowflake.ID]readingState, len(readings))
	for _, reading := range readings {
		byMeter[reading.MeterID] = readingState{
			validated: reading.Validated,
			anomalous: reading.Anomalous,
		}
	}

	for _, unit := range units {
		state, ok := byMeter[unit.Meter.ID]
		if !ok {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"unit %s has no reading for this period",
				unit.Unit.Number,
			))
			continue
		}
		if state.anomalous && !state.validated {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"unit %s has an anomalous reading pending review",
				unit.Unit.Number,
			))
		}
	}

	report.Valid = len(report.Errors) == 0
	return report, nil
}
