package service

import (
	"context"
	"fmt"

	billingdomain "github.com/carlosvidal/aquabill/internal/billing/domain"
	perioddomain "github.com/carlosvidal/aquabill/internal/period/domain"
)

// Statement assembles the reconciliation statement for a CLOSED period.
func (s *Service) Statement(ctx context.Context, periodID string) (*billingdomain.Statement, error) {
	id, err := parsePeriodID(periodID)
	if err != nil {
		return nil, err
	}

	period, err := s.loadPeriod(ctx, id)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, billingdomain.ErrPeriodNotFound
	}
	if period.Status != perioddomain.PeriodStatusClosed {
		return nil, billingdomain.ErrPeriodNotClosed
	}

	condominium, err := s.condoRepo.FindCondominium(ctx, s.db, period.CondominiumID)
	if err != nil {
		return nil, err
	}

	type lineRow struct {
		Number          string
		PreviousReading float64
		CurrentReading  float64
		Consumption     float64
		IndividualCost  float64
		CommonAreaCost  float64
		TotalCost       float64
	}
	var rows []lineRow
	err = s.db.WithContext(ctx).Raw(
		`SELECT u.number, b.previous_reading, b.current_reading, b.consumption,
		        b.individual_cost, b.common_area_cost, b.total_cost
		 FROM bills b
		 JOIN units u ON u.id = b.unit_id
		 WHERE b.period_id = ?
		 ORDER BY u.number ASC`,
		id,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	statement := &billingdomain.Statement{
		PeriodLabel: period.StartDate.Format("2006-01-02"),
	}
	if condominium != nil {
		statement.CondominiumName = condominium.Name
	}
	if period.EndDate != nil {
		statement.PeriodLabel = fmt.Sprintf("%s to %s",
			period.StartDate.Format("2006-01-02"),
			period.EndDate.Format("2006-01-02"),
		)
	}
	if period.TotalVolume != nil {
		statement.TotalVolume = *period.TotalVolume
	}
	if period.TotalAmount != nil {
		statement.TotalAmount = *period.TotalAmount
	}

	for _, row := range rows {
		statement.Lines = append(statement.Lines, billingdomain.StatementLine{
			UnitNumber:      row.Number,
			PreviousReading: row.PreviousReading,
			CurrentReading:  row.CurrentReading,
			Consumption:     row.Consumption,
			IndividualCost:  row.IndividualCost,
			CommonAreaCost:  row.CommonAreaCost,
			TotalCost:       row.TotalCost,
		})
		statement.BilledTotal += row.TotalCost
	}
	statement.BilledTotal = round2(statement.BilledTotal)

	// Surface reconciliation drift on the statement itself so the
	// exported document carries the same warning the calculation did.
	delta := statement.BilledTotal - statement.TotalAmount
	tolerance := s.billing.Get().ReconcileTolerance
	if delta > tolerance || delta < -tolerance {
		statement.Anomalies = append(statement.Anomalies, fmt.Sprintf(
			"billed total %.2f differs from receipt amount %.2f by %.2f",
			statement.BilledTotal,
			statement.TotalAmount,
			delta,
		))
	}

	return statement, nil
}
