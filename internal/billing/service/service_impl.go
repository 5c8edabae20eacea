package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/carlosvidal/aquabill/internal/billing/domain"
	"github.com/carlosvidal/aquabill/internal/clock"
	condominiumdomain "github.com/carlosvidal/aquabill/internal/condominium/domain"
	"github.com/carlosvidal/aquabill/internal/config"
	perioddomain "github.com/carlosvidal/aquabill/internal/period/domain"
	ratesdomain "github.com/carlosvidal/aquabill/internal/rates/domain"
	readingdomain "github.com/carlosvidal/aquabill/internal/reading/domain"
	"github.com/carlosvidal/aquabill/pkg/db/option"
	"github.com/carlosvidal/aquabill/pkg/repository"
	"github.com/carlosvidal/aquabill/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Billing     *config.BillingConfigHolder
	Rates       ratesdomain.Resolver
	CondoRepo   condominiumdomain.Repository
	ReadingRepo readingdomain.Repository
	Metrics     *telemetry.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clock       clock.Clock
	billing     *config.BillingConfigHolder
	rates       ratesdomain.Resolver
	condoRepo   condominiumdomain.Repository
	readingRepo readingdomain.Repository
	metrics     *telemetry.Metrics
	billrepo    repository.Repository[billingdomain.Bill]
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("billing.service"),

		genID:       p.GenID,
		clock:       p.Clock,
		billing:     p.Billing,
		rates:       p.Rates,
		condoRepo:   p.CondoRepo,
		readingRepo: p.ReadingRepo,
		metrics:     p.Metrics,
		billrepo:    repository.ProvideStore[billingdomain.Bill](p.DB),
	}
}

func (s *Service) Calculate(ctx context.Context, periodID string) (*billingdomain.CalculationResult, error) {
	started := time.Now()
	result, err := s.calculate(ctx, periodID)
	if err != nil {
		s.metrics.ObserveCalculation("error", time.Since(started))
		return nil, err
	}
	s.metrics.ObserveCalculation("ok", time.Since(started))
	return result, nil
}

func (s *Service) calculate(ctx context.Context, periodID string) (*billingdomain.CalculationResult, error) {
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
	if period.Status != perioddomain.PeriodStatusCalculating {
		return nil, billingdomain.ErrPeriodNotCalculating
	}
	if !period.HasReceipt() {
		return nil, billingdomain.ErrMissingReceiptTotals
	}
	totalVolume := *period.TotalVolume
	totalAmount := *period.TotalAmount

	rates, err := s.rates.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	units, err := s.condoRepo.ListBillableUnits(ctx, s.db, period.CondominiumID)
	if err != nil {
		return nil, err
	}

	charges, err := s.loadExtraCharges(ctx, units)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	result := &billingdomain.CalculationResult{Anomalies: []string{}}

	var sumConsumption, sumIndividualCost float64
	bills := make([]billingdomain.Bill, 0, len(units))

	for _, unit := range units {
		current, err := s.readingRepo.FindForPeriod(ctx, s.db, unit.Meter.ID, period.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			result.Anomalies = append(result.Anomalies, fmt.Sprintf(
				"unit %s: no reading recorded for this period, unit excluded from billing",
				unit.Unit.Number,
			))
			s.metrics.CountAnomaly("missing_reading")
			continue
		}

		previousValue := 0.0
		previous, err := s.readingRepo.FindPrevious(ctx, s.db, unit.Meter.ID, period.CondominiumID)
		if err != nil {
			return nil, err
		}
		if previous != nil {
			previousValue = previous.Value
		}

		consumption, rollover := consumptionFor(current.Value, previousValue, rates)
		if rollover {
			result.Anomalies = append(result.Anomalies, fmt.Sprintf(
				"unit %s: current reading %.2f is below previous %.2f, assuming meter replacement; billing current value %.2f",
				unit.Unit.Number,
				current.Value,
				previousValue,
				current.Value,
			))
			s.metrics.CountAnomaly("meter_rollover")
		}

		individualCost := individualCostFor(consumption, rates)
		sumConsumption += consumption
		sumIndividualCost += individualCost

		bills = append(bills, billingdomain.Bill{
			ID:              s.genID.Generate(),
			PeriodID:        period.ID,
			UnitID:          unit.Unit.ID,
			CurrentReading:  current.Value,
			PreviousReading: previousValue,
			Consumption:     consumption,
			IndividualCost:  individualCost,
			Status:          billingdomain.BillStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	commonConsumption := totalVolume - sumConsumption
	if commonConsumption < 0 {
		commonConsumption = 0
	}
	commonTotalCost := totalAmount - sumIndividualCost
	if commonTotalCost < 0 {
		// Individual costs alone exceed the receipt; never bill negative
		// common charges. The reconciliation check below flags it.
		commonTotalCost = 0
	}

	commonPerUnit := 0.0
	if len(bills) > 0 {
		commonPerUnit = round2(commonTotalCost / float64(len(bills)))
	}

	var billedTotal float64
	for i := range bills {
		bill := &bills[i]
		bill.CommonAreaCost = commonPerUnit

		running := bill.IndividualCost + commonPerUnit
		applied, total := applyExtraCharges(running, charges[bill.UnitID])
		bill.TotalCost = round2(total)
		billedTotal += bill.TotalCost

		if len(applied) > 0 {
			raw, err := marshalApplied(applied)
			if err != nil {
				return nil, err
			}
			bill.ExtraCharges = raw
		}
		s.metrics.ObserveBillTotal(bill.TotalCost)
	}

	delta := billedTotal - totalAmount
	s.metrics.ObserveReconcileDelta(delta)
	tolerance := s.billing.Get().ReconcileTolerance
	if delta > tolerance || delta < -tolerance {
		result.Anomalies = append(result.Anomalies, fmt.Sprintf(
			"billed total %.2f differs from receipt amount %.2f by %.2f",
			billedTotal,
			totalAmount,
			delta,
		))
		s.metrics.CountAnomaly("reconciliation_mismatch")
	}

	if err := s.persist(ctx, period.ID, bills, now); err != nil {
		return nil, err
	}

	result.TotalIndividualConsumption = sumConsumption
	result.CommonAreaConsumption = commonConsumption
	result.CommonAreaCostPerUnit = commonPerUnit
	result.Bills = bills

	s.log.Info("period calculated",
		zap.String("period_id", period.ID.String()),
		zap.Int("bills", len(bills)),
		zap.Int("anomalies", len(result.Anomalies)),
		zap.Float64("total_individual_consumption", sumConsumption),
		zap.Float64("common_area_consumption", commonConsumption),
	)
	return result, nil
}

// persist atomically replaces the period's bills and closes the period.
// Delete-then-insert keeps recalculation idempotent: repeated attempts
// converge instead of duplicating rows.
func (s *Service) persist(ctx context.Context, periodID snowflake.ID, bills []billingdomain.Bill, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM bills WHERE period_id = ?`, periodID).Error; err != nil {
			return err
		}

		for i := range bills {
			if err := s.insertBill(tx, &bills[i]); err != nil {
				return err
			}
		}

		res := tx.Exec(
			`UPDATE billing_periods
			 SET status = ?, end_date = ?, updated_at = ?
			 WHERE id = ? AND status = ?`,
			perioddomain.PeriodStatusClosed,
			now,
			now,
			periodID,
			perioddomain.PeriodStatusCalculating,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent calculation won; roll everything back.
			return billingdomain.ErrPeriodNotCalculating
		}
		return nil
	})
}

func (s *Service) insertBill(tx *gorm.DB, bill *billingdomain.Bill) error {
	return tx.Exec(
		`INSERT INTO bills (
			id, period_id, unit_id, current_reading, previous_reading,
			consumption, individual_cost, common_area_cost, total_cost,
			extra_charges, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID,
		bill.PeriodID,
		bill.UnitID,
		bill.CurrentReading,
		bill.PreviousReading,
		bill.Consumption,
		bill.IndividualCost,
		bill.CommonAreaCost,
		bill.TotalCost,
		bill.ExtraCharges,
		bill.Status,
		bill.CreatedAt,
		bill.UpdatedAt,
	).Error
}

func (s *Service) Reopen(ctx context.Context, periodID string) error {
	id, err := parsePeriodID(periodID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		period, err := s.loadPeriodTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if period == nil {
			return billingdomain.ErrPeriodNotFound
		}
		if period.Status != perioddomain.PeriodStatusClosed {
			return billingdomain.ErrPeriodNotClosed
		}

		if err := tx.Exec(`DELETE FROM bills WHERE period_id = ?`, id).Error; err != nil {
			return err
		}

		res := tx.Exec(
			`UPDATE billing_periods
			 SET status = ?, end_date = NULL, updated_at = ?
			 WHERE id = ? AND status = ?`,
			perioddomain.PeriodStatusPendingReceipt,
			s.clock.Now(),
			id,
			perioddomain.PeriodStatusClosed,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return billingdomain.ErrPeriodNotClosed
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.CountReopen()
	s.log.Warn("period reopened", zap.String("period_id", id.String()))
	return nil
}

func (s *Service) ListBills(ctx context.Context, periodID string) ([]billingdomain.Bill, error) {
	id, err := parsePeriodID(periodID)
	if err != nil {
		return nil, err
	}

	bills, err := s.billrepo.Find(ctx,
		&billingdomain.Bill{PeriodID: id},
		option.WithOrderBy("unit_id ASC"),
	)
	if err != nil {
		return nil, err
	}

	out := make([]billingdomain.Bill, 0, len(bills))
	for _, bill := range bills {
		out = append(out, *bill)
	}
	return out, nil
}

// applyExtraCharges applies charges cumulatively in their stored order.
// Percentage charges compute against the running total at the moment
// they apply, not against the final grand total.
func applyExtraCharges(running float64, charges []billingdomain.ExtraCharge) ([]billingdomain.AppliedCharge, float64) {
	if len(charges) == 0 {
		return nil, running
	}

	applied := make([]billingdomain.AppliedCharge, 0, len(charges))
	for _, charge := range charges {
		amount := charge.Amount
		if charge.Type == billingdomain.ChargeTypePercentage {
			amount = running * charge.Amount / 100
		}
		running += amount
		applied = append(applied, billingdomain.AppliedCharge{
			Description: charge.Description,
			Type:        charge.Type,
			Amount:      charge.Amount,
			Applied:     round2(amount),
		})
	}
	return applied, running
}

func (s *Service) loadExtraCharges(ctx context.Context, units []condominiumdomain.BillableUnit) (map[snowflake.ID][]billingdomain.ExtraCharge, error) {
	if len(units) == 0 {
		return nil, nil
	}

	unitIDs := make([]snowflake.ID, 0, len(units))
	for _, unit := range units {
		unitIDs = append(unitIDs, unit.Unit.ID)
	}

	var rows []billingdomain.ExtraCharge
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, unit_id, description, amount, type, position, created_at
		 FROM unit_extra_charges
		 WHERE unit_id IN ?`,
		unitIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	charges := make(map[snowflake.ID][]billingdomain.ExtraCharge, len(rows))
	for _, row := range rows {
		charges[row.UnitID] = append(charges[row.UnitID], row)
	}
	for unitID := range charges {
		list := charges[unitID]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Position != list[j].Position {
				return list[i].Position < list[j].Position
			}
			return list[i].ID < list[j].ID
		})
		charges[unitID] = list
	}
	return charges, nil
}

func (s *Service) loadPeriod(ctx context.Context, id snowflake.ID) (*perioddomain.BillingPeriod, error) {
	return s.loadPeriodTx(ctx, s.db, id)
}

func (s *Service) loadPeriodTx(ctx context.Context, db *gorm.DB, id snowflake.ID) (*perioddomain.BillingPeriod, error) {
	var period perioddomain.BillingPeriod
	err := db.WithContext(ctx).Raw(
		`SELECT id, condominium_id, start_date, end_date, status, total_volume, total_amount, created_at, updated_at
		 FROM billing_periods WHERE id = ?`,
		id,
	).Scan(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, nil
	}
	return &period, nil
}

func marshalApplied(applied []billingdomain.AppliedCharge) (datatypes.JSON, error) {
	raw, err := json.Marshal(applied)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func parsePeriodID(value string) (snowflake.ID, error) {
	id, err := billingdomain.ParseID(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, billingdomain.ErrInvalidPeriodID
	}
	return id, nil
}
