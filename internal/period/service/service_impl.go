package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosvidal/aquabill/internal/clock"
	condominiumdomain "github.com/carlosvidal/aquabill/internal/condominium/domain"
	perioddomain "github.com/carlosvidal/aquabill/internal/period/domain"
	"github.com/carlosvidal/aquabill/pkg/db"
	"github.com/carlosvidal/aquabill/pkg/db/option"
	"github.com/carlosvidal/aquabill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	CondoRepo condominiumdomain.Repository
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	condoRepo  condominiumdomain.Repository
	periodrepo repository.Repository[perioddomain.BillingPeriod]
}

func NewService(p ServiceParam) perioddomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("period.service"),

		genID:      p.GenID,
		clock:      p.Clock,
		condoRepo:  p.CondoRepo,
		periodrepo: repository.ProvideStore[perioddomain.BillingPeriod](p.DB),
	}
}

func (s *Service) Open(ctx context.Context, req perioddomain.OpenRequest) (*perioddomain.BillingPeriod, error) {
	condominiumID, err := condominiumdomain.ParseID(strings.TrimSpace(req.CondominiumID))
	if err != nil || condominiumID == 0 {
		return nil, perioddomain.ErrInvalidCondominium
	}

	condominium, err := s.condoRepo.FindCondominium(ctx, s.db, condominiumID)
	if err != nil {
		return nil, err
	}
	if condominium == nil {
		return nil, perioddomain.ErrInvalidCondominium
	}

	startDate := req.StartDate.UTC()
	if startDate.IsZero() {
		startDate = s.clock.Now()
	}

	var period *perioddomain.BillingPeriod
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		err := tx.Raw(
			`SELECT COUNT(1) FROM billing_periods
			 WHERE condominium_id = ? AND status <> ?`,
			condominiumID,
			perioddomain.PeriodStatusClosed,
		).Scan(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return perioddomain.ErrPeriodAlreadyOpen
		}

		now := s.clock.Now()
		period = &perioddomain.BillingPeriod{
			ID:            s.genID.Generate(),
			CondominiumID: condominiumID,
			StartDate:     startDate,
			Status:        perioddomain.PeriodStatusOpen,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return s.periodrepo.WithTrx(tx).Create(ctx, period)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, perioddomain.ErrPeriodAlreadyOpen
		}
		return nil, err
	}

	s.log.Info("period opened",
		zap.String("period_id", period.ID.String()),
		zap.String("condominium_id", condominiumID.String()),
	)
	return period, nil
}

func (s *Service) SubmitReadings(ctx context.Context, periodID string) (*perioddomain.BillingPeriod, error) {
	period, err := s.FindByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status != perioddomain.PeriodStatusOpen {
		return nil, perioddomain.ErrNotOpen
	}

	units, err := s.condoRepo.ListBillableUnits(ctx, s.db, period.CondominiumID)
	if err != nil {
		return nil, err
	}

	validated, err := s.readingStatusByMeter(ctx, period.ID)
	if err != nil {
		return nil, err
	}

	for _, unit := range units {
		isValidated, ok := validated[unit.Meter.ID]
		if !ok {
			return nil, perioddomain.ErrReadingsIncomplete
		}
		if !isValidated {
			return nil, perioddomain.ErrReadingsNotValidated
		}
	}

	if err := s.transition(ctx, period.ID, perioddomain.PeriodStatusOpen, perioddomain.PeriodStatusPendingReceipt, nil); err != nil {
		return nil, err
	}
	period.Status = perioddomain.PeriodStatusPendingReceipt
	return period, nil
}

func (s *Service) RecordReceipt(ctx context.Context, req perioddomain.RecordReceiptRequest) (*perioddomain.BillingPeriod, error) {
	if req.TotalVolume <= 0 || req.TotalAmount <= 0 {
		return nil, perioddomain.ErrInvalidReceiptTotals
	}

	period, err := s.FindByID(ctx, req.PeriodID)
	if err != nil {
		return nil, err
	}
	if period.Status != perioddomain.PeriodStatusPendingReceipt {
		return nil, perioddomain.ErrNotPendingReceipt
	}

	err = s.transition(ctx, period.ID, perioddomain.PeriodStatusPendingReceipt, perioddomain.PeriodStatusCalculating, map[string]any{
		"total_volume": req.TotalVolume,
		"total_amount": req.TotalAmount,
	})
	if err != nil {
		return nil, err
	}

	period.Status = perioddomain.PeriodStatusCalculating
	period.TotalVolume = &req.TotalVolume
	period.TotalAmount = &req.TotalAmount

	s.log.Info("receipt recorded",
		zap.String("period_id", period.ID.String()),
		zap.Float64("total_volume", req.TotalVolume),
		zap.Float64("total_amount", req.TotalAmount),
	)
	return period, nil
}

func (s *Service) FindByID(ctx context.Context, periodID string) (*perioddomain.BillingPeriod, error) {
	id, err := perioddomain.ParseID(strings.TrimSpace(periodID))
	if err != nil || id == 0 {
		return nil, perioddomain.ErrInvalidID
	}

	period, err := s.periodrepo.FindOne(ctx, &perioddomain.BillingPeriod{ID: id})
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, perioddomain.ErrNotFound
	}
	return period, nil
}

func (s *Service) ListByCondominium(ctx context.Context, condominiumID string) ([]perioddomain.BillingPeriod, error) {
	id, err := condominiumdomain.ParseID(strings.TrimSpace(condominiumID))
	if err != nil || id == 0 {
		return nil, perioddomain.ErrInvalidCondominium
	}

	periods, err := s.periodrepo.Find(ctx,
		&perioddomain.BillingPeriod{CondominiumID: id},
		option.WithOrderBy("start_date DESC"),
	)
	if err != nil {
		return nil, err
	}

	out := make([]perioddomain.BillingPeriod, 0, len(periods))
	for _, p := range periods {
		out = append(out, *p)
	}
	return out, nil
}

func (s *Service) readingStatusByMeter(ctx context.Context, periodID snowflake.ID) (map[snowflake.ID]bool, error) {
	type readingRow struct {
		MeterID   snowflake.ID
		Validated bool
	}
	var rows []readingRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT meter_id, validated FROM readings WHERE period_id = ?`,
		periodID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	validated := make(map[snowflake.ID]bool, len(rows))
	for _, row := range rows {
		validated[row.MeterID] = row.Validated
	}
	return validated, nil
}

func (s *Service) transition(ctx context.Context, id snowflake.ID, from, to perioddomain.PeriodStatus, extra map[string]any) error {
	updates := map[string]any{
		"status":     to,
		"updated_at": s.clock.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := s.db.WithContext(ctx).Model(&perioddomain.BillingPeriod{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race with a concurrent transition.
		switch from {
		case perioddomain.PeriodStatusOpen:
			return perioddomain.ErrNotOpen
		case perioddomain.PeriodStatusPendingReceipt:
			return perioddomain.ErrNotPendingReceipt
		default:
			return perioddomain.ErrNotFound
		}
	}
	return nil
}
