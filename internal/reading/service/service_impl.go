package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosvidal/aquabill/internal/clock"
	perioddomain "github.com/carlosvidal/aquabill/internal/period/domain"
	readingdomain "github.com/carlosvidal/aquabill/internal/reading/domain"
	"github.com/carlosvidal/aquabill/pkg/db"
	"github.com/carlosvidal/aquabill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  readingdomain.Repository
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	repo       readingdomain.Repository
	periodrepo repository.Repository[perioddomain.BillingPeriod]
}

func NewService(p ServiceParam) readingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("reading.service"),

		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		periodrepo: repository.ProvideStore[perioddomain.BillingPeriod](p.DB),
	}
}

func (s *Service) Record(ctx context.Context, req readingdomain.RecordRequest) (*readingdomain.Reading, error) {
	periodID, err := readingdomain.ParseID(strings.TrimSpace(req.PeriodID))
	if err != nil || periodID == 0 {
		return nil, readingdomain.ErrInvalidPeriod
	}
	meterID, err := readingdomain.ParseID(strings.TrimSpace(req.MeterID))
	if err != nil || meterID == 0 {
		return nil, readingdomain.ErrInvalidMeter
	}
	if req.Value < 0 {
		return nil, readingdomain.ErrNegativeValue
	}

	period, err := s.periodrepo.FindOne(ctx, &perioddomain.BillingPeriod{ID: periodID})
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, readingdomain.ErrInvalidPeriod
	}
	if period.Status != perioddomain.PeriodStatusOpen {
		return nil, readingdomain.ErrPeriodNotOpen
	}

	now := s.clock.Now()

	existing, err := s.repo.FindForPeriod(ctx, s.db, meterID, periodID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Value = req.Value
		existing.Notes = req.Notes
		existing.Validated = false
		existing.Anomalous = false
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, s.db, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	reading := &readingdomain.Reading{
		ID:        s.genID.Generate(),
		MeterID:   meterID,
		PeriodID:  periodID,
		Value:     req.Value,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, reading); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, readingdomain.ErrDuplicateEntry
		}
		return nil, err
	}

	s.log.Info("reading recorded",
		zap.String("period_id", periodID.String()),
		zap.String("meter_id", meterID.String()),
		zap.Float64("value", req.Value),
	)
	return reading, nil
}

func (s *Service) Review(ctx context.Context, req readingdomain.ReviewRequest) (*readingdomain.Reading, error) {
	readingID, err := readingdomain.ParseID(strings.TrimSpace(req.ReadingID))
	if err != nil || readingID == 0 {
		return nil, readingdomain.ErrInvalidID
	}

	reading, err := s.repo.FindByID(ctx, s.db, readingID)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, readingdomain.ErrNotFound
	}

	period, err := s.periodrepo.FindOne(ctx, &perioddomain.BillingPeriod{ID: reading.PeriodID})
	if err != nil {
		return nil, err
	}
	if period != nil && period.Status == perioddomain.PeriodStatusClosed {
		return nil, readingdomain.ErrPeriodClosed
	}

	if req.Validated != nil {
		reading.Validated = *req.Validated
	}
	if req.Anomalous != nil {
		reading.Anomalous = *req.Anomalous
	}
	if req.Notes != nil {
		reading.Notes = *req.Notes
	}
	reading.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

func (s *Service) ListForPeriod(ctx context.Context, periodID string) ([]readingdomain.Reading, error) {
	id, err := readingdomain.ParseID(strings.TrimSpace(periodID))
	if err != nil || id == 0 {
		return nil, readingdomain.ErrInvalidPeriod
	}
	return s.repo.ListForPeriod(ctx, s.db, id)
}
