package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	perioddomain "github.com/carlosvidal/aquabill/internal/period/domain"
	readingdomain "github.com/carlosvidal/aquabill/internal/reading/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() readingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reading *readingdomain.Reading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO readings (id, meter_id, period_id, value, validated, anomalous, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.MeterID,
		reading.PeriodID,
		reading.Value,
		reading.Validated,
		reading.Anomalous,
		reading.Notes,
		reading.CreatedAt,
		reading.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, reading *readingdomain.Reading) error {
	return db.WithContext(ctx).Exec(
		`UPDATE readings
		 SET value = ?, validated = ?, anomalous = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		reading.Value,
		reading.Validated,
		reading.Anomalous,
		reading.Notes,
		reading.UpdatedAt,
		reading.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*readingdomain.Reading, error) {
	var reading readingdomain.Reading
	err := db.WithContext(ctx).Raw(
		`SELECT id, meter_id, period_id, value, validated, anomalous, notes, created_at, updated_at
		 FROM readings WHERE id = ?`,
		id,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) FindForPeriod(ctx context.Context, db *gorm.DB, meterID, periodID snowflake.ID) (*readingdomain.Reading, error) {
	var reading readingdomain.Reading
	err := db.WithContext(ctx).Raw(
		`SELECT id, meter_id, period_id, value, validated, anomalous, notes, created_at, updated_at
		 FROM readings WHERE meter_id = ? AND period_id = ?`,
		meterID,
		periodID,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) ListForPeriod(ctx context.Context, db *gorm.DB, periodID snowflake.ID) ([]readingdomain.Reading, error) {
	var readings []readingdomain.Reading
	err := db.WithContext(ctx).Raw(
		`SELECT id, meter_id, period_id, value, validated, anomalous, notes, created_at, updated_at
		 FROM readings WHERE period_id = ? ORDER BY created_at ASC`,
		periodID,
	).Scan(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *repo) FindPrevious(ctx context.Context, db *gorm.DB, meterID, condominiumID snowflake.ID) (*readingdomain.Reading, error) {
	var reading readingdomain.Reading
	err := db.WithContext(ctx).Raw(
		`SELECT r.id, r.meter_id, r.period_id, r.value, r.validated, r.anomalous, r.notes, r.created_at, r.updated_at
		 FROM readings r
		 JOIN billing_periods p ON p.id = r.period_id
		 WHERE r.meter_id = ? AND p.condominium_id = ? AND p.status = ?
		 ORDER BY p.end_date DESC
		 LIMIT 1`,
		meterID,
		condominiumID,
		perioddomain.PeriodStatusClosed,
	).Scan(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}
