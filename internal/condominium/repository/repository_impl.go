package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	condominiumdomain "github.com/carlosvidal/aquabill/internal/condominium/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() condominiumdomain.Repository {
	return &repo{}
}

func (r *repo) FindCondominium(ctx context.Context, db *gorm.DB, id snowflake.ID) (*condominiumdomain.Condominium, error) {
	var condominium condominiumdomain.Condominium
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, address, active, created_at, updated_at
		 FROM condominiums WHERE id = ?`,
		id,
	).Scan(&condominium).Error
	if err != nil {
		return nil, err
	}
	if condominium.ID == 0 {
		return nil, nil
	}
	return &condominium, nil
}

func (r *repo) FindUnit(ctx context.Context, db *gorm.DB, condominiumID, id snowflake.ID) (*condominiumdomain.Unit, error) {
	var unit condominiumdomain.Unit
	err := db.WithContext(ctx).Raw(
		`SELECT id, condominium_id, block_id, resident_id, number, active, created_at, updated_at
		 FROM units WHERE condominium_id = ? AND id = ?`,
		condominiumID,
		id,
	).Scan(&unit).Error
	if err != nil {
		return nil, err
	}
	if unit.ID == 0 {
		return nil, nil
	}
	return &unit, nil
}

type billableUnitRow struct {
	UnitID        snowflake.ID
	CondominiumID snowflake.ID
	BlockID       snowflake.ID
	ResidentID    *snowflake.ID
	Number        string
	MeterID       snowflake.ID
	Serial        string
}

func (r *repo) ListBillableUnits(ctx context.Context, db *gorm.DB, condominiumID snowflake.ID) ([]condominiumdomain.BillableUnit, error) {
	var rows []billableUnitRow
	err := db.WithContext(ctx).Raw(
		`SELECT u.id AS unit_id, u.condominium_id, u.block_id, u.resident_id, u.number,
		        m.id AS meter_id, m.serial
		 FROM units u
		 JOIN meters m ON m.unit_id = u.id AND m.type = ? AND m.active = ?
		 WHERE u.condominium_id = ? AND u.active = ?
		 ORDER BY u.number ASC, u.id ASC`,
		condominiumdomain.MeterTypeWater,
		true,
		condominiumID,
		true,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	units := make([]condominiumdomain.BillableUnit, 0, len(rows))
	for _, row := range rows {
		units = append(units, condominiumdomain.BillableUnit{
			Unit: condominiumdomain.Unit{
				ID:            row.UnitID,
				CondominiumID: row.CondominiumID,
				BlockID:       row.BlockID,
				ResidentID:    row.ResidentID,
				Number:        row.Number,
				Active:        true,
			},
			Meter: condominiumdomain.Meter{
				ID:     row.MeterID,
				UnitID: row.UnitID,
				Type:   condominiumdomain.MeterTypeWater,
				Serial: row.Serial,
				Active: true,
			},
		})
	}
	return units, nil
}
