package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/carlosvidal/aquabill/internal/billing/domain"
	"github.com/carlosvidal/aquabill/internal/clock"
	condominiumdomain "github.com/carlosvidal/aquabill/internal/condominium/domain"
	condominiumrepository "github.com/carlosvidal/aquabill/internal/condominium/repository"
	"github.com/carlosvidal/aquabill/internal/config"
	perioddomain "github.com/carlosvidal/aquabill/internal/period/domain"
	ratesdomain "github.com/carlosvidal/aquabill/internal/rates/domain"
	ratesservice "github.com/carlosvidal/aquabill/internal/rates/service"
	readingdomain "github.com/carlosvidal/aquabill/internal/reading/domain"
	readingrepository "github.com/carlosvidal/aquabill/internal/reading/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type engineFixture struct {
	t     *testing.T
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   billingdomain.Service

	condoID snowflake.ID
	blockID snowflake.ID
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	return newEngineFixtureWith(t, config.DefaultBillingConfig())
}

func newEngineFixtureWith(t *testing.T, cfg config.BillingConfig) *engineFixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	err = gdb.AutoMigrate(
		&condominiumdomain.Condominium{},
		&condominiumdomain.Block{},
		&condominiumdomain.Unit{},
		&condominiumdomain.Meter{},
		&perioddomain.BillingPeriod{},
		&readingdomain.Reading{},
		&ratesdomain.Setting{},
		&billingdomain.Bill{},
		&billingdomain.ExtraCharge{},
	)
	require.NoError(t, err)

	// Settings are keyed globally; clear leftovers from earlier tests
	// sharing the in-memory database.
	require.NoError(t, gdb.Exec(`DELETE FROM settings`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := zap.NewNop()

	holder := config.NewStaticBillingConfigHolder(cfg)
	resolver := ratesservice.NewService(ratesservice.ServiceParam{
		DB:      gdb,
		Log:     logger,
		Billing: holder,
	})

	svc := NewService(ServiceParam{
		DB:          gdb,
		Log:         logger,
		GenID:       node,
		Clock:       fake,
		Billing:     holder,
		Rates:       resolver,
		CondoRepo:   condominiumrepository.Provide(),
		ReadingRepo: readingrepository.Provide(),
	})

	f := &engineFixture{
		t:     t,
		db:    gdb,
		node:  node,
		clock: fake,
		svc:   svc,
	}

	f.condoID = node.Generate()
	f.blockID = node.Generate()
	require.NoError(t, gdb.Create(&condominiumdomain.Condominium{
		ID:     f.condoID,
		Name:   "Los Alamos",
		Active: true,
	}).Error)
	require.NoError(t, gdb.Create(&condominiumdomain.Block{
		ID:            f.blockID,
		CondominiumID: f.condoID,
		Name:          "A",
	}).Error)
	return f
}

func (f *engineFixture) setSetting(key, value string) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&ratesdomain.Setting{Key: key, Value: value}).Error)
}

func (f *engineFixture) addUnit(number string) (unitID, meterID snowflake.ID) {
	f.t.Helper()
	unitID = f.node.Generate()
	meterID = f.node.Generate()
	require.NoError(f.t, f.db.Create(&condominiumdomain.Unit{
		ID:            unitID,
		CondominiumID: f.condoID,
		BlockID:       f.blockID,
		Number:        number,
		Active:        true,
	}).Error)
	require.NoError(f.t, f.db.Create(&condominiumdomain.Meter{
		ID:     meterID,
		UnitID: unitID,
		Type:   condominiumdomain.MeterTypeWater,
		Serial: "SN-" + number,
		Active: true,
	}).Error)
	return unitID, meterID
}

func (f *engineFixture) addPeriod(status perioddomain.PeriodStatus, start time.Time, volume, amount *float64) snowflake.ID {
	f.t.Helper()
	id := f.node.Generate()
	period := &perioddomain.BillingPeriod{
		ID:            id,
		CondominiumID: f.condoID,
		StartDate:     start,
		Status:        status,
		TotalVolume:   volume,
		TotalAmount:   amount,
	}
	if status == perioddomain.PeriodStatusClosed {
		end := start.AddDate(0, 1, 0)
		period.EndDate = &end
	}
	require.NoError(f.t, f.db.Create(period).Error)
	return id
}

func (f *engineFixture) addReading(meterID, periodID snowflake.ID, value float64, validated bool) snowflake.ID {
	f.t.Helper()
	id := f.node.Generate()
	require.NoError(f.t, f.db.Create(&readingdomain.Reading{
		ID:        id,
		MeterID:   meterID,
		PeriodID:  periodID,
		Value:     value,
		Validated: validated,
	}).Error)
	return id
}

func (f *engineFixture) periodByID(id snowflake.ID) *perioddomain.BillingPeriod {
	f.t.Helper()
	var period perioddomain.BillingPeriod
	require.NoError(f.t, f.db.Raw(`SELECT * FROM billing_periods WHERE id = ?`, id).Scan(&period).Error)
	return &period
}

func (f *engineFixture) billCount(periodID snowflake.ID) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Raw(`SELECT COUNT(1) FROM bills WHERE period_id = ?`, periodID).Scan(&n).Error)
	return n
}

func ptr(v float64) *float64 { return &v }

func TestCalculate_ClosesPeriodAndReconcilesExactly(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "1.5")
	f.setSetting(ratesdomain.KeyFixedCharge, "5.00")

	unitA, meterA := f.addUnit("A-101")
	unitB, meterB := f.addUnit("A-102")

	// Closed history gives both meters a previous reading.
	previous := f.addPeriod(perioddomain.PeriodStatusClosed, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ptr(20.0), ptr(40.0))
	f.addReading(meterA, previous, 100, true)
	f.addReading(meterB, previous, 50, true)

	current := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(25.0), ptr(50.0))
	f.addReading(meterA, current, 115, true)
	f.addReading(meterB, current, 54, true)

	result, err := f.svc.Calculate(ctx, current.String())
	require.NoError(t, err)

	assert.InDelta(t, 19.0, result.TotalIndividualConsumption, 1e-9)
	assert.InDelta(t, 6.0, result.CommonAreaConsumption, 1e-9)
	assert.InDelta(t, 5.75, result.CommonAreaCostPerUnit, 1e-9)
	assert.Empty(t, result.Anomalies)
	require.Len(t, result.Bills, 2)

	byUnit := make(map[snowflake.ID]billingdomain.Bill, 2)
	for _, bill := range result.Bills {
		byUnit[bill.UnitID] = bill
	}

	billA := byUnit[unitA]
	assert.InDelta(t, 15.0, billA.Consumption, 1e-9)
	assert.InDelta(t, 27.50, billA.IndividualCost, 1e-9)
	assert.InDelta(t, 33.25, billA.TotalCost, 1e-9)

	billB := byUnit[unitB]
	assert.InDelta(t, 4.0, billB.Consumption, 1e-9)
	assert.InDelta(t, 11.00, billB.IndividualCost, 1e-9)
	assert.InDelta(t, 16.75, billB.TotalCost, 1e-9)

	// Bills sum back to the receipt amount exactly.
	assert.InDelta(t, 50.00, billA.TotalCost+billB.TotalCost, 1e-9)

	period := f.periodByID(current)
	assert.Equal(t, perioddomain.PeriodStatusClosed, period.Status)
	require.NotNil(t, period.EndDate)
	assert.True(t, period.EndDate.Equal(f.clock.Now()))
	assert.EqualValues(t, 2, f.billCount(current))
}

func TestCalculate_FirstPeriodUsesZeroPrevious(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "2.0")
	_, meter := f.addUnit("B-201")

	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(12.0), ptr(24.0))
	f.addReading(meter, period, 12, true)

	result, err := f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)
	require.Len(t, result.Bills, 1)

	assert.InDelta(t, 0.0, result.Bills[0].PreviousReading, 1e-9)
	assert.InDelta(t, 12.0, result.Bills[0].Consumption, 1e-9)
	assert.InDelta(t, 24.00, result.Bills[0].IndividualCost, 1e-9)
	assert.Empty(t, result.Anomalies)
}

func TestCalculate_MeterRolloverBillsCurrentValue(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "1.0")
	_, meter := f.addUnit("C-301")

	previous := f.addPeriod(perioddomain.PeriodStatusClosed, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ptr(500.0), ptr(500.0))
	f.addReading(meter, previous, 500, true)

	current := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(10.0), ptr(10.0))
	f.addReading(meter, current, 10, true)

	result, err := f.svc.Calculate(ctx, current.String())
	require.NoError(t, err)
	require.Len(t, result.Bills, 1)

	assert.InDelta(t, 10.0, result.Bills[0].Consumption, 1e-9)
	require.Len(t, result.Anomalies, 1)
	assert.Contains(t, result.Anomalies[0], "below previous")

	// Anomaly is diagnostic; the period still closes.
	assert.Equal(t, perioddomain.PeriodStatusClosed, f.periodByID(current).Status)
}

func TestCalculate_MinimumConsumptionClamp(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "1.5")
	f.setSetting(ratesdomain.KeyMinimumConsumption, "2.0")
	_, meter := f.addUnit("D-401")

	previous := f.addPeriod(perioddomain.PeriodStatusClosed, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ptr(1.0), ptr(3.0))
	f.addReading(meter, previous, 100, true)

	current := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(2.0), ptr(3.0))
	f.addReading(meter, current, 100.5, true)

	result, err := f.svc.Calculate(ctx, current.String())
	require.NoError(t, err)
	require.Len(t, result.Bills, 1)

	assert.InDelta(t, 2.0, result.Bills[0].Consumption, 1e-9)
	assert.InDelta(t, 3.00, result.Bills[0].IndividualCost, 1e-9)
}

func TestCalculate_MissingReadingExcludesUnit(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "1.0")
	unitA, meterA := f.addUnit("E-501")
	_, _ = f.addUnit("E-502") // no reading recorded

	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(10.0), ptr(20.0))
	f.addReading(meterA, period, 8, true)

	result, err := f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)

	require.Len(t, result.Bills, 1)
	assert.Equal(t, unitA, result.Bills[0].UnitID)
	require.Len(t, result.Anomalies, 1)
	assert.Contains(t, result.Anomalies[0], "E-502")
	assert.Contains(t, result.Anomalies[0], "no reading")

	// The full common remainder lands on the one billed unit.
	assert.InDelta(t, 12.00, result.CommonAreaCostPerUnit, 1e-9)
	assert.InDelta(t, 20.00, result.Bills[0].TotalCost, 1e-9)
}

func TestCalculate_CommonAreaEvenSplit(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "1.5")

	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(150.0), ptr(250.0))
	for i := 0; i < 5; i++ {
		_, meter := f.addUnit(fmt.Sprintf("F-%d", 601+i))
		f.addReading(meter, period, 24, true)
	}

	result, err := f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)
	require.Len(t, result.Bills, 5)

	assert.InDelta(t, 120.0, result.TotalIndividualConsumption, 1e-9)
	assert.InDelta(t, 30.0, result.CommonAreaConsumption, 1e-9)
	// 250.00 receipt - 180.00 individual = 70.00 common, split 5 ways.
	assert.InDelta(t, 14.00, result.CommonAreaCostPerUnit, 1e-9)
	for _, bill := range result.Bills {
		assert.InDelta(t, 14.00, bill.CommonAreaCost, 1e-9)
		assert.InDelta(t, 50.00, bill.TotalCost, 1e-9)
	}
	assert.Empty(t, result.Anomalies)
}

func TestCalculate_NegativeCommonClampedToZero(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "2.0")
	_, meter := f.addUnit("G-701")

	// Receipt totals below the individual figures: both remainders clamp
	// to zero and reconciliation flags the mismatch.
	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(5.0), ptr(10.0))
	f.addReading(meter, period, 20, true)

	result, err := f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)
	require.Len(t, result.Bills, 1)

	assert.InDelta(t, 0.0, result.CommonAreaConsumption, 1e-9)
	assert.InDelta(t, 0.0, result.CommonAreaCostPerUnit, 1e-9)
	assert.InDelta(t, 40.00, result.Bills[0].TotalCost, 1e-9)

	require.Len(t, result.Anomalies, 1)
	assert.Contains(t, result.Anomalies[0], "differs from receipt amount")
	assert.Equal(t, perioddomain.PeriodStatusClosed, f.periodByID(period).Status)
}

func TestCalculate_ConfiguredToleranceSuppressesMismatch(t *testing.T) {
	cfg := config.DefaultBillingConfig()
	cfg.ReconcileTolerance = 6.00
	f := newEngineFixtureWith(t, cfg)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "1.0")
	_, meter := f.addUnit("J-901")

	// Billed total 10.00 against a 5.00 receipt: a 5.00 delta trips the
	// default 0.01 tolerance but stays inside the configured 6.00.
	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(10.0), ptr(5.0))
	f.addReading(meter, period, 10, true)

	result, err := f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)
	require.Len(t, result.Bills, 1)
	assert.InDelta(t, 10.00, result.Bills[0].TotalCost, 1e-9)
	assert.Empty(t, result.Anomalies)
	assert.Equal(t, perioddomain.PeriodStatusClosed, f.periodByID(period).Status)
}

func TestCalculate_RequiresCalculatingStatus(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	open := f.addPeriod(perioddomain.PeriodStatusOpen, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), nil, nil)
	_, err := f.svc.Calculate(ctx, open.String())
	assert.ErrorIs(t, err, billingdomain.ErrPeriodNotCalculating)

	_, err = f.svc.Calculate(ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, billingdomain.ErrPeriodNotFound)

	_, err = f.svc.Calculate(ctx, "not-a-number")
	assert.ErrorIs(t, err, billingdomain.ErrInvalidPeriodID)
}

func TestCalculate_RequiresReceiptTotals(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), nil, nil)
	_, err := f.svc.Calculate(ctx, period.String())
	assert.ErrorIs(t, err, billingdomain.ErrMissingReceiptTotals)

	zeroed := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ptr(0.0), ptr(50.0))
	_, err = f.svc.Calculate(ctx, zeroed.String())
	assert.ErrorIs(t, err, billingdomain.ErrMissingReceiptTotals)
}

func TestCalculate_ExtraChargesApplyInOrder(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "1.5")
	unitID, meter := f.addUnit("H-801")

	require.NoError(t, f.db.Create(&billingdomain.ExtraCharge{
		ID:          f.node.Generate(),
		UnitID:      unitID,
		Description: "Gate maintenance",
		Amount:      10.00,
		Type:        billingdomain.ChargeTypeFixed,
		Position:    0,
	}).Error)
	require.NoError(t, f.db.Create(&billingdomain.ExtraCharge{
		ID:          f.node.Generate(),
		UnitID:      unitID,
		Description: "Admin fee",
		Amount:      10,
		Type:        billingdomain.ChargeTypePercentage,
		Position:    1,
	}).Error)

	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(10.0), ptr(15.0))
	f.addReading(meter, period, 10, true)

	result, err := f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)
	require.Len(t, result.Bills, 1)

	bill := result.Bills[0]
	assert.InDelta(t, 15.00, bill.IndividualCost, 1e-9)
	// 15.00 + 10.00 flat = 25.00, then 10% of the running total = 2.50.
	assert.InDelta(t, 27.50, bill.TotalCost, 1e-9)

	var applied []billingdomain.AppliedCharge
	require.NoError(t, json.Unmarshal(bill.ExtraCharges, &applied))
	require.Len(t, applied, 2)
	assert.Equal(t, "Gate maintenance", applied[0].Description)
	assert.InDelta(t, 10.00, applied[0].Applied, 1e-9)
	assert.Equal(t, "Admin fee", applied[1].Description)
	assert.InDelta(t, 2.50, applied[1].Applied, 1e-9)
}

func TestCalculate_AfterReopenKeepsOneBillPerUnit(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "1.0")
	_, meterA := f.addUnit("I-901")
	_, meterB := f.addUnit("I-902")

	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(20.0), ptr(30.0))
	f.addReading(meterA, period, 8, true)
	f.addReading(meterB, period, 6, true)

	_, err := f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.billCount(period))

	require.NoError(t, f.svc.Reopen(ctx, period.String()))
	assert.EqualValues(t, 0, f.billCount(period))
	reopened := f.periodByID(period)
	assert.Equal(t, perioddomain.PeriodStatusPendingReceipt, reopened.Status)
	assert.Nil(t, reopened.EndDate)

	// Receipt totals survive a reopen; push the period back through.
	require.NoError(t, f.db.Exec(
		`UPDATE billing_periods SET status = ? WHERE id = ?`,
		perioddomain.PeriodStatusCalculating, period,
	).Error)

	result, err := f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)
	require.Len(t, result.Bills, 2)
	assert.EqualValues(t, 2, f.billCount(period))

	var duplicates int64
	require.NoError(t, f.db.Raw(
		`SELECT COUNT(1) FROM (
			SELECT unit_id FROM bills WHERE period_id = ? GROUP BY unit_id HAVING COUNT(1) > 1
		)`, period,
	).Scan(&duplicates).Error)
	assert.EqualValues(t, 0, duplicates)
}

func TestReopen_RequiresClosed(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	open := f.addPeriod(perioddomain.PeriodStatusOpen, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), nil, nil)
	assert.ErrorIs(t, f.svc.Reopen(ctx, open.String()), billingdomain.ErrPeriodNotClosed)

	assert.ErrorIs(t, f.svc.Reopen(ctx, f.node.Generate().String()), billingdomain.ErrPeriodNotFound)
}

func TestStatement_SummarisesClosedPeriod(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "1.5")
	f.setSetting(ratesdomain.KeyFixedCharge, "5.00")
	_, meterA := f.addUnit("J-101")
	_, meterB := f.addUnit("J-102")

	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(25.0), ptr(50.0))
	f.addReading(meterA, period, 15, true)
	f.addReading(meterB, period, 4, true)

	_, err := f.svc.Statement(ctx, period.String())
	assert.ErrorIs(t, err, billingdomain.ErrPeriodNotClosed)

	_, err = f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)

	statement, err := f.svc.Statement(ctx, period.String())
	require.NoError(t, err)

	assert.Equal(t, "Los Alamos", statement.CondominiumName)
	assert.Contains(t, statement.PeriodLabel, "2025-02-01")
	require.Len(t, statement.Lines, 2)
	assert.Equal(t, "J-101", statement.Lines[0].UnitNumber)
	assert.Equal(t, "J-102", statement.Lines[1].UnitNumber)
	assert.InDelta(t, 50.00, statement.BilledTotal, 1e-9)
	assert.InDelta(t, 50.00, statement.TotalAmount, 1e-9)
	assert.Empty(t, statement.Anomalies)
}

func TestStatement_FlagsReconciliationDrift(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "2.0")
	_, meter := f.addUnit("J-201")

	// Individual costs exceed the receipt; the statement re-derives the
	// drift from the persisted bills.
	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(5.0), ptr(10.0))
	f.addReading(meter, period, 20, true)

	_, err := f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)

	statement, err := f.svc.Statement(ctx, period.String())
	require.NoError(t, err)

	assert.InDelta(t, 40.00, statement.BilledTotal, 1e-9)
	require.Len(t, statement.Anomalies, 1)
	assert.Contains(t, statement.Anomalies[0], "differs from receipt amount")
}

func TestListBills_ReturnsPersistedBills(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.setSetting(ratesdomain.KeyBasicRate, "1.0")
	_, meter := f.addUnit("K-101")

	period := f.addPeriod(perioddomain.PeriodStatusCalculating, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ptr(10.0), ptr(10.0))
	f.addReading(meter, period, 10, true)

	_, err := f.svc.Calculate(ctx, period.String())
	require.NoError(t, err)

	bills, err := f.svc.ListBills(ctx, period.String())
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, billingdomain.BillStatusPending, bills[0].Status)
	assert.InDelta(t, 10.00, bills[0].TotalCost, 1e-9)
}
