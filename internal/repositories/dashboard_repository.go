package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"calibrify/internal/entities"
	"calibrify/pkg/constants"
)

// DashboardWindow - границы периодов дашборда как моменты времени.
// Today и WindowEnd - полночь в часовом поясе приложения, WindowEnd исключается.
type DashboardWindow struct {
	Today      time.Time
	WindowEnd  time.Time
	MonthStart time.Time
}

type DashboardRepositoryInterface interface {
	CountEquipment(ctx context.Context) (uint64, error)
	CountDueCalibrations(ctx context.Context, w DashboardWindow) (uint64, error)
	CountOverdueMaintenance(ctx context.Context, w DashboardWindow) (uint64, error)
	CountCompletedCalibrations(ctx context.Context, w DashboardWindow) (uint64, error)
	CountCompletedMaintenance(ctx context.Context, w DashboardWindow) (uint64, error)
	UpcomingCalibrations(ctx context.Context, w DashboardWindow, limit uint64) ([]entities.CalibrationFeedRow, error)
	UpcomingMaintenance(ctx context.Context, w DashboardWindow, limit uint64) ([]entities.MaintenanceFeedRow, error)
	RecentCalibrations(ctx context.Context, w DashboardWindow, limit uint64) ([]entities.CalibrationFeedRow, error)
	RecentMaintenance(ctx context.Context, w DashboardWindow, limit uint64) ([]entities.MaintenanceFeedRow, error)

	// Простая сводка /api/equipment/dashboard_summary. today - календарная дата (DATE).
	CountEquipmentDueBy(ctx context.Context, today time.Time) (uint64, error)
	CountEquipmentOverdue(ctx context.Context, today time.Time) (uint64, error)
	CountPendingMaintenance(ctx context.Context) (uint64, error)
}

type DashboardRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDashboardRepository(storage *pgxpool.Pool, logger *zap.Logger) DashboardRepositoryInterface {
	return &DashboardRepository{storage: storage, logger: logger}
}

func (r *DashboardRepository) count(ctx context.Context, b sq.SelectBuilder) (uint64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *DashboardRepository) CountEquipment(ctx context.Context) (uint64, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From(equipmentTable))
}

// 1. Калибровки в окне [today, today+30], ещё не Completed
func (r *DashboardRepository) CountDueCalibrations(ctx context.Context, w DashboardWindow) (uint64, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From(calibrationTable).Where(sq.And{
		sq.GtOrEq{"calibration_date": w.Today},
		sq.Lt{"calibration_date": w.WindowEnd},
		sq.NotEq{"results": constants.ResultCompleted},
	}))
}

// 2. ТО с датой раньше сегодняшнего дня, не возвращённые в работу
func (r *DashboardRepository) CountOverdueMaintenance(ctx context.Context, w DashboardWindow) (uint64, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From(maintenanceTable).Where(sq.And{
		sq.Lt{"maintenance_date": w.Today},
		sq.Eq{"returned_to_production": false},
	}))
}

func (r *DashboardRepository) CountCompletedCalibrations(ctx context.Context, w DashboardWindow) (uint64, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From(calibrationTable).Where(sq.And{
		sq.GtOrEq{"updated_at": w.MonthStart},
		sq.Eq{"results": constants.ResultCompleted},
	}))
}

func (r *DashboardRepository) CountCompletedMaintenance(ctx context.Context, w DashboardWindow) (uint64, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From(maintenanceTable).Where(sq.And{
		sq.GtOrEq{"updated_at": w.MonthStart},
		sq.Eq{"returned_to_production": true},
	}))
}

const (
	calibrationFeedColumns = `c.id, c.equipment_id, e.name AS equipment_name, e.serial_number AS equipment_serial_number,
		c.calibration_date, c.results, c.updated_at`
	maintenanceFeedColumns = `m.id, m.equipment_id, e.name AS equipment_name, e.serial_number AS equipment_serial_number,
		m.maintenance_date, m.returned_to_production, m.updated_at`
)

func (r *DashboardRepository) selectFeed(ctx context.Context, dest interface{}, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL ленты: %w", err)
	}
	return pgxscan.Select(ctx, r.storage, dest, query, args...)
}

func (r *DashboardRepository) calibrationFeed() sq.SelectBuilder {
	return psql.Select(calibrationFeedColumns).From(calibrationTable + " c").Join("equipment e ON e.id = c.equipment_id")
}

func (r *DashboardRepository) maintenanceFeed() sq.SelectBuilder {
	return psql.Select(maintenanceFeedColumns).From(maintenanceTable + " m").Join("equipment e ON e.id = m.equipment_id")
}

func (r *DashboardRepository) UpcomingCalibrations(ctx context.Context, w DashboardWindow, limit uint64) ([]entities.CalibrationFeedRow, error) {
	var rows []entities.CalibrationFeedRow
	err := r.selectFeed(ctx, &rows, r.calibrationFeed().
		Where(sq.And{sq.GtOrEq{"c.calibration_date": w.Today}, sq.Lt{"c.calibration_date": w.WindowEnd}}).
		OrderBy("c.calibration_date ASC", "c.id ASC").
		Limit(limit))
	return rows, err
}

func (r *DashboardRepository) UpcomingMaintenance(ctx context.Context, w DashboardWindow, limit uint64) ([]entities.MaintenanceFeedRow, error) {
	var rows []entities.MaintenanceFeedRow
	err := r.selectFeed(ctx, &rows, r.maintenanceFeed().
		Where(sq.And{sq.GtOrEq{"m.maintenance_date": w.Today}, sq.Lt{"m.maintenance_date": w.WindowEnd}}).
		OrderBy("m.maintenance_date ASC", "m.id ASC").
		Limit(limit))
	return rows, err
}

func (r *DashboardRepository) RecentCalibrations(ctx context.Context, w DashboardWindow, limit uint64) ([]entities.CalibrationFeedRow, error) {
	var rows []entities.CalibrationFeedRow
	err := r.selectFeed(ctx, &rows, r.calibrationFeed().
		Where(sq.GtOrEq{"c.updated_at": w.MonthStart}).
		OrderBy("c.updated_at DESC", "c.id DESC").
		Limit(limit))
	return rows, err
}

func (r *DashboardRepository) RecentMaintenance(ctx context.Context, w DashboardWindow, limit uint64) ([]entities.MaintenanceFeedRow, error) {
	var rows []entities.MaintenanceFeedRow
	err := r.selectFeed(ctx, &rows, r.maintenanceFeed().
		Where(sq.GtOrEq{"m.updated_at": w.MonthStart}).
		OrderBy("m.updated_at DESC", "m.id DESC").
		Limit(limit))
	return rows, err
}

func (r *DashboardRepository) CountEquipmentDueBy(ctx context.Context, today time.Time) (uint64, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From(equipmentTable).Where(sq.LtOrEq{"next_calibration_date": today}))
}

func (r *DashboardRepository) CountEquipmentOverdue(ctx context.Context, today time.Time) (uint64, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From(equipmentTable).Where(sq.Lt{"next_calibration_date": today}))
}

func (r *DashboardRepository) CountPendingMaintenance(ctx context.Context) (uint64, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From(maintenanceTable).Where(sq.Eq{"returned_to_production": false}))
}
