package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"calibrify/internal/entities"
)

// ScheduleReportFilter - необязательные фильтры выгрузки графика калибровок.
type ScheduleReportFilter struct {
	Category        string
	Location        string
	IncludeInactive bool
}

type ReportRepositoryInterface interface {
	GetCalibrationSchedule(ctx context.Context, filter ScheduleReportFilter) ([]entities.ScheduleReportRow, error)
}

type reportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) ReportRepositoryInterface {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetCalibrationSchedule(ctx context.Context, filter ScheduleReportFilter) ([]entities.ScheduleReportRow, error) {
	builder := psql.Select(
		"id", "name", "serial_number", "category", "location",
		"calibration_interval_type", "calibration_interval_value",
		"last_calibration_date", "next_calibration_date",
	).From(equipmentTable)

	if !filter.IncludeInactive {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Location != "" {
		builder = builder.Where(sq.Eq{"location": filter.Location})
	}

	query, args, err := builder.OrderBy("next_calibration_date ASC NULLS LAST", "name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса графика калибровок: %w", err)
	}

	rows := make([]entities.ScheduleReportRow, 0)
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса графика калибровок: %w", err)
	}
	return rows, nil
}
