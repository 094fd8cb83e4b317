package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"calibrify/internal/entities"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"
)

const (
	calibrationTable  = "calibrations"
	calibrationFields = `c.id, c.equipment_id, c.calibration_date, c.calibrated_by, c.calibration_standard,
		c.measurement_point, c.results, c.notes, c.certificate_file, c.created_at, c.updated_at,
		e.name, e.serial_number,
		u.id, u.username, u.first_name, u.last_name`
)

var allowedCalibrationFilters = mergeFilters(
	map[string]listFilter{
		"equipment":     {column: "c.equipment_id", kind: filterID},
		"calibrated_by": {column: "c.calibrated_by", kind: filterID},
	},
	dateFilters("calibration_date", "c.calibration_date", filterTimestamp),
	textFilters("calibration_standard", "c.calibration_standard"),
	textFilters("measurement_point", "c.measurement_point"),
)

var calibrationSearchFields = []string{"e.name", "e.serial_number", "c.calibration_standard", "c.measurement_point"}

var allowedCalibrationSortFields = map[string]string{
	"calibration_date":        "c.calibration_date",
	"equipment__name":         "e.name",
	"calibrated_by__username": "u.username",
}

type CalibrationRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]*entities.Calibration, uint64, error)
	FindByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) ([]*entities.Calibration, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Calibration, error)
	Create(ctx context.Context, tx pgx.Tx, c entities.Calibration) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, c entities.Calibration) error
	UpdateCertificate(ctx context.Context, tx pgx.Tx, id uint64, ref *string) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type calibrationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
	loc     *time.Location
}

func NewCalibrationRepository(storage *pgxpool.Pool, logger *zap.Logger, loc *time.Location) CalibrationRepositoryInterface {
	return &calibrationRepository{storage: storage, logger: logger, loc: loc}
}

func (r *calibrationRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *calibrationRepository) baseSelect() sq.SelectBuilder {
	return psql.Select(calibrationFields).
		From(calibrationTable + " c").
		Join("equipment e ON e.id = c.equipment_id").
		LeftJoin("users u ON u.id = c.calibrated_by")
}

func (r *calibrationRepository) scanRow(row pgx.Row) (*entities.Calibration, error) {
	var c entities.Calibration
	eq := &entities.EquipmentShort{}
	var userID *uint64
	var username, firstName, lastName *string

	err := row.Scan(
		&c.ID, &c.EquipmentID, &c.CalibrationDate, &c.CalibratedBy, &c.CalibrationStandard,
		&c.MeasurementPoint, &c.Results, &c.Notes, &c.CertificateFile, &c.CreatedAt, &c.UpdatedAt,
		&eq.Name, &eq.SerialNumber,
		&userID, &username, &firstName, &lastName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования calibrations: %w", err)
	}
	eq.ID = c.EquipmentID
	c.Equipment = eq
	c.Calibrator = userShort(userID, username, firstName, lastName)
	return &c, nil
}

func (r *calibrationRepository) collect(rows pgx.Rows) ([]*entities.Calibration, error) {
	defer rows.Close()
	list := make([]*entities.Calibration, 0)
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			r.logger.Error("Ошибка сканирования calibration", zap.Error(err))
			return nil, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации rows: %w", err)
	}
	return list, nil
}

func (r *calibrationRepository) GetAll(ctx context.Context, filter types.Filter) ([]*entities.Calibration, uint64, error) {
	lq, err := newListQuery(filter, allowedCalibrationFilters, calibrationSearchFields, allowedCalibrationSortFields, r.loc, "c.calibration_date DESC", "c.id DESC")
	if err != nil {
		return nil, 0, err
	}

	countBuilder := psql.Select("COUNT(c.id)").
		From(calibrationTable + " c").
		Join("equipment e ON e.id = c.equipment_id")
	countQuery, countArgs, err := lq.apply(countBuilder).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения count: %w", err)
	}
	if total == 0 {
		return []*entities.Calibration{}, 0, nil
	}

	query, args, err := paginate(lq.apply(r.baseSelect()).OrderBy(lq.orderBy...), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL select: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения select: %w", err)
	}
	list, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *calibrationRepository) FindByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) ([]*entities.Calibration, error) {
	query, args, err := r.baseSelect().
		Where(sq.Eq{"c.equipment_id": equipmentID}).
		OrderBy("c.calibration_date DESC", "c.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByEquipmentID: %w", err)
	}
	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения FindByEquipmentID: %w", err)
	}
	return r.collect(rows)
}

func (r *calibrationRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Calibration, error) {
	query, args, err := r.baseSelect().Where(sq.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByID: %w", err)
	}
	return r.scanRow(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *calibrationRepository) Create(ctx context.Context, tx pgx.Tx, c entities.Calibration) (uint64, error) {
	query, args, err := psql.Insert(calibrationTable).
		Columns("equipment_id", "calibration_date", "calibrated_by", "calibration_standard", "measurement_point",
			"results", "notes", "certificate_file", "created_at", "updated_at").
		Values(c.EquipmentID, c.CalibrationDate, c.CalibratedBy, c.CalibrationStandard, c.MeasurementPoint,
			c.Results, c.Notes, c.CertificateFile, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		if pgErr := asPgError(err); pgErr != nil && pgErr.Code == pgForeignKeyViolation {
			return 0, apperrors.NewFieldError("equipment", "Оборудование не найдено")
		}
		return 0, fmt.Errorf("ошибка создания calibrations: %w", err)
	}
	return newID, nil
}

// Update не меняет equipment_id и не пересчитывает даты оборудования.
func (r *calibrationRepository) Update(ctx context.Context, tx pgx.Tx, c entities.Calibration) error {
	query, args, err := psql.Update(calibrationTable).
		Set("calibration_date", c.CalibrationDate).
		Set("calibration_standard", c.CalibrationStandard).
		Set("measurement_point", c.MeasurementPoint).
		Set("results", c.Results).
		Set("notes", c.Notes).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Update: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления calibrations: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *calibrationRepository) UpdateCertificate(ctx context.Context, tx pgx.Tx, id uint64, ref *string) error {
	query, args, err := psql.Update(calibrationTable).
		Set("certificate_file", ref).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса UpdateCertificate: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления сертификата: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *calibrationRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	query, args, err := psql.Delete(calibrationTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Delete: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления calibrations: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
