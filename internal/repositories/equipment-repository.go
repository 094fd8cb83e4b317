package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"
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
	equipmentTable  = "equipment"
	equipmentFields = `e.id, e.name, e.serial_number, e.category, e.purchase_date, e.model_number, e.manufacturer,
		e.location, e.calibration_interval_type, e.calibration_interval_value, e.notes, e.is_active, e.created_by,
		e.last_calibration_date, e.next_calibration_date, e.created_at, e.updated_at,
		u.id, u.username, u.first_name, u.last_name,
		(SELECT COUNT(*) FROM maintenance m WHERE m.equipment_id = e.id AND NOT m.returned_to_production) AS pending_maintenance`
	equipmentSerialConstraint = "equipment_serial_number_key"
)

// allowedEquipmentFilters - БЕЛЫЙ СПИСОК фильтров списка оборудования
var allowedEquipmentFilters = mergeFilters(
	textFilters("name", "e.name"),
	textFilters("serial_number", "e.serial_number"),
	textFilters("category", "e.category"),
	textFilters("manufacturer", "e.manufacturer"),
	textFilters("location", "e.location"),
	map[string]listFilter{"is_active": {column: "e.is_active", kind: filterBool}},
	dateFilters("last_calibration_date", "e.last_calibration_date", filterDate),
	dateFilters("next_calibration_date", "e.next_calibration_date", filterDate),
)

var equipmentSearchFields = []string{"e.name", "e.serial_number", "e.category", "e.model_number", "e.manufacturer", "e.location"}

// allowedEquipmentSortFields - БЕЛЫЙ СПИСОК для сортировки
var allowedEquipmentSortFields = map[string]string{
	"name":                  "e.name",
	"serial_number":         "e.serial_number",
	"category":              "e.category",
	"manufacturer":          "e.manufacturer",
	"location":              "e.location",
	"last_calibration_date": "e.last_calibration_date",
	"next_calibration_date": "e.next_calibration_date",
}

type EquipmentRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]*entities.Equipment, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	ExistsBySerialNumber(ctx context.Context, tx pgx.Tx, serialNumber string, excludeID uint64) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, e entities.Equipment) error
	UpdateCalibrationDates(ctx context.Context, tx pgx.Tx, id uint64, last, next *time.Time) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type equipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
	loc     *time.Location
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger, loc *time.Location) EquipmentRepositoryInterface {
	return &equipmentRepository{storage: storage, logger: logger, loc: loc}
}

func (r *equipmentRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *equipmentRepository) baseSelect() sq.SelectBuilder {
	return psql.Select(equipmentFields).
		From(equipmentTable + " e").
		LeftJoin("users u ON u.id = e.created_by")
}

func (r *equipmentRepository) scanRow(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	var userID *uint64
	var username, firstName, lastName *string

	err := row.Scan(
		&e.ID, &e.Name, &e.SerialNumber, &e.Category, &e.PurchaseDate, &e.ModelNumber, &e.Manufacturer,
		&e.Location, &e.CalibrationIntervalType, &e.CalibrationIntervalValue, &e.Notes, &e.IsActive, &e.CreatedBy,
		&e.LastCalibrationDate, &e.NextCalibrationDate, &e.CreatedAt, &e.UpdatedAt,
		&userID, &username, &firstName, &lastName,
		&e.PendingMaintenance,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования equipment: %w", err)
	}
	e.Creator = userShort(userID, username, firstName, lastName)
	return &e, nil
}

func (r *equipmentRepository) GetAll(ctx context.Context, filter types.Filter) ([]*entities.Equipment, uint64, error) {
	lq, err := newListQuery(filter, allowedEquipmentFilters, equipmentSearchFields, allowedEquipmentSortFields, r.loc, "e.name ASC", "e.id ASC")
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := lq.apply(psql.Select("COUNT(e.id)").From(equipmentTable + " e")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения count: %w", err)
	}
	if total == 0 {
		return []*entities.Equipment{}, 0, nil
	}

	query, args, err := paginate(lq.apply(r.baseSelect()).OrderBy(lq.orderBy...), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL select: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения select: %w", err)
	}
	defer rows.Close()

	list := make([]*entities.Equipment, 0)
	for rows.Next() {
		e, err := r.scanRow(rows)
		if err != nil {
			r.logger.Error("Ошибка сканирования equipment", zap.Error(err))
			return nil, 0, err
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации rows: %w", err)
	}
	return list, total, nil
}

func (r *equipmentRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	query, args, err := r.baseSelect().Where(sq.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByID: %w", err)
	}
	return r.scanRow(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

// FindByIDForUpdate блокирует строку оборудования до конца транзакции.
func (r *equipmentRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	query, args, err := r.baseSelect().Where(sq.Eq{"e.id": id}).Suffix("FOR UPDATE OF e").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByIDForUpdate: %w", err)
	}
	return r.scanRow(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *equipmentRepository) ExistsBySerialNumber(ctx context.Context, tx pgx.Tx, serialNumber string, excludeID uint64) (bool, error) {
	builder := psql.Select("1").From(equipmentTable).Where(sq.Eq{"serial_number": serialNumber}).Limit(1)
	if excludeID > 0 {
		builder = builder.Where(sq.NotEq{"id": excludeID})
	}
	query, args, err := builder.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("ошибка сборки запроса ExistsBySerialNumber: %w", err)
	}
	var exists bool
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *equipmentRepository) Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error) {
	query, args, err := psql.Insert(equipmentTable).
		Columns("name", "serial_number", "category", "purchase_date", "model_number", "manufacturer", "location",
			"calibration_interval_type", "calibration_interval_value", "notes", "is_active", "created_by",
			"created_at", "updated_at").
		Values(e.Name, e.SerialNumber, e.Category, e.PurchaseDate, e.ModelNumber, e.Manufacturer, e.Location,
			string(e.CalibrationIntervalType), e.CalibrationIntervalValue, e.Notes, e.IsActive, e.CreatedBy,
			sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		return 0, r.translateError(err, "ошибка создания equipment")
	}
	return newID, nil
}

// Update не трогает created_by и даты калибровки: их пишет только планировщик.
func (r *equipmentRepository) Update(ctx context.Context, tx pgx.Tx, e entities.Equipment) error {
	query, args, err := psql.Update(equipmentTable).
		Set("name", e.Name).
		Set("serial_number", e.SerialNumber).
		Set("category", e.Category).
		Set("purchase_date", e.PurchaseDate).
		Set("model_number", e.ModelNumber).
		Set("manufacturer", e.Manufacturer).
		Set("location", e.Location).
		Set("calibration_interval_type", string(e.CalibrationIntervalType)).
		Set("calibration_interval_value", e.CalibrationIntervalValue).
		Set("notes", e.Notes).
		Set("is_active", e.IsActive).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Update: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return r.translateError(err, "ошибка обновления equipment")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) UpdateCalibrationDates(ctx context.Context, tx pgx.Tx, id uint64, last, next *time.Time) error {
	query, args, err := psql.Update(equipmentTable).
		Set("last_calibration_date", last).
		Set("next_calibration_date", next).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса UpdateCalibrationDates: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления дат калибровки: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete каскадно удаляет калибровки и записи ТО (ON DELETE CASCADE).
func (r *equipmentRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	query, args, err := psql.Delete(equipmentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Delete: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления equipment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) translateError(err error, msg string) error {
	if pgErr := asPgError(err); pgErr != nil {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == equipmentSerialConstraint {
				return apperrors.NewFieldError("serial_number", "Оборудование с таким серийным номером уже существует")
			}
			return fmt.Errorf("%s: %w", msg, apperrors.ErrConflict)
		case pgCheckViolation:
			return apperrors.NewHttpError(http.StatusBadRequest, "Недопустимый интервал калибровки", err, nil)
		case pgForeignKeyViolation:
			return apperrors.NewFieldError("created_by", "Пользователь не найден")
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
