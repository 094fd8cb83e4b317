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
	maintenanceTable  = "maintenance"
	maintenanceFields = `m.id, m.equipment_id, m.maintenance_date, m.performed_by, m.service_provider,
		m.description, m.returned_to_production, m.notes, m.certificate_file, m.created_at, m.updated_at,
		e.name, e.serial_number,
		u.id, u.username, u.first_name, u.last_name`
)

var allowedMaintenanceFilters = mergeFilters(
	map[string]listFilter{
		"equipment":              {column: "m.equipment_id", kind: filterID},
		"performed_by":           {column: "m.performed_by", kind: filterID},
		"returned_to_production": {column: "m.returned_to_production", kind: filterBool},
	},
	dateFilters("maintenance_date", "m.maintenance_date", filterTimestamp),
	textFilters("service_provider", "m.service_provider"),
)

var maintenanceSearchFields = []string{"e.name", "e.serial_number", "m.service_provider", "m.description"}

var allowedMaintenanceSortFields = map[string]string{
	"maintenance_date":       "m.maintenance_date",
	"equipment__name":        "e.name",
	"performed_by__username": "u.username",
}

type MaintenanceRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]*entities.Maintenance, uint64, error)
	FindByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) ([]*entities.Maintenance, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Maintenance, error)
	Create(ctx context.Context, tx pgx.Tx, c entities.Maintenance) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, c entities.Maintenance) error
	UpdateCertificate(ctx context.Context, tx pgx.Tx, id uint64, ref *string) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type maintenanceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
	loc     *time.Location
}

func NewMaintenanceRepository(storage *pgxpool.Pool, logger *zap.Logger, loc *time.Location) MaintenanceRepositoryInterface {
	return &maintenanceRepository{storage: storage, logger: logger, loc: loc}
}

func (r *maintenanceRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *maintenanceRepository) baseSelect() sq.SelectBuilder {
	return psql.Select(maintenanceFields).
		From(maintenanceTable + " m").
		Join("equipment e ON e.id = m.equipment_id").
		LeftJoin("users u ON u.id = m.performed_by")
}

func (r *maintenanceRepository) scanRow(row pgx.Row) (*entities.Maintenance, error) {
	var m entities.Maintenance
	eq := &entities.EquipmentShort{}
	var userID *uint64
	var username, firstName, lastName *string

	err := row.Scan(
		&m.ID, &m.EquipmentID, &m.MaintenanceDate, &m.PerformedBy, &m.ServiceProvider,
		&m.Description, &m.ReturnedToProduction, &m.Notes, &m.CertificateFile, &m.CreatedAt, &m.UpdatedAt,
		&eq.Name, &eq.SerialNumber,
		&userID, &username, &firstName, &lastName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования maintenance: %w", err)
	}
	eq.ID = m.EquipmentID
	m.Equipment = eq
	m.Performer = userShort(userID, username, firstName, lastName)
	return &m, nil
}

func (r *maintenanceRepository) collect(rows pgx.Rows) ([]*entities.Maintenance, error) {
	defer rows.Close()
	list := make([]*entities.Maintenance, 0)
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			r.logger.Error("Ошибка сканирования maintenance", zap.Error(err))
			return nil, err
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации rows: %w", err)
	}
	return list, nil
}

func (r *maintenanceRepository) GetAll(ctx context.Context, filter types.Filter) ([]*entities.Maintenance, uint64, error) {
	lq, err := newListQuery(filter, allowedMaintenanceFilters, maintenanceSearchFields, allowedMaintenanceSortFields, r.loc, "m.maintenance_date DESC", "m.id DESC")
	if err != nil {
		return nil, 0, err
	}

	countBuilder := psql.Select("COUNT(m.id)").
		From(maintenanceTable + " m").
		Join("equipment e ON e.id = m.equipment_id")
	countQuery, countArgs, err := lq.apply(countBuilder).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения count: %w", err)
	}
	if total == 0 {
		return []*entities.Maintenance{}, 0, nil
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

func (r *maintenanceRepository) FindByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) ([]*entities.Maintenance, error) {
	query, args, err := r.baseSelect().
		Where(sq.Eq{"m.equipment_id": equipmentID}).
		OrderBy("m.maintenance_date DESC", "m.id DESC").
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

func (r *maintenanceRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Maintenance, error) {
	query, args, err := r.baseSelect().Where(sq.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByID: %w", err)
	}
	return r.scanRow(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *maintenanceRepository) Create(ctx context.Context, tx pgx.Tx, m entities.Maintenance) (uint64, error) {
	query, args, err := psql.Insert(maintenanceTable).
		Columns("equipment_id", "maintenance_date", "performed_by", "service_provider", "description",
			"returned_to_production", "notes", "certificate_file", "created_at", "updated_at").
		Values(m.EquipmentID, m.MaintenanceDate, m.PerformedBy, m.ServiceProvider, m.Description,
			m.ReturnedToProduction, m.Notes, m.CertificateFile, sq.Expr("NOW()"), sq.Expr("NOW()")).
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
		return 0, fmt.Errorf("ошибка создания maintenance: %w", err)
	}
	return newID, nil
}

// Update не меняет equipment_id.
func (r *maintenanceRepository) Update(ctx context.Context, tx pgx.Tx, m entities.Maintenance) error {
	query, args, err := psql.Update(maintenanceTable).
		Set("maintenance_date", m.MaintenanceDate).
		Set("service_provider", m.ServiceProvider).
		Set("description", m.Description).
		Set("returned_to_production", m.ReturnedToProduction).
		Set("notes", m.Notes).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Update: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления maintenance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *maintenanceRepository) UpdateCertificate(ctx context.Context, tx pgx.Tx, id uint64, ref *string) error {
	query, args, err := psql.Update(maintenanceTable).
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

func (r *maintenanceRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	query, args, err := psql.Delete(maintenanceTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Delete: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления maintenance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
