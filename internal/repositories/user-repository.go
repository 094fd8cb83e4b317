package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"calibrify/internal/entities"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"
)

const (
	userTable  = "users"
	userFields = "id, username, first_name, last_name, email, password, is_staff, is_active, created_at, updated_at"
)

var allowedUserFilters = mergeFilters(
	textFilters("username", "username"),
	map[string]listFilter{
		"is_staff":  {column: "is_staff", kind: filterBool},
		"is_active": {column: "is_active", kind: filterBool},
	},
)

var userSearchFields = []string{"username", "first_name", "last_name", "email"}

var allowedUserSortFields = map[string]string{
	"username":   "username",
	"created_at": "created_at",
}

type UserRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]*entities.User, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error)
	FindByUsername(ctx context.Context, tx pgx.Tx, username string) (*entities.User, error)
	Create(ctx context.Context, tx pgx.Tx, u entities.User) (uint64, error)
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type userRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &userRepository{storage: storage, logger: logger}
}

func (r *userRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *userRepository) scanRow(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Password,
		&u.IsStaff, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования users: %w", err)
	}
	return &u, nil
}

func (r *userRepository) findOne(ctx context.Context, querier Querier, where sq.Eq) (*entities.User, error) {
	query, args, err := psql.Select(userFields).From(userTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для findOne: %w", err)
	}
	return r.scanRow(querier.QueryRow(ctx, query, args...))
}

func (r *userRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id})
}

func (r *userRepository) FindByUsername(ctx context.Context, tx pgx.Tx, username string) (*entities.User, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"username": username})
}

func (r *userRepository) GetAll(ctx context.Context, filter types.Filter) ([]*entities.User, uint64, error) {
	lq, err := newListQuery(filter, allowedUserFilters, userSearchFields, allowedUserSortFields, nil, "username ASC")
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := lq.apply(psql.Select("COUNT(id)").From(userTable)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения count: %w", err)
	}
	if total == 0 {
		return []*entities.User{}, 0, nil
	}

	query, args, err := paginate(lq.apply(psql.Select(userFields).From(userTable)).OrderBy(lq.orderBy...), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL select: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения select: %w", err)
	}
	defer rows.Close()

	users := make([]*entities.User, 0)
	for rows.Next() {
		u, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации rows: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) Create(ctx context.Context, tx pgx.Tx, u entities.User) (uint64, error) {
	query, args, err := psql.Insert(userTable).
		Columns("username", "first_name", "last_name", "email", "password", "is_staff", "is_active", "created_at", "updated_at").
		Values(u.Username, u.FirstName, u.LastName, u.Email, u.Password, u.IsStaff, u.IsActive, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		if pgErr := asPgError(err); pgErr != nil && pgErr.Code == pgUniqueViolation {
			return 0, apperrors.NewFieldError("username", "Пользователь с таким логином уже существует")
		}
		return 0, fmt.Errorf("ошибка создания users: %w", err)
	}
	return newID, nil
}

// Delete: ссылки created_by / calibrated_by / performed_by обнуляются внешними ключами.
func (r *userRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	query, args, err := psql.Delete(userTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Delete: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления users: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
