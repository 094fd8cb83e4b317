package repositories

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"calibrify/internal/entities"
	"calibrify/pkg/utils"
)

// Querier - общий интерфейс pgxpool.Pool и pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// psql - построитель запросов с плейсхолдерами $1, $2...
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func asPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

func userShort(id *uint64, username, firstName, lastName *string) *entities.UserShort {
	if id == nil {
		return nil
	}
	return &entities.UserShort{
		ID:        *id,
		Username:  utils.SafeDeref(username),
		FirstName: utils.SafeDeref(firstName),
		LastName:  utils.SafeDeref(lastName),
	}
}
