package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TxManagerInterface interface {
	RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// txBeginner - часть pgxpool.Pool, нужная менеджеру транзакций.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type TxManager struct {
	db     txBeginner
	logger *zap.Logger
}

func NewTxManager(pool *pgxpool.Pool, logger *zap.Logger) TxManagerInterface {
	return &TxManager{db: pool, logger: logger}
}

// RunInTransaction выполняет fn в одной транзакции.
// Ошибка или паника внутри fn откатывают все записи, иначе коммит.
// Сбои отката и коммита пишутся в лог: после них запись поверки или ТО могла не сохраниться.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		m.logger.Error("Не удалось начать транзакцию", zap.Error(err))
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			m.logger.Error("Паника внутри транзакции, откат", zap.Any("panic", p))
			m.rollback(ctx, tx)
			panic(p)
		} else if err != nil {
			// исходная ошибка важнее ошибки отката
			m.rollback(ctx, tx)
		} else if cerr := tx.Commit(ctx); cerr != nil {
			m.logger.Error("Ошибка при коммите транзакции", zap.Error(cerr))
			err = fmt.Errorf("ошибка при коммите транзакции: %w", cerr)
		}
	}()

	err = fn(tx)
	return err
}

func (m *TxManager) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		m.logger.Warn("Ошибка отката транзакции", zap.Error(err))
	}
}
