package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// DBTX は*sql.DBと*sql.Txの共通部分。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txContextKey struct{}

// SQLTransactor はdatabase/sqlのトランザクションをcontext経由でリポジトリに伝搬する。
type SQLTransactor struct {
	db TxBeginner
}

// NewSQLTransactor はSQLTransactorを生成する。
func NewSQLTransactor(db TxBeginner) *SQLTransactor {
	return &SQLTransactor{db: db}
}

// WithinTx はfnをトランザクション内で実行する。
// fnがエラーを返した場合はロールバックし、そのエラーをそのまま返す。
// 既にトランザクション内のcontextが渡された場合は外側のトランザクションに参加する。
func (t *SQLTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}

	if err := fn(context.WithValue(ctx, txContextKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("failed to rollback transaction",
				slog.String("error", rbErr.Error()),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// conn はcontextにトランザクションがあればそれを、なければdbを返す。
func conn(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := ctx.Value(txContextKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// compile-time interface check
var _ Transactor = (*SQLTransactor)(nil)
