package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// adjustCounter adds delta to table.column for the row with the given id as
// a single in-place UPDATE, so concurrent adjustments never lose updates.
// A decrement that would go below zero changes nothing and returns
// ErrNegativeCounter.
func adjustCounter(ctx context.Context, ext sqlx.ExtContext, table, column string, id int64, delta int) error {
	if delta == 0 {
		return nil
	}
	query := fmt.Sprintf("UPDATE %s SET %s = %s + ? WHERE id = ? AND %s + ? >= 0", table, column, column, column)
	res, err := ext.ExecContext(ctx, query, delta, id, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust %s.%s: %w", table, column, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	if err := sqlx.GetContext(ctx, ext, &exists, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table), id); err != nil {
		return fmt.Errorf("failed to check %s row: %w", table, classify(err))
	}
	if exists == 0 {
		return fmt.Errorf("%s id %d: %w", table, id, ErrNotFound)
	}
	return fmt.Errorf("%s.%s of id %d by %d: %w", table, column, id, delta, ErrNegativeCounter)
}
