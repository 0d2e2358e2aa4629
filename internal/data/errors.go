package data

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a row addressed by id or unique key does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict marks transient lock or serialization failures; the whole
	// transaction may be retried.
	ErrConflict = errors.New("transaction conflict")
	// ErrNegativeCounter is returned when a decrement would take a counter below zero.
	ErrNegativeCounter = errors.New("counter would become negative")
)

// MySQL server error numbers.
const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// classify maps driver errors onto the package sentinels so callers can use errors.Is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return errors.Join(ErrDuplicate, err)
		case mysqlLockWaitTimeout, mysqlDeadlock:
			return errors.Join(ErrConflict, err)
		}
		return err
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch {
		case liteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return errors.Join(ErrDuplicate, err)
		case liteErr.Code == sqlite3.ErrBusy, liteErr.Code == sqlite3.ErrLocked:
			return errors.Join(ErrConflict, err)
		}
	}
	return err
}
