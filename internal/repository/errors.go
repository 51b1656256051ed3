package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert or update violates a unique index.
var ErrDuplicate = errors.New("duplicate key")

// ErrReferenced is returned when a delete would leave a foreign key dangling.
var ErrReferenced = errors.New("row is still referenced")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// compositionLockKey identifies the transaction-scoped advisory lock taken by
// every write that changes which ingredients and recipes a recipe uses.
const compositionLockKey int64 = 0x63617465726373

// translateErr maps driver-level constraint violations onto repository errors.
// Postgres reports them as *pgconn.PgError; other dialects go through GORM's
// own translation (gorm.Config.TranslateError).
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Join(ErrDuplicate, err)
		case pgForeignKeyViolation:
			return errors.Join(ErrReferenced, err)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(ErrDuplicate, err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return errors.Join(ErrReferenced, err)
	}
	return err
}

// lockComposition serializes composition writers for the rest of tx. Two
// concurrent writers could otherwise each validate against a catalog that
// lacks the other's change and together persist a cycle or a dangling item.
// SQLite already serializes writers, so only Postgres takes the lock.
func lockComposition(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?)", compositionLockKey).Error
}

// pageBounds normalizes page/limit and returns the row offset.
func pageBounds(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit, (page - 1) * limit
}
