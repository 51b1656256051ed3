package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catercost/internal/repository"

	"gorm.io/gorm"
)

// Sentinel errors the handlers map onto HTTP status codes. Services wrap them
// with a message for the client: fmt.Errorf("%w: ...", ErrNotFound).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("service unavailable")
)

// notFound turns gorm.ErrRecordNotFound into ErrNotFound and passes every
// other error through.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// conflict turns repository.ErrDuplicate into ErrConflict.
func conflict(err error, what string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	}
	return err
}

// runTx executes fn inside a transaction. A nil db runs fn with a nil tx,
// which lets tests drive services with in-memory repositories.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// runReadTx is runTx for a self-consistent read of several tables.
func runReadTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
}
