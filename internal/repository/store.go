package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store adds transactions to Querier. Every multi-statement state change in
// the service layer runs inside ExecTx so it commits or rolls back as a unit.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(Querier) error) error
}

// SQLStore is the PostgreSQL-backed Store.
type SQLStore struct {
	*Queries
	db *sql.DB
}

// NewStore creates a Store over an open database handle.
func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		Queries: New(db),
		db:      db,
	}
}

// ExecTx runs fn inside a read-committed transaction. Row locks taken by fn
// (SELECT ... FOR UPDATE) are held until commit.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// UniqueViolation builds the error a unique constraint failure produces.
// Test stores use it to mimic the database.
func UniqueViolation(constraint string) error {
	return &pgconn.PgError{
		Code:           uniqueViolation,
		Message:        "duplicate key value violates unique constraint",
		ConstraintName: constraint,
	}
}
