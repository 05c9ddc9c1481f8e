package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrNotFound          = errors.New("repository: not found")
	ErrAlreadyJournaled  = errors.New("repository: transaction already journaled")
	ErrInsufficientStock = errors.New("repository: insufficient stock")
	ErrEmptyBatch        = errors.New("repository: empty journal batch")
	ErrMixedBatch        = errors.New("repository: journal batch mixes transactions")
	ErrDuplicateAccount  = errors.New("repository: account code already exists")
)

// PersistenceError wraps a storage failure. Retrying is safe for journal
// appends because batches are unique per transaction.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// wrap maps driver errors onto the package sentinels and wraps the rest.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyJournaled),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrEmptyBatch),
		errors.Is(err, ErrMixedBatch),
		errors.Is(err, ErrDuplicateAccount):
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
