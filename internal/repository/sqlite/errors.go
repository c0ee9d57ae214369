package sqlite

import (
	"errors"
	"fmt"
	"streamdb/internal/shared"
	"strings"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// mapError translates constraint failures into the store's sentinel errors.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *sqlitedriver.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%s: %w: %v", op, shared.ErrValidation, err)
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w: %v", op, shared.ErrConflict, err)
		}
	}

	// Base result codes only carry the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%s: %w: %v", op, shared.ErrValidation, err)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%s: %w: %v", op, shared.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
