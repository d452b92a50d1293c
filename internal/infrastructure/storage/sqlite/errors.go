package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"hussiny/internal/core/apperror"
)

// mapConstraintErr converts SQLite unique-constraint violations into
// duplicate errors carrying the offending column. Other errors pass
// through wrapped.
func mapConstraintErr(err error, entity string, value string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return apperror.NewDuplicate(entity, constraintField(sqliteErr), value)
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// constraintField extracts the column name from a message like
// "UNIQUE constraint failed: sales.invoice_number".
func constraintField(err sqlite3.Error) string {
	msg := err.Error()
	idx := strings.LastIndex(msg, ".")
	if idx < 0 || idx == len(msg)-1 {
		return "unknown"
	}
	return msg[idx+1:]
}
