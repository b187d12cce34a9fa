package postgres

import (
	"database/sql"
	"errors"
)

// isNotFound matches the no-rows result through any instrumentation
// wrapping the driver error.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
