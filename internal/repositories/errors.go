package repositories

import (
	"database/sql"

	"github.com/myrjola/616degrees/internal/errors"
)

var ErrNotFound = errors.NewSentinel("not found")

// notFound translates sql.ErrNoRows into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
