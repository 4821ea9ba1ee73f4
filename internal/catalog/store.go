// Package catalog persists the selection catalog: caption, CTA and hashtag
// candidates, the autopost rules that schedule them, and the decisions the
// executor produced. All reads and writes are scoped by creator so one
// creator's pool never leaks into another's run.
package catalog

import (
	"database/sql"

	"github.com/sirupsen/logrus"
)

// Store wraps the autopost schema tables.
type Store struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewStore creates a catalog store on top of an existing connection pool.
func NewStore(db *sql.DB, logger *logrus.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}
