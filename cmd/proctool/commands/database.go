// Package commands implements the proctool CLI commands.
package commands

import (
	"database/sql"

	"github.com/cartops/proctools/config"
	"github.com/cartops/proctools/db"
	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/logger"
)

// openRunResults opens the configured run-results database with migrations
// applied. The caller closes it.
func openRunResults(cfg *config.Config) (*sql.DB, error) {
	database, err := db.Open(cfg.RunResultsDBPath(), logger.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "open run-results database")
	}
	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrap(err, "migrate run-results database")
	}
	return database, nil
}
