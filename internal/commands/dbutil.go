package commands

import (
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/interstitial/internal/app"
	"github.com/dotcommander/interstitial/internal/output"
	"github.com/dotcommander/interstitial/internal/store"
)

// DB is an alias so command code doesn't need to import database/sql.
type DB = sql.DB

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the JSON error response is the output.
	return "error already printed"
}

func (e printedError) Unwrap() error { return e.err }

func openDB() (*DB, func(), error) {
	dbPath, err := app.GetDBPath()
	if err != nil {
		return nil, nil, err
	}

	db, err := store.InitDBWithPath(dbPath)
	if err != nil {
		return nil, nil, err
	}

	return db, func() { _ = db.Close() }, nil
}

func withDB(fn func(db *DB) error) error {
	db, closeDB, err := openDB()
	if err != nil {
		return cmdErr(err)
	}
	defer closeDB()

	if err := fn(db); err != nil {
		return cmdErr(err)
	}
	return nil
}

// cmdErr logs err, prints the JSON error envelope and returns a printedError.
func cmdErr(err error) error {
	if err == nil {
		return nil
	}
	attrs := []any{"error", err.Error()}
	type codedError interface {
		ErrorCode() string
	}
	var coded codedError
	if errors.As(err, &coded) {
		attrs = append(attrs, "error_code", coded.ErrorCode())
	}
	slog.Error("command error", attrs...)
	_ = output.PrintError(err)
	return printedError{err: err}
}

// loadSettings returns effective settings with the --context flag applied.
func loadSettings(cmd *cobra.Command) (app.Settings, error) {
	s, err := app.EffectiveSettings()
	if err != nil {
		return app.Settings{}, err
	}
	if v, ferr := cmd.Flags().GetString("context"); ferr == nil && strings.TrimSpace(v) != "" {
		s.BrowserContext = strings.TrimSpace(v)
	}
	return s, nil
}
