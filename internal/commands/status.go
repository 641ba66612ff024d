package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/interstitial/internal/actions"
	"github.com/dotcommander/interstitial/internal/app"
	"github.com/dotcommander/interstitial/internal/output"
	"github.com/dotcommander/interstitial/internal/store"
)

// NewStatusCmd reports database location, schema, counts and the current marker.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show installation status and the marker for this browser context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return cmdErr(err)
	}
	dbPath, dbSource, err := app.ResolveDBPathDetailed()
	if err != nil {
		return cmdErr(err)
	}

	type dbInfo struct {
		Path      string `json:"path"`
		Source    string `json:"source"`
		OK        bool   `json:"ok"`
		SizeBytes *int64 `json:"size_bytes,omitempty"`
		Error     string `json:"error,omitempty"`
	}
	type resp struct {
		DB             dbInfo                `json:"db"`
		BackendURL     string                `json:"backend_url"`
		BrowserContext string                `json:"browser_context"`
		Interrupts     []string              `json:"interrupts"`
		Local          *actions.StatusReport `json:"local,omitempty"`
	}

	result := resp{
		DB:             dbInfo{Path: dbPath, Source: dbSource},
		BackendURL:     settings.BackendURL,
		BrowserContext: settings.BrowserContext,
		Interrupts:     interruptIDs(settings.Interrupts),
	}

	db, err := store.InitDBWithPath(dbPath)
	if err != nil {
		result.DB.Error = err.Error()
		return output.PrintSuccess(result)
	}
	defer func() { _ = db.Close() }()
	result.DB.OK = true

	if stat, err := os.Stat(dbPath); err == nil {
		size := stat.Size()
		result.DB.SizeBytes = &size
	}

	if report, err := actions.Status(contextOrBackground(cmd), db, settings.BrowserContext, time.Now()); err == nil {
		result.Local = report
	} else {
		result.DB.Error = err.Error()
	}
	return output.PrintSuccess(result)
}
