package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dotcommander/interstitial/internal/models"
)

// RecordAgreement appends an acknowledgment for an interrupt type in a browser context.
func RecordAgreement(ctx context.Context, db *sql.DB, interruptType, browserContext string, status models.AgreementStatus, now time.Time) (*models.Agreement, error) {
	if err := validateKey("interrupt type", interruptType); err != nil {
		return nil, err
	}
	if err := validateKey("browser context", browserContext); err != nil {
		return nil, err
	}

	var id int64
	err := RetryWithBackoff(func() error {
		res, err := db.ExecContext(ctx, `
			INSERT INTO agreements (interrupt_type, browser_context, status, recorded_at)
			VALUES (?, ?, ?, ?)
		`, interruptType, browserContext, string(status), toMillis(now))
		if err != nil {
			return fmt.Errorf("failed to record agreement: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	return &models.Agreement{
		ID:             id,
		InterruptType:  interruptType,
		BrowserContext: browserContext,
		Status:         status,
		RecordedAt:     fromMillis(toMillis(now)),
	}, nil
}

// LatestAgreement returns the most recent agreement for a type and context, or (nil, nil).
func LatestAgreement(ctx context.Context, db *sql.DB, interruptType, browserContext string) (*models.Agreement, error) {
	var a models.Agreement
	var status string
	var recordedAt int64
	err := db.QueryRowContext(ctx, `
		SELECT id, interrupt_type, browser_context, status, recorded_at
		FROM agreements
		WHERE interrupt_type = ? AND browser_context = ?
		ORDER BY id DESC
		LIMIT 1
	`, interruptType, browserContext).Scan(&a.ID, &a.InterruptType, &a.BrowserContext, &status, &recordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load agreement: %w", err)
	}
	a.Status = models.AgreementStatus(status)
	a.RecordedAt = fromMillis(recordedAt)
	return &a, nil
}

// ListAgreements returns agreements for a browser context, newest first.
// An empty browserContext lists every context.
func ListAgreements(ctx context.Context, db *sql.DB, browserContext string, limit int) ([]models.Agreement, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, interrupt_type, browser_context, status, recorded_at
		FROM agreements
	`
	args := []any{}
	if browserContext != "" {
		query += ` WHERE browser_context = ?`
		args = append(args, browserContext)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list agreements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Agreement
	for rows.Next() {
		var a models.Agreement
		var status string
		var recordedAt int64
		if err := rows.Scan(&a.ID, &a.InterruptType, &a.BrowserContext, &status, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan agreement: %w", err)
		}
		a.Status = models.AgreementStatus(status)
		a.RecordedAt = fromMillis(recordedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}
