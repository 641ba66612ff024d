package models

import "time"

// DefaultBrowserContext is the context key used when none is configured.
// A browser context stands in for one browser profile on one machine: the
// scope a suppression marker applies to.
const DefaultBrowserContext = "default"

// Marker is a persisted suppression marker for one browser context.
type Marker struct {
	ContextKey string    `json:"context_key"`
	ExpiresAt  time.Time `json:"expires_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Active reports whether the marker still suppresses the pipeline at now.
func (m Marker) Active(now time.Time) bool {
	return now.Before(m.ExpiresAt)
}

// MarkerStatus is the read model returned by marker commands.
type MarkerStatus struct {
	ContextKey string     `json:"context_key"`
	Suppressed bool       `json:"suppressed"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Remaining  string     `json:"remaining,omitempty"`
}

// AgreementStatus is the free-form status a user chose on a prompt.
// Only AgreementAgree clears the requirement in the reference service.
type AgreementStatus string

// Agreement status values produced by the default prompts.
const (
	AgreementAgree     AgreementStatus = "agree"
	AgreementDisagree  AgreementStatus = "disagree"
	AgreementDismissed AgreementStatus = "dismissed"
)

// Agreement is one acknowledgment recorded by the reference interrupt service.
type Agreement struct {
	ID             int64           `json:"id"`
	InterruptType  string          `json:"interrupt_type"`
	BrowserContext string          `json:"browser_context"`
	Status         AgreementStatus `json:"status"`
	RecordedAt     time.Time       `json:"recorded_at"`
}
