package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/interstitial/internal/models"
)

// Settings represents configuration loaded from config.yaml (or config.toml).
// Field names match snake_case keys in every format.
type Settings struct {
	DBPath             string              `yaml:"db_path" toml:"db_path" json:"db_path,omitempty" jsonschema:"description=SQLite database path"`
	BackendURL         string              `yaml:"backend_url" toml:"backend_url" json:"backend_url,omitempty" jsonschema:"description=Base URL of the interrupt service"`
	SupportContact     string              `yaml:"support_contact" toml:"support_contact" json:"support_contact,omitempty" jsonschema:"description=Contact named in failure notices"`
	BrowserContext     string              `yaml:"browser_context" toml:"browser_context" json:"browser_context,omitempty" jsonschema:"description=Browser context whose marker run uses"`
	HTTPTimeoutSeconds int                 `yaml:"http_timeout_seconds" toml:"http_timeout_seconds" json:"http_timeout_seconds,omitempty" jsonschema:"minimum=0,maximum=300"`
	ListenAddr         string              `yaml:"listen_addr" toml:"listen_addr" json:"listen_addr,omitempty" jsonschema:"description=Listen address for serve"`
	Interrupts         []InterruptSettings `yaml:"interrupts" toml:"interrupts" json:"interrupts,omitempty" jsonschema:"description=Interrupts in priority order"`
}

// InterruptSettings configures one interrupt type. Order in Settings.Interrupts is priority.
type InterruptSettings struct {
	ID          string   `yaml:"id" toml:"id" json:"id" jsonschema:"required,minLength=1,description=Interrupt type identifier"`
	Title       string   `yaml:"title" toml:"title" json:"title,omitempty"`
	Body        string   `yaml:"body" toml:"body" json:"body,omitempty"`
	StyleClass  string   `yaml:"style_class" toml:"style_class" json:"style_class,omitempty" jsonschema:"description=Style tag applied to the open prompt"`
	Choices     []string `yaml:"choices" toml:"choices" json:"choices,omitempty"`
	Acknowledge bool     `yaml:"acknowledge" toml:"acknowledge" json:"acknowledge,omitempty" jsonschema:"description=Record the result with the interrupt service"`
	UpdatePath  string   `yaml:"update_path" toml:"update_path" json:"update_path,omitempty" jsonschema:"description=Subpath of the record endpoint"`
}

const (
	defaultBackendURL     = "http://127.0.0.1:8081"
	defaultSupportContact = "techhelp@cru.org"
	defaultHTTPTimeout    = 10
	defaultListenAddr     = ":8081"
)

// DefaultInterrupts returns the built-in interrupt set in priority order.
// The security policy prompts always precede the lower-priority notice.
func DefaultInterrupts() []InterruptSettings {
	return []InterruptSettings{
		{
			ID:          "sra",
			Title:       "Statement of Responsibility",
			Body:        "Please review the staff statement of responsibility and confirm that you agree to it.",
			StyleClass:  "sra",
			Choices:     []string{"agree", "disagree"},
			Acknowledge: true,
			UpdatePath:  "sraupdate",
		},
		{
			ID:          "credit-card-security-policy",
			Title:       "Credit Card Security Policy",
			Body:        "Please review the credit card security policy and confirm that you agree to it.",
			StyleClass:  "sra",
			Choices:     []string{"agree", "disagree"},
			Acknowledge: true,
			UpdatePath:  "credit-card-security-policy-update",
		},
		{
			ID:         "piu",
			Title:      "Personal Information Update",
			Body:       "Please take a moment to confirm your personal information is up to date.",
			StyleClass: "piu",
			Choices:    []string{"done"},
		},
	}
}

// EffectiveSettings returns settings with defaults and environment overrides applied.
// Environment: INTERSTITIAL_BACKEND_URL, INTERSTITIAL_CONTEXT, INTERSTITIAL_SUPPORT_CONTACT.
func EffectiveSettings() (Settings, error) {
	s, err := LoadSettings()
	if err != nil {
		return Settings{}, err
	}
	return applyDefaults(s), nil
}

func applyDefaults(s Settings) Settings {
	if v := os.Getenv("INTERSTITIAL_BACKEND_URL"); v != "" {
		s.BackendURL = v
	}
	if v := os.Getenv("INTERSTITIAL_CONTEXT"); v != "" {
		s.BrowserContext = v
	}
	if v := os.Getenv("INTERSTITIAL_SUPPORT_CONTACT"); v != "" {
		s.SupportContact = v
	}

	if s.BackendURL == "" {
		s.BackendURL = defaultBackendURL
	}
	s.BackendURL = strings.TrimRight(s.BackendURL, "/")
	if s.SupportContact == "" {
		s.SupportContact = defaultSupportContact
	}
	if s.BrowserContext == "" {
		s.BrowserContext = models.DefaultBrowserContext
	}
	if s.HTTPTimeoutSeconds <= 0 {
		s.HTTPTimeoutSeconds = defaultHTTPTimeout
	}
	if s.ListenAddr == "" {
		s.ListenAddr = defaultListenAddr
	}
	if len(s.Interrupts) == 0 {
		s.Interrupts = DefaultInterrupts()
	}
	for i := range s.Interrupts {
		if s.Interrupts[i].StyleClass == "" {
			s.Interrupts[i].StyleClass = s.Interrupts[i].ID
		}
		if s.Interrupts[i].Title == "" {
			s.Interrupts[i].Title = s.Interrupts[i].ID
		}
	}
	return s
}

// ValidateInterrupts checks that interrupt IDs are present and unique.
func ValidateInterrupts(interrupts []InterruptSettings) error {
	seen := make(map[string]bool, len(interrupts))
	for i, in := range interrupts {
		id := strings.TrimSpace(in.ID)
		if id == "" {
			return fmt.Errorf("interrupts[%d]: id is required", i)
		}
		if seen[id] {
			return fmt.Errorf("interrupts[%d]: duplicate id %q", i, id)
		}
		seen[id] = true
	}
	return nil
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// dbPathOverrideMu and dbPathOverride implement a mutex-protected process-wide override for CLI --db-path.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error
	settingsPath string

	dbPathOverrideMu sync.RWMutex
	dbPathOverride   string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	dbPathOverrideMu.Lock()
	dbPathOverride = path
	dbPathOverrideMu.Unlock()
}

func getDBPathOverride() string {
	dbPathOverrideMu.RLock()
	v := dbPathOverride
	dbPathOverrideMu.RUnlock()
	return v
}

// SettingsSource returns the file LoadSettings read, or "" when none was found.
func SettingsSource() string {
	return settingsPath
}

// SettingsCandidates lists config files in lookup order. The first file that
// sets at least one key wins; comment-only files are skipped:
// 1) ~/.config/interstitial/config.{yaml,toml}
// 2) /etc/interstitial/config.{yaml,toml}
// 3) ./config.{yaml,toml} (lowest priority; allows repo-local overrides if desired)
func SettingsCandidates() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	dirs := []string{
		dir,
		filepath.Join(string(os.PathSeparator), "etc", "interstitial"),
		".",
	}
	out := make([]string, 0, len(dirs)*2)
	for _, d := range dirs {
		out = append(out, filepath.Join(d, "config.yaml"), filepath.Join(d, "config.toml"))
	}
	return out, nil
}

// LoadSettings loads configuration once using the documented lookup order.
// Environment variables are applied separately by EffectiveSettings.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		candidates, err := SettingsCandidates()
		if err != nil {
			settingsErr = err
			return
		}
		for _, p := range candidates {
			s, err := loadSettingsFile(p)
			if err == nil {
				if reflect.ValueOf(s).IsZero() {
					continue
				}
				settings = s
				settingsPath = p
				return
			}
			if !errors.Is(err, os.ErrNotExist) {
				settingsErr = fmt.Errorf("load %s: %w", p, err)
				return
			}
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the fixed candidate list or an explicit CLI argument
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(b, &s); err != nil {
			return Settings{}, err
		}
		return s, nil
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettingsFile reads one settings file without caching. Used by "config validate".
func LoadSettingsFile(path string) (Settings, error) {
	return loadSettingsFile(path)
}
