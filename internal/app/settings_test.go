package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSettings_PrefersUserConfigOverLocal(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	workdir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workdir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	userConfigPath := filepath.Join(home, ".config", "interstitial", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte("db_path: /tmp/from-user.db\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "config.yaml"), []byte("db_path: /tmp/from-local.db\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-user.db", s.DBPath)
}

func TestLoadSettings_FallsBackToLocalTOML(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	workdir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workdir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	body := "backend_url = \"http://backend.test\"\n\n[[interrupts]]\nid = \"piu\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "config.toml"), []byte(body), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "http://backend.test", s.BackendURL)
	require.Len(t, s.Interrupts, 1)
	require.Equal(t, "piu", s.Interrupts[0].ID)
}

func TestEffectiveSettings_ReadsUserTOMLAfterEnsureConfigDir(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("INTERSTITIAL_BACKEND_URL", "")

	dir := filepath.Join(home, ".config", "interstitial")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("backend_url = \"http://toml.example:9\"\n"), 0o600))

	require.NoError(t, EnsureConfigDir())

	s, err := EffectiveSettings()
	require.NoError(t, err)
	require.Equal(t, "http://toml.example:9", s.BackendURL)
	require.Equal(t, tomlPath, SettingsSource())
}

func TestLoadSettings_SkipsCommentOnlyUserConfig(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	workdir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workdir))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	require.NoError(t, EnsureConfigDir())
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "config.yaml"), []byte("db_path: /tmp/from-local.db\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-local.db", s.DBPath)
	require.Equal(t, filepath.Join(".", "config.yaml"), SettingsSource())
}

func TestLoadSettings_InvalidYAMLReturnsError(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)

	userConfigPath := filepath.Join(home, ".config", "interstitial", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte("db_path: ["), 0o600))

	_, err := LoadSettings()
	require.Error(t, err)
}

func TestLoadSettingsFile_ReadsInterrupts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `support_contact: help@example.org
interrupts:
  - id: sra
    choices: [agree, disagree]
    acknowledge: true
    update_path: sraupdate
  - id: piu
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	s, err := loadSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, "help@example.org", s.SupportContact)
	require.Len(t, s.Interrupts, 2)
	require.True(t, s.Interrupts[0].Acknowledge)
	require.Equal(t, []string{"agree", "disagree"}, s.Interrupts[0].Choices)
	require.False(t, s.Interrupts[1].Acknowledge)
}

func TestApplyDefaults_FillsMissingValues(t *testing.T) {
	t.Setenv("INTERSTITIAL_BACKEND_URL", "")
	t.Setenv("INTERSTITIAL_CONTEXT", "")
	t.Setenv("INTERSTITIAL_SUPPORT_CONTACT", "")

	s := applyDefaults(Settings{})
	require.Equal(t, defaultBackendURL, s.BackendURL)
	require.Equal(t, defaultSupportContact, s.SupportContact)
	require.Equal(t, "default", s.BrowserContext)
	require.Equal(t, defaultHTTPTimeout, s.HTTPTimeoutSeconds)
	require.Equal(t, defaultListenAddr, s.ListenAddr)
	require.Equal(t, DefaultInterrupts(), s.Interrupts)
}

func TestApplyDefaults_EnvOverridesFile(t *testing.T) {
	t.Setenv("INTERSTITIAL_BACKEND_URL", "http://env.test/")
	t.Setenv("INTERSTITIAL_CONTEXT", "laptop-firefox")
	t.Setenv("INTERSTITIAL_SUPPORT_CONTACT", "")

	s := applyDefaults(Settings{
		BackendURL: "http://file.test",
		Interrupts: []InterruptSettings{{ID: "custom"}},
	})
	require.Equal(t, "http://env.test", s.BackendURL)
	require.Equal(t, "laptop-firefox", s.BrowserContext)
	require.Len(t, s.Interrupts, 1)
	require.Equal(t, "custom", s.Interrupts[0].StyleClass)
	require.Equal(t, "custom", s.Interrupts[0].Title)
}

func TestDefaultInterrupts_PriorityOrder(t *testing.T) {
	ids := make([]string, 0, 3)
	for _, in := range DefaultInterrupts() {
		ids = append(ids, in.ID)
	}
	require.Equal(t, []string{"sra", "credit-card-security-policy", "piu"}, ids)
	require.NoError(t, ValidateInterrupts(DefaultInterrupts()))
}

func TestValidateInterrupts_RejectsDuplicatesAndBlankIDs(t *testing.T) {
	err := ValidateInterrupts([]InterruptSettings{{ID: "sra"}, {ID: "sra"}})
	require.ErrorContains(t, err, `duplicate id "sra"`)

	err = ValidateInterrupts([]InterruptSettings{{ID: " "}})
	require.ErrorContains(t, err, "id is required")
}
