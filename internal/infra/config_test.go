package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir в пустую директорию, чтобы config.yaml из рабочей копии не подхватился
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "", cfg.Database.URL)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Equal(t, 1000, cfg.Storage.ActivityLimit)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, 500, cfg.Model.AnalysisMaxTokens)
	assert.Equal(t, 1000, cfg.Model.LetterMaxTokens)
	assert.Equal(t, []string{"remoteok", "arbeitnow", "authenticjobs"}, cfg.Sources.Enabled)
	assert.Equal(t, 5, cfg.Sources.Limits["authenticjobs"])
	assert.Equal(t, int64(42), cfg.Agent.Seed)
	assert.Equal(t, time.Minute, cfg.Engine.HuntInterval)
	assert.Equal(t, 3, cfg.Engine.MaxApplicationsPerCycle)
	assert.Equal(t, time.Second, cfg.Engine.ApplicationPause)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadConfig_EnvOverridesAndAliases(t *testing.T) {
	inTempDir(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("EMAIL_ADDRESS", "jane@example.com")
	t.Setenv("DB_URL", "postgres://localhost/clawdjob")

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.Model.APIKey)
	assert.Equal(t, "jane@example.com", cfg.Agent.Email)
	assert.Equal(t, "postgres://localhost/clawdjob", cfg.Database.URL)
}

func TestLoadConfig_File(t *testing.T) {
	dir := inTempDir(t)
	yaml := []byte("engine:\n  hunt_interval: 0s\n  mock_jobs: 2\nmodel:\n  provider: openai\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Engine.HuntInterval)
	assert.Equal(t, 2, cfg.Engine.MockJobs)
	assert.Equal(t, "openai", cfg.Model.Provider)
}

func TestLoadConfig_RejectsUnknownProvider(t *testing.T) {
	inTempDir(t)
	t.Setenv("MODEL_PROVIDER", "llama")

	_, err := loadConfig(viper.New())
	assert.Error(t, err)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unterminated"), 0o644))

	_, err := loadConfig(viper.New())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(LoggerConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)

	_, err = NewLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = NewLogger(LoggerConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
