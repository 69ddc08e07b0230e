package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finfacil/internal/common"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	require.NoError(t, BindEnv(v))
	return v
}

func TestLoad_Defaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(home, ".local/share/finfacil"), cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(home, ".local/share/finfacil", "finfacil.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, 60, cfg.Telegram.PollTimeout)
	assert.Equal(t, []string{"TRANSPORTE", "MERCADO", "ROUPAS"}, cfg.Categories.ExpenseDefaults)
	assert.Equal(t, []string{"SALARIO", "EXTRAS"}, cfg.Categories.IncomeDefaults)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.ErrorIs(t, cfg.RequireToken(), ErrMissingToken)
}

func TestLoad_Environment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FINFACIL_STORAGE_BACKEND", "SQLite")
	t.Setenv("FINFACIL_STORAGE_DATA_DIR", dir)
	t.Setenv("FINFACIL_TELEGRAM_POLL_TIMEOUT", "30")
	t.Setenv("FINFACIL_LOGGING_FORMAT", "json")

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, dir, cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(dir, "finfacil.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, 30, cfg.Telegram.PollTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_TokenSources(t *testing.T) {
	t.Run("legacy BOT_TOKEN", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "123:abc")
		cfg, err := Load(newTestViper(t))
		require.NoError(t, err)
		assert.Equal(t, "123:abc", cfg.Telegram.Token)
		assert.NoError(t, cfg.RequireToken())
	})

	t.Run("prefixed variable wins", func(t *testing.T) {
		t.Setenv("BOT_TOKEN", "legacy")
		t.Setenv("FINFACIL_TELEGRAM_TOKEN", "prefixed")
		cfg, err := Load(newTestViper(t))
		require.NoError(t, err)
		assert.Equal(t, "prefixed", cfg.Telegram.Token)
	})

	t.Run("config value", func(t *testing.T) {
		v := newTestViper(t)
		v.Set("telegram.token", "  from-file  ")
		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Telegram.Token)
	})
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  backend: json
  data_dir: ` + dir + `
categories:
  expense_defaults: [ALUGUEL, MERCADO]
  income_defaults: [SALARIO]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALUGUEL", "MERCADO"}, cfg.Categories.CategoryDefaults().Expense)
	assert.Equal(t, []string{"SALARIO"}, cfg.Categories.CategoryDefaults().Income)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Telegram: TelegramConfig{PollTimeout: 60},
			Storage:  StorageConfig{Backend: BackendJSON, DataDir: "/data", SQLitePath: "/data/finfacil.db"},
			Logging:  LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		mutate func(*Config)
		name   string
		want   string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "postgres" }, want: "Config.Storage.Backend must be one of [json sqlite]"},
		{name: "blank data dir", mutate: func(c *Config) { c.Storage.DataDir = "   " }, want: "Config.Storage.DataDir must not be blank"},
		{name: "sqlite without path", mutate: func(c *Config) {
			c.Storage.Backend = BackendSQLite
			c.Storage.SQLitePath = ""
		}, want: "Config.Storage.SQLitePath is required"},
		{name: "poll timeout too small", mutate: func(c *Config) { c.Telegram.PollTimeout = 0 }, want: "Config.Telegram.PollTimeout must be between 1 and 600"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, want: "Config.Logging.Level must be one of"},
		{name: "blank default category", mutate: func(c *Config) { c.Categories.ExpenseDefaults = []string{"MERCADO", " "} }, want: "must not be blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FINFACIL_TEST_DIR", "/srv/finfacil")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: home},
		{input: "~/dados", want: filepath.Join(home, "dados")},
		{input: "$FINFACIL_TEST_DIR/db", want: "/srv/finfacil/db"},
		{input: "/abs/path", want: "/abs/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}
