package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/finfacil/internal/common"
	"github.com/Veraticus/finfacil/internal/storage"
)

// ErrMissingToken is returned when the bot is started without a Telegram token.
var ErrMissingToken = fmt.Errorf("%w: telegram token (set telegram.token or BOT_TOKEN)", common.ErrMissingConfig)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// EnvPrefix prefixes every environment variable read by viper.
const EnvPrefix = "FINFACIL"

// Config holds everything the binary needs to build its stores and adapters.
type Config struct {
	Telegram   TelegramConfig
	Storage    StorageConfig
	Logging    LoggingConfig
	Categories CategoriesConfig
}

// TelegramConfig configures the bot transport.
type TelegramConfig struct {
	Token       string
	PollTimeout int `validate:"gte=1,lte=600"`
	Debug       bool
}

// StorageConfig selects and locates the document backend.
type StorageConfig struct {
	Backend    string `validate:"oneof=json sqlite"`
	DataDir    string `validate:"required,notblank"`
	SQLitePath string `validate:"required_if=Backend sqlite"`
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn warning error"`
	Format string `validate:"oneof=text console json"`
}

// CategoriesConfig holds the stock categories re-added on every repairing read.
type CategoriesConfig struct {
	ExpenseDefaults []string `validate:"dive,notblank"`
	IncomeDefaults  []string `validate:"dive,notblank"`
}

// CategoryDefaults converts the configured lists for the category store.
func (c CategoriesConfig) CategoryDefaults() storage.CategoryDefaults {
	return storage.CategoryDefaults{
		Expense: c.ExpenseDefaults,
		Income:  c.IncomeDefaults,
	}
}

// SetDefaults registers default values for every key.
func SetDefaults(v *viper.Viper) {
	stock := storage.DefaultCategoryDefaults()

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.debug", false)
	v.SetDefault("storage.backend", BackendJSON)
	v.SetDefault("storage.data_dir", "~/.local/share/finfacil")
	v.SetDefault("storage.sqlite_path", "")
	v.SetDefault("categories.expense_defaults", stock.Expense)
	v.SetDefault("categories.income_defaults", stock.Income)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv makes every key readable from FINFACIL_* variables and keeps the
// legacy BOT_TOKEN variable working.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("telegram.token", EnvPrefix+"_TELEGRAM_TOKEN", "BOT_TOKEN"); err != nil {
		return fmt.Errorf("failed to bind telegram token: %w", err)
	}
	return nil
}

// Load builds a validated Config from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{
			Token:       strings.TrimSpace(v.GetString("telegram.token")),
			PollTimeout: v.GetInt("telegram.poll_timeout"),
			Debug:       v.GetBool("telegram.debug"),
		},
		Storage: StorageConfig{
			Backend:    strings.ToLower(strings.TrimSpace(v.GetString("storage.backend"))),
			DataDir:    ExpandPath(v.GetString("storage.data_dir")),
			SQLitePath: ExpandPath(v.GetString("storage.sqlite_path")),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
		},
		Categories: CategoriesConfig{
			ExpenseDefaults: v.GetStringSlice("categories.expense_defaults"),
			IncomeDefaults:  v.GetStringSlice("categories.income_defaults"),
		},
	}

	if cfg.Storage.SQLitePath == "" && cfg.Storage.DataDir != "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.Storage.DataDir, "finfacil.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

var nonBlank = regexp.MustCompile(`\S`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlank.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks field constraints. The Telegram token is checked separately by
// RequireToken because offline commands do not need it.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, fieldErrorToString(e))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(msgs, "; "))
}

// RequireToken reports ErrMissingToken when no bot token is configured.
func (c *Config) RequireToken() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	return nil
}

func fieldErrorToString(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, e.Param(), e.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 1 and 600", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
