package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Бэкенды хранилища строк
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config содержит конфигурацию приложения
type Config struct {
	BotToken string `mapstructure:"telegram_bot_token"`
	Timezone string `mapstructure:"timezone"`

	StoreBackend string `mapstructure:"store_backend"`

	// Google Sheets
	GoogleSheetID         string `mapstructure:"google_sheet_id"`
	GoogleCredentialsJSON string `mapstructure:"google_credentials_json"`
	GoogleCredentialsPath string `mapstructure:"google_credentials_path"`
	GoogleDriveFolderID   string `mapstructure:"google_drive_folder_id"`

	// SQL
	DatabaseURL string `mapstructure:"database_url"`
	SQLitePath  string `mapstructure:"sqlite_path"`

	// LLM (OpenAI-совместимый API, по умолчанию DeepSeek)
	AIAPIKey        string `mapstructure:"ai_api_key"`
	AIBaseURL       string `mapstructure:"ai_base_url"`
	AIModel         string `mapstructure:"ai_model"`
	AIFallbackModel string `mapstructure:"ai_fallback_model"`

	// Еженедельная обратная связь, cron с секундами
	FeedbackSchedule string `mapstructure:"feedback_schedule"`
	RedisURL         string `mapstructure:"redis_url"`

	// HTTP
	HTTPAddr   string `mapstructure:"http_addr"`
	WebhookURL string `mapstructure:"webhook_url"`
	AdminToken string `mapstructure:"admin_token"`

	LocalesDir      string `mapstructure:"locales_dir"`
	DefaultLanguage string `mapstructure:"default_language"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
	Debug    bool   `mapstructure:"debug"`

	location *time.Location
}

var defaults = map[string]interface{}{
	"telegram_bot_token":      "",
	"timezone":                "Europe/Moscow",
	"store_backend":           BackendSheets,
	"google_sheet_id":         "",
	"google_credentials_json": "",
	"google_credentials_path": "google-credentials.json",
	"google_drive_folder_id":  "",
	"database_url":            "",
	"sqlite_path":             "habitbot.db",
	"ai_api_key":              "",
	"deepseek_api_key":        "",
	"ai_base_url":             "https://api.deepseek.com/v1",
	"ai_model":                "deepseek-chat",
	"ai_fallback_model":       "",
	"feedback_schedule":       "0 0 20 * * 0",
	"redis_url":               "",
	"http_addr":               "",
	"webhook_url":             "",
	"admin_token":             "",
	"locales_dir":             "",
	"default_language":        "en",
	"log_level":               "info",
	"log_file":                "",
	"debug":                   false,
}

// Load загружает конфигурацию: .env, затем файл path (если задан), переменные окружения главнее
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}
	if cfg.AIAPIKey == "" {
		cfg.AIAPIKey = v.GetString("deepseek_api_key")
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("неизвестный часовой пояс %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	return cfg, nil
}

// Validate проверяет настройки, без которых бот не запустится
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN не задан")
	}
	return c.ValidateStore()
}

// ValidateStore проверяет настройки выбранного хранилища
func (c *Config) ValidateStore() error {
	switch c.StoreBackend {
	case BackendSheets:
		if c.GoogleSheetID == "" {
			return fmt.Errorf("GOOGLE_SHEET_ID не задан")
		}
		if c.GoogleCredentialsJSON == "" && c.GoogleCredentialsPath == "" {
			return fmt.Errorf("не заданы GOOGLE_CREDENTIALS_JSON и GOOGLE_CREDENTIALS_PATH")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL не задан")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH не задан")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("неизвестный STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// Location возвращает часовой пояс бота
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// AIEnabled есть ли ключ LLM
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}
