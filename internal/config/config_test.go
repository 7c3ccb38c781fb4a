package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("GOOGLE_SHEET_ID", "sheet")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StoreBackend != BackendSheets {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendSheets)
	}
	if cfg.FeedbackSchedule != "0 0 20 * * 0" {
		t.Errorf("FeedbackSchedule = %q", cfg.FeedbackSchedule)
	}
	if cfg.Location().String() != "Europe/Moscow" {
		t.Errorf("Location() = %v, want Europe/Moscow", cfg.Location())
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("DefaultLanguage = %q, want en", cfg.DefaultLanguage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitbot.yaml")
	content := "telegram_bot_token: from-file\nstore_backend: SQLite\nsqlite_path: /tmp/h.db\ndebug: true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("DEEPSEEK_API_KEY", "ds-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BotToken != "from-env" {
		t.Errorf("BotToken = %q, env must win over file", cfg.BotToken)
	}
	if cfg.StoreBackend != BackendSQLite || cfg.SQLitePath != "/tmp/h.db" || !cfg.Debug {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.AIAPIKey != "ds-key" || !cfg.AIEnabled() {
		t.Errorf("AIAPIKey = %q, want DEEPSEEK_API_KEY fallback", cfg.AIAPIKey)
	}
}

func TestLoad_BadTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")
	if _, err := Load(""); err == nil {
		t.Error("Load() expected error for unknown timezone")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"no token", Config{StoreBackend: BackendMemory}, true},
		{"memory", Config{BotToken: "t", StoreBackend: BackendMemory}, false},
		{"sheets without id", Config{BotToken: "t", StoreBackend: BackendSheets, GoogleCredentialsPath: "c.json"}, true},
		{"sheets without credentials", Config{BotToken: "t", StoreBackend: BackendSheets, GoogleSheetID: "s"}, true},
		{"postgres without url", Config{BotToken: "t", StoreBackend: BackendPostgres}, true},
		{"postgres", Config{BotToken: "t", StoreBackend: BackendPostgres, DatabaseURL: "postgres://"}, false},
		{"unknown", Config{BotToken: "t", StoreBackend: "excel"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
