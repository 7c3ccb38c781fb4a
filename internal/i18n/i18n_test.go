package i18n

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmbeddedLocalesHaveSameKeys(t *testing.T) {
	keys := make(map[Language]map[string]string)
	for _, lang := range Languages() {
		data, err := embedded.ReadFile("locales/" + string(lang) + ".json")
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", lang, err)
		}
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("locale %s is not valid JSON: %v", lang, err)
		}
		keys[lang] = m
	}
	for key := range keys[LangEnglish] {
		if _, ok := keys[LangRussian][key]; !ok {
			t.Errorf("key %q missing in ru.json", key)
		}
	}
	for key := range keys[LangRussian] {
		if _, ok := keys[LangEnglish][key]; !ok {
			t.Errorf("key %q missing in en.json", key)
		}
	}
}

func TestT_Fallback(t *testing.T) {
	if err := Load(""); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := T("goal.usage", LangRussian); got != "Использование: /goal <текст>" {
		t.Errorf("T(ru) = %q", got)
	}
	if got := T("goal.usage", Language("de")); got != "Usage: /goal <text>" {
		t.Errorf("T(de) = %q, want English fallback", got)
	}
	if got := T("no.such.key", LangEnglish); got != "no.such.key" {
		t.Errorf("T(missing) = %q, want key", got)
	}
	if got := Tf("week.title", LangEnglish, "2026-10-19"); got != "📊 Week of 2026-10-19" {
		t.Errorf("Tf() = %q", got)
	}
}

func TestParseLanguage(t *testing.T) {
	SetDefault(LangEnglish)
	tests := []struct {
		in   string
		want Language
	}{
		{"ru", LangRussian},
		{" EN ", LangEnglish},
		{"fr", LangEnglish},
		{"", LangEnglish},
	}
	for _, tt := range tests {
		if got := ParseLanguage(tt.in); got != tt.want {
			t.Errorf("ParseLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if IsValidLanguage("fr") || !IsValidLanguage("RU") {
		t.Error("IsValidLanguage() wrong result")
	}
}

func TestLoad_Override(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"goal.usage": "Try /goal run more"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer Load("")

	if got := T("goal.usage", LangEnglish); got != "Try /goal run more" {
		t.Errorf("override not applied: %q", got)
	}
	// остальные ключи остаются встроенными
	if got := T("goal.skipped", LangEnglish); got != "OK, no goal this time." {
		t.Errorf("embedded key lost: %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "ru.json"), []byte(`{oops`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Load(dir); err == nil {
		t.Error("Load() expected error for broken override")
	}
}

func TestWatch_Reload(t *testing.T) {
	dir := t.TempDir()
	if err := Load(dir); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer Load("")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := Watch(ctx, dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"goal.skipped": "Skipped."}`), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if T("goal.skipped", LangEnglish) == "Skipped." {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("translations were not reloaded after file change")
}
