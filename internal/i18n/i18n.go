package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Language представляет поддерживаемый язык
type Language string

const (
	LangEnglish Language = "en"
	LangRussian Language = "ru"
)

//go:embed locales/*.json
var embedded embed.FS

// translations хранит все переводы
var translations = struct {
	sync.RWMutex
	data        map[Language]map[string]string
	defaultLang Language
}{data: make(map[Language]map[string]string), defaultLang: LangEnglish}

// Languages поддерживаемые языки
func Languages() []Language {
	return []Language{LangEnglish, LangRussian}
}

// SetDefault задаёт язык по умолчанию (для пользователей без выбора и для fallback)
func SetDefault(lang Language) {
	translations.Lock()
	defer translations.Unlock()
	translations.defaultLang = lang
}

// Default возвращает язык по умолчанию
func Default() Language {
	translations.RLock()
	defer translations.RUnlock()
	return translations.defaultLang
}

// Load загружает встроенные переводы, затем перекрывает их файлами из localesDir (если задан)
func Load(localesDir string) error {
	loaded := make(map[Language]map[string]string)

	for _, lang := range Languages() {
		data, err := embedded.ReadFile("locales/" + string(lang) + ".json")
		if err != nil {
			return fmt.Errorf("нет встроенной локализации %s: %w", lang, err)
		}
		langData, err := parse(data)
		if err != nil {
			return fmt.Errorf("ошибка парсинга встроенной локализации %s: %w", lang, err)
		}
		loaded[lang] = langData
	}

	if localesDir != "" {
		for _, lang := range Languages() {
			filePath := filepath.Join(localesDir, string(lang)+".json")
			data, err := os.ReadFile(filePath)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return fmt.Errorf("ошибка чтения файла локализации %s: %w", filePath, err)
			}
			override, err := parse(data)
			if err != nil {
				return fmt.Errorf("ошибка парсинга файла локализации %s: %w", filePath, err)
			}
			for key, text := range override {
				loaded[lang][key] = text
			}
		}
	}

	translations.Lock()
	translations.data = loaded
	translations.Unlock()

	for lang, langData := range loaded {
		log.WithFields(log.Fields{"lang": lang, "keys": len(langData)}).Debug("Загружена локализация")
	}
	return nil
}

func parse(data []byte) (map[string]string, error) {
	var langData map[string]string
	if err := json.Unmarshal(data, &langData); err != nil {
		return nil, err
	}
	return langData, nil
}

// Watch перезагружает переводы при изменении файлов в localesDir, пока жив ctx
func Watch(ctx context.Context, localesDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ошибка создания наблюдателя: %w", err)
	}
	if err := watcher.Add(localesDir); err != nil {
		watcher.Close()
		return fmt.Errorf("ошибка добавления %s в наблюдатель: %w", localesDir, err)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".json") {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				// неполный файл: перечитаем на следующем событии
				if err := Load(localesDir); err != nil {
					log.WithError(err).Warn("Локализация не перезагружена")
					continue
				}
				log.WithField("file", event.Name).Info("Локализация перезагружена")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("Ошибка наблюдателя локализации")
			}
		}
	}()

	log.WithField("dir", localesDir).Info("Наблюдение за локализацией запущено")
	return nil
}

// T возвращает перевод для указанного ключа и языка
func T(key string, lang Language) string {
	translations.RLock()
	defer translations.RUnlock()

	if langData, ok := translations.data[lang]; ok {
		if text, ok := langData[key]; ok {
			return text
		}
	}

	if lang != translations.defaultLang {
		if langData, ok := translations.data[translations.defaultLang]; ok {
			if text, ok := langData[key]; ok {
				return text
			}
		}
	}

	// Если ключ не найден, возвращаем сам ключ
	log.WithFields(log.Fields{"key": key, "lang": lang}).Warn("Перевод не найден")
	return key
}

// Tf возвращает форматированный перевод
func Tf(key string, lang Language, args ...interface{}) string {
	template := T(key, lang)
	if len(args) == 0 {
		return template
	}
	return fmt.Sprintf(template, args...)
}

// IsValidLanguage проверяет, является ли язык поддерживаемым
func IsValidLanguage(lang string) bool {
	switch Language(strings.ToLower(strings.TrimSpace(lang))) {
	case LangRussian, LangEnglish:
		return true
	default:
		return false
	}
}

// ParseLanguage преобразует строку в Language; неизвестное значение — язык по умолчанию
func ParseLanguage(lang string) Language {
	switch l := Language(strings.ToLower(strings.TrimSpace(lang))); l {
	case LangRussian, LangEnglish:
		return l
	default:
		return Default()
	}
}

// GetLanguageName возвращает название языка на этом языке
func GetLanguageName(lang Language) string {
	switch lang {
	case LangRussian:
		return "Русский"
	default:
		return "English"
	}
}

// GetLanguageFlag возвращает флаг для языка
func GetLanguageFlag(lang Language) string {
	switch lang {
	case LangRussian:
		return "🇷🇺"
	default:
		return "🇬🇧"
	}
}
