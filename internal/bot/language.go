package bot

import (
	"sync"

	"habitbot/internal/i18n"
)

// languages язык ответа по пользователю; хранится только в памяти
type languages struct {
	sync.RWMutex
	cache map[int64]i18n.Language
}

func newLanguages() *languages {
	return &languages{cache: make(map[int64]i18n.Language)}
}

// get возвращает язык пользователя или язык по умолчанию
func (l *languages) get(userID int64) i18n.Language {
	l.RLock()
	defer l.RUnlock()
	if lang, ok := l.cache[userID]; ok {
		return lang
	}
	return i18n.Default()
}

func (l *languages) set(userID int64, lang i18n.Language) {
	l.Lock()
	defer l.Unlock()
	l.cache[userID] = lang
}

// t возвращает перевод для пользователя
func (b *Bot) t(key string, userID int64) string {
	return i18n.T(key, b.langs.get(userID))
}

// tf возвращает форматированный перевод для пользователя
func (b *Bot) tf(key string, userID int64, args ...interface{}) string {
	return i18n.Tf(key, b.langs.get(userID), args...)
}
