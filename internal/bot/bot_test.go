package bot

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"habitbot/internal/habits"
	"habitbot/internal/i18n"
	"habitbot/internal/repository"
)

var moscow = time.FixedZone("MSK", 3*60*60)

func TestMain(m *testing.M) {
	if err := i18n.Load(""); err != nil {
		panic(err)
	}
	i18n.SetDefault(i18n.LangEnglish)
	os.Exit(m.Run())
}

// fakeSender запоминает отправленные сообщения и документы
type fakeSender struct {
	mu    sync.Mutex
	texts []string
	docs  []tgbotapi.DocumentConfig
	err   error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return tgbotapi.Message{}, s.err
	}
	switch msg := c.(type) {
	case tgbotapi.MessageConfig:
		s.texts = append(s.texts, msg.Text)
	case tgbotapi.DocumentConfig:
		s.docs = append(s.docs, msg)
	}
	return tgbotapi.Message{}, nil
}

func (s *fakeSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

// failingStore хранилище, которое не отвечает
type failingStore struct {
	*repository.MemoryStore
}

func (failingStore) UpsertWeek(context.Context, habits.WeekRow) error {
	return errors.New("sheets: 503")
}

const userID int64 = 77

// 2026-10-19 — понедельник
func at(day, hour int) time.Time {
	return time.Date(2026, time.October, day, hour, 0, 0, 0, moscow)
}

func textUpdate(text string, when time.Time) tgbotapi.Update {
	message := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: "Ann"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
		Date: int(when.Unix()),
	}
	if strings.HasPrefix(text, "/") {
		length := len(text)
		if i := strings.IndexByte(text, ' '); i > 0 {
			length = i
		}
		message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return tgbotapi.Update{Message: message}
}

func newTestBot() (*Bot, *fakeSender, *repository.MemoryStore) {
	sender := &fakeSender{}
	store := repository.NewMemoryStore()
	return New(sender, store, moscow), sender, store
}

func TestHandleMessage_Habits(t *testing.T) {
	b, sender, _ := newTestBot()
	ctx := context.Background()

	tests := []struct {
		text string
		when time.Time
		want string
	}{
		{"1", at(19, 9), "✅ Prayer recorded for Mon 19.10."},
		{"1", at(19, 21), "ℹ️ Prayer is already recorded for today."},
		{"1", at(21, 9), "✅ Prayer recorded for Wed 21.10."},
		{"9", at(21, 9), "⚠️ Habit number must be from 1 to 5."},
		{"99999999999999999999", at(21, 9), "⚠️ Habit number must be from 1 to 5."},
		{"xx 150", at(21, 10), "Coffee +2. Today: 2, spent 150 ₽."},
		{"x", at(21, 11), "Coffee +1. Today: 3, spent 150 ₽."},
		{"he", at(21, 12), "📚 Hebrew cards marked for today."},
		{"HE", at(21, 13), "ℹ️ Hebrew cards is already marked for today."},
		{"hello", at(21, 14), "🤔 I did not understand that. Send 1-5, x/y/z or ch/he/ta. See /help"},
	}
	for _, tt := range tests {
		b.HandleUpdate(ctx, textUpdate(tt.text, tt.when))
		if got := sender.last(); got != tt.want {
			t.Errorf("%q at %v: reply = %q, want %q", tt.text, tt.when, got, tt.want)
		}
	}

	stats, err := b.Ledger().ComputeStats(ctx, userID, at(22, 0))
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}
	if stats.Habit(1).Count != 2 {
		t.Errorf("Prayer count = %d, want 2", stats.Habit(1).Count)
	}
}

func TestHandleCommand_Week(t *testing.T) {
	b, sender, _ := newTestBot()
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate("3", at(19, 9)))
	b.HandleUpdate(ctx, textUpdate("5", at(20, 9)))
	b.HandleUpdate(ctx, textUpdate("zz 80", at(20, 10)))
	b.HandleUpdate(ctx, textUpdate("ta", at(20, 11)))
	b.HandleUpdate(ctx, textUpdate("/week", at(21, 9)))

	week := sender.last()
	for _, want := range []string{
		"📊 Week of 2026-10-19",
		"1. Prayer ░░░░░░ 0/6",
		"3. Ball █░░░░░ 1/6",
		"4. Run/Stretch ✗ not yet",
		"5. Strength/Stretch ✓ done",
		"Score: 1.17 of 5",
		"🆕 First tracked week",
		"Flour-based food: 2 (80 ₽)",
		"Tatar cards: 1/7 days",
	} {
		if !strings.Contains(week, want) {
			t.Errorf("/week missing %q:\n%s", want, week)
		}
	}
}

func TestFeedbackGoalFlow(t *testing.T) {
	b, sender, store := newTestBot()
	ctx := context.Background()
	next := habits.WeekAnchor(at(26, 0), moscow)

	if err := b.SendFeedback(ctx, userID, "Keep going", habits.Declined, next); err != nil {
		t.Fatalf("SendFeedback() error = %v", err)
	}
	if len(sender.texts) != 2 || !strings.Contains(sender.texts[0], "Keep going") {
		t.Fatalf("sent = %q", sender.texts)
	}
	if sender.last() != i18n.T("goal.request", i18n.LangEnglish) {
		t.Errorf("goal request = %q", sender.last())
	}

	// ответ на вопрос о цели попадает в следующую неделю
	b.HandleUpdate(ctx, textUpdate("Stretch after every run", at(25, 21)))
	if got := sender.last(); got != "🎯 Goal saved for the week of 2026-10-26." {
		t.Errorf("reply = %q", got)
	}
	row, err := store.GetWeek(ctx, userID, next)
	if err != nil || row.Goals != "Stretch after every run" {
		t.Errorf("next week row = %+v, %v", row, err)
	}

	// вопрос снят: обычный текст снова непонятен
	b.HandleUpdate(ctx, textUpdate("more text", at(25, 22)))
	if !strings.HasPrefix(sender.last(), "🤔") {
		t.Errorf("reply after goal = %q", sender.last())
	}
}

func TestFeedback_NoGoalRequestWhenImproved(t *testing.T) {
	b, sender, _ := newTestBot()
	if err := b.SendFeedback(context.Background(), userID, "Great", habits.Improved, at(26, 0)); err != nil {
		t.Fatalf("SendFeedback() error = %v", err)
	}
	if len(sender.texts) != 1 {
		t.Errorf("sent %d messages, want 1", len(sender.texts))
	}
	if _, ok := b.sessions.goalAnchor(userID); ok {
		t.Error("goal must not be requested after improvement")
	}
}

func TestFeedback_ImprovedDropsOldGoalRequest(t *testing.T) {
	b, sender, store := newTestBot()
	ctx := context.Background()
	first := habits.WeekAnchor(at(26, 0), moscow)
	second := first.AddDate(0, 0, 7)

	b.SendFeedback(ctx, userID, "Hmm", habits.Declined, first)
	b.SendFeedback(ctx, userID, "Great", habits.Improved, second)

	thursday := time.Date(2026, time.November, 5, 10, 0, 0, 0, moscow)
	b.HandleUpdate(ctx, textUpdate("more reps", thursday))
	if !strings.HasPrefix(sender.last(), "🤔") {
		t.Errorf("reply = %q, want unknown input", sender.last())
	}
	if row, err := store.GetWeek(ctx, userID, first); err == nil && row.Goals != "" {
		t.Errorf("goal written into past week: %+v", row)
	}
}

func TestGoalRequest_ExpiresWhenWeekPassed(t *testing.T) {
	b, sender, store := newTestBot()
	ctx := context.Background()
	next := habits.WeekAnchor(at(26, 0), moscow)

	b.SendFeedback(ctx, userID, "Hmm", habits.Same, next)

	// ответ пришёл только через неделю после недели, о которой спрашивали
	late := time.Date(2026, time.November, 3, 10, 0, 0, 0, moscow)
	b.HandleUpdate(ctx, textUpdate("Run every day", late))
	if !strings.HasPrefix(sender.last(), "🤔") {
		t.Errorf("reply = %q, want unknown input", sender.last())
	}
	if row, err := store.GetWeek(ctx, userID, next); err == nil && row.Goals != "" {
		t.Errorf("goal written into past week: %+v", row)
	}
	if _, ok := b.sessions.goalAnchor(userID); ok {
		t.Error("stale goal request must be dropped")
	}

	// /goal без вопроса пишет текущую неделю
	b.HandleUpdate(ctx, textUpdate("/goal Run every day", late))
	current := habits.WeekAnchor(late, moscow)
	row, err := store.GetWeek(ctx, userID, current)
	if err != nil || row.Goals != "Run every day" {
		t.Errorf("current week row = %+v, %v", row, err)
	}
}

func TestHandleCommand_GoalAndSkip(t *testing.T) {
	b, sender, store := newTestBot()
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate("/skip", at(20, 9)))
	if got := sender.last(); got != "There is no pending goal question." {
		t.Errorf("/skip reply = %q", got)
	}

	b.HandleUpdate(ctx, textUpdate("/goal", at(20, 9)))
	if got := sender.last(); got != "Usage: /goal <text>" {
		t.Errorf("/goal without text reply = %q", got)
	}

	b.HandleUpdate(ctx, textUpdate("/goal Ball every evening", at(20, 9)))
	row, err := store.GetWeek(ctx, userID, habits.WeekAnchor(at(20, 9), moscow))
	if err != nil || row.Goals != "Ball every evening" {
		t.Errorf("current week row = %+v, %v", row, err)
	}

	b.SendFeedback(ctx, userID, "Hmm", habits.Same, at(26, 0))
	b.HandleUpdate(ctx, textUpdate("/skip", at(25, 21)))
	if got := sender.last(); got != "OK, no goal this time." {
		t.Errorf("/skip reply = %q", got)
	}
}

func TestHandleCommand_Language(t *testing.T) {
	b, sender, _ := newTestBot()
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate("/language de", at(19, 9)))
	if got := sender.last(); got != "Usage: /language en|ru" {
		t.Errorf("reply = %q", got)
	}
	b.HandleUpdate(ctx, textUpdate("/language ru", at(19, 9)))
	if got := sender.last(); got != "🇷🇺 Язык: Русский" {
		t.Errorf("reply = %q", got)
	}
	b.HandleUpdate(ctx, textUpdate("7", at(19, 9)))
	if got := sender.last(); got != "⚠️ Номер привычки должен быть от 1 до 5." {
		t.Errorf("reply = %q", got)
	}
	if b.Language(userID) != i18n.LangRussian {
		t.Errorf("Language() = %q", b.Language(userID))
	}
}

func TestHandleCommand_Export(t *testing.T) {
	b, sender, _ := newTestBot()
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate("2", at(12, 9)))
	b.HandleUpdate(ctx, textUpdate("2", at(19, 9)))
	b.HandleUpdate(ctx, textUpdate("/export", at(21, 9)))

	if len(sender.docs) != 1 {
		t.Fatalf("sent %d documents, want 1", len(sender.docs))
	}
	doc := sender.docs[0]
	file, ok := doc.File.(tgbotapi.FileBytes)
	if !ok || file.Name != "habits_77_20261021.xlsx" || len(file.Bytes) == 0 {
		t.Errorf("document file = %T %v", doc.File, ok)
	}
	if doc.Caption != "📎 Your habits for the last 12 weeks" {
		t.Errorf("caption = %q", doc.Caption)
	}
}

func TestHandleMessage_StoreError(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, failingStore{repository.NewMemoryStore()}, moscow)

	b.HandleUpdate(context.Background(), textUpdate("4", at(19, 9)))
	if got := sender.last(); got != "⚠️ Could not save right now. Please try again later." {
		t.Errorf("reply = %q", got)
	}
}

func TestRun_Enqueue(t *testing.T) {
	b, sender, _ := newTestBot()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx, nil)
	}()

	if !b.Enqueue(textUpdate("/help", at(19, 9))) {
		t.Fatal("Enqueue() rejected update")
	}

	deadline := time.Now().Add(2 * time.Second)
	for sender.last() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if !strings.Contains(sender.last(), "1. Prayer (daily, counted up to 6 days)") {
		t.Errorf("/help reply = %q", sender.last())
	}
}
