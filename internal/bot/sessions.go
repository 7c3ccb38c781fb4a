package bot

import (
	"sync"
	"time"
)

// sessions ожидающие ответа вопросы о цели: пользователь -> неделя, куда записать цель
type sessions struct {
	mu          sync.Mutex
	pendingGoal map[int64]time.Time
}

func newSessions() *sessions {
	return &sessions{pendingGoal: make(map[int64]time.Time)}
}

func (s *sessions) askGoal(userID int64, anchor time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingGoal[userID] = anchor
}

func (s *sessions) goalAnchor(userID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	anchor, ok := s.pendingGoal[userID]
	return anchor, ok
}

// dropGoal снимает вопрос; false: вопроса не было
func (s *sessions) dropGoal(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pendingGoal[userID]
	delete(s.pendingGoal, userID)
	return ok
}
