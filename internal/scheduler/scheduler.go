package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
)

// DefaultLockTTL сколько держится блокировка задачи, если процесс упал не сняв её
const DefaultLockTTL = 30 * time.Minute

// Job задача по расписанию; asOf — момент срабатывания в часовом поясе планировщика
type Job func(ctx context.Context, asOf time.Time) error

// ErrStopped планировщик остановлен, новые запуски не принимаются
var ErrStopped = errors.New("планировщик остановлен")

// Scheduler повторяющиеся задачи поверх cron с защитой от наложения запусков
type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	loc     *time.Location
	lockTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	ctx     context.Context // контекст задач по расписанию, задаётся в Start
	stopped bool
	running sync.WaitGroup
}

// New создаёт планировщик. locker nil: блокировка в памяти.
func New(loc *time.Location, locker Locker) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if locker == nil {
		locker = NewLocalLock()
	}
	return &Scheduler{
		cron:    cron.NewWithLocation(loc),
		locker:  locker,
		loc:     loc,
		lockTTL: DefaultLockTTL,
		now:     time.Now,
		ctx:     context.Background(),
	}
}

// AddJob регистрирует задачу по cron-выражению с секундами ("0 0 20 * * 0")
func (s *Scheduler) AddJob(name, spec string, job Job) error {
	if _, err := cron.Parse(spec); err != nil {
		return fmt.Errorf("неверное расписание %q: %w", spec, err)
	}
	return s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		if _, err := s.RunNow(ctx, name, job); err != nil && !errors.Is(err, ErrStopped) {
			log.WithError(err).WithField("job", name).Error("Задача завершилась с ошибкой")
		}
	})
}

// RunNow запускает задачу под блокировкой. ran=false: задача уже выполняется.
func (s *Scheduler) RunNow(ctx context.Context, name string, job Job) (ran bool, err error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false, ErrStopped
	}
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()

	unlock, ok, err := s.locker.TryLock(ctx, name, s.lockTTL)
	if err != nil {
		return false, fmt.Errorf("блокировка %s: %w", name, err)
	}
	if !ok {
		log.WithField("job", name).Warn("Задача уже выполняется, запуск пропущен")
		return false, nil
	}
	defer func() {
		if err := unlock(context.Background()); err != nil {
			log.WithError(err).WithField("job", name).Warn("Не удалось снять блокировку")
		}
	}()

	started := s.now().In(s.loc)
	log.WithField("job", name).Info("Задача запущена")
	err = job(ctx, started)
	log.WithFields(log.Fields{"job": name, "duration": time.Since(started).Round(time.Millisecond)}).Info("Задача завершена")
	return true, err
}

// Start запускает cron в фоне. Задачи по расписанию получают ctx:
// его отмена прерывает идущий прогон.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
}

// Stop останавливает cron и ждёт завершения идущих задач
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cron.Stop()
	s.running.Wait()
}

// NextRun ближайшее срабатывание расписания после from
func NextRun(spec string, from time.Time) (time.Time, error) {
	schedule, err := cron.Parse(spec)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(from), nil
}
