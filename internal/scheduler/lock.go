package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker не даёт запустить одну и ту же задачу дважды одновременно
type Locker interface {
	// TryLock берёт блокировку key на ttl. ok=false: блокировка уже занята.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

// LocalLock блокировка внутри одного процесса
type LocalLock struct {
	mu   sync.Mutex
	held map[string]time.Time
}

// NewLocalLock создаёт блокировку в памяти
func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]time.Time)}
}

func (l *LocalLock) TryLock(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expires, ok := l.held[key]; ok && time.Now().Before(expires) {
		return nil, false, nil
	}
	expires := time.Now().Add(ttl)
	l.held[key] = expires

	unlock := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key].Equal(expires) {
			delete(l.held, key)
		}
		return nil
	}
	return unlock, true, nil
}

// releaseScript снимает блокировку, только если она всё ещё наша
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock блокировка через SET NX PX, общая для всех экземпляров бота
type RedisLock struct {
	client *redis.Client
	prefix string
}

// NewRedisLock подключается к Redis по URL вида redis://host:6379/0
func NewRedisLock(ctx context.Context, url string) (*RedisLock, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("неверный REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis недоступен: %w", err)
	}
	return NewRedisLockWithClient(client), nil
}

// NewRedisLockWithClient оборачивает готовый клиент
func NewRedisLockWithClient(client *redis.Client) *RedisLock {
	return &RedisLock{client: client, prefix: "habitbot:lock:"}
}

func (l *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()
	fullKey := l.prefix + key

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis SET NX: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err()
	}
	return unlock, true, nil
}

// Close закрывает клиент Redis
func (l *RedisLock) Close() error {
	return l.client.Close()
}
