package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL констант
const (
	TTLUnread = 1 * time.Minute // счётчик непрочитанных, короткий TTL
)

// Префиксы ключей
const (
	PrefixUnread = "unread:"
)

// Cache Redis-кэш счётчиков непрочитанных сообщений
type Cache struct {
	rdb *redis.Client
}

// New создаёт клиента Redis по URL подключения
func New(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе URL Redis: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при проверке соединения с Redis: %w", err)
	}

	return &Cache{rdb: rdb}, nil
}

// Close закрывает соединение с Redis
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func unreadKey(userID int64) string {
	return PrefixUnread + strconv.FormatInt(userID, 10)
}

// GetUnreadTotal возвращает закэшированное число непрочитанных сообщений
func (c *Cache) GetUnreadTotal(ctx context.Context, userID int64) (int64, bool) {
	val, err := c.rdb.Get(ctx, unreadKey(userID)).Int64()
	if err != nil {
		return 0, false
	}
	return val, true
}

// SetUnreadTotal сохраняет число непрочитанных сообщений
func (c *Cache) SetUnreadTotal(ctx context.Context, userID int64, total int64) {
	_ = c.rdb.Set(ctx, unreadKey(userID), total, TTLUnread).Err()
}

// InvalidateUnread сбрасывает счётчики непрочитанных для пользователей
func (c *Cache) InvalidateUnread(ctx context.Context, userIDs ...int64) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, unreadKey(id))
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}
