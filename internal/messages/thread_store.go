package messages

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/sdelka-api/internal/models"
)

// uniqueViolation код ошибки PostgreSQL для нарушения уникального ограничения
const uniqueViolation = "23505"

// ThreadStore персистентность диалогов и их участников
type ThreadStore interface {
	Create(ctx context.Context, offerID, fromUser, toUser int64) (int64, error)
	Delete(ctx context.Context, threadID int64) error
	Participants(ctx context.Context, threadID int64) ([]int64, error)
	ParticipantsInfo(ctx context.Context, threadID int64) ([]models.UserShort, error)
	UserThreads(ctx context.Context, userID int64) ([]int64, error)
}

// PgThreadStore реализация ThreadStore поверх PostgreSQL
type PgThreadStore struct {
	pool *pgxpool.Pool
}

// NewPgThreadStore создаёт новый экземпляр PgThreadStore
func NewPgThreadStore(pool *pgxpool.Pool) *PgThreadStore {
	return &PgThreadStore{pool: pool}
}

// Create атомарно создаёт диалог и двух участников.
// Уникальное ограничение на offer_id гарантирует один диалог на заказ,
// в том числе при конкурентных запросах.
func (s *PgThreadStore) Create(ctx context.Context, offerID, fromUser, toUser int64) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var threadID int64
	err = tx.QueryRow(ctx, `
        INSERT INTO offers_threads (offer_id) VALUES ($1) RETURNING id
    `, offerID).Scan(&threadID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrThreadAlreadyExists
		}
		return 0, fmt.Errorf("ошибка создания диалога: %w", err)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO threads_participants (thread_id, user_id) VALUES ($1, $2), ($1, $3)
    `, threadID, fromUser, toUser)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания участников диалога: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return threadID, nil
}

// Delete удаляет диалог вместе с участниками
func (s *PgThreadStore) Delete(ctx context.Context, threadID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM threads_participants WHERE thread_id = $1`, threadID); err != nil {
		return fmt.Errorf("ошибка удаления участников диалога: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM offers_threads WHERE id = $1`, threadID); err != nil {
		return fmt.Errorf("ошибка удаления диалога: %w", err)
	}
	return tx.Commit(ctx)
}

// Participants возвращает участников диалога, nil — если диалога нет
func (s *PgThreadStore) Participants(ctx context.Context, threadID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT user_id FROM threads_participants WHERE thread_id = $1
    `, threadID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса участников диалога: %w", err)
	}
	defer rows.Close()

	var participants []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("ошибка сканирования участника: %w", err)
		}
		participants = append(participants, userID)
	}
	return participants, rows.Err()
}

// ParticipantsInfo возвращает краткие карточки участников диалога
func (s *PgThreadStore) ParticipantsInfo(ctx context.Context, threadID int64) ([]models.UserShort, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT u.id, u.name, COALESCE(u.city, ''), COALESCE(u.avatar_url, '')
        FROM threads_participants tp
        JOIN users u ON u.id = tp.user_id
        WHERE tp.thread_id = $1
    `, threadID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса информации об участниках: %w", err)
	}
	defer rows.Close()

	var users []models.UserShort
	for rows.Next() {
		var user models.UserShort
		if err := rows.Scan(&user.ID, &user.Name, &user.City, &user.AvatarURL); err != nil {
			return nil, fmt.Errorf("ошибка сканирования участника: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UserThreads возвращает идентификаторы диалогов пользователя
func (s *PgThreadStore) UserThreads(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT thread_id FROM threads_participants WHERE user_id = $1
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса диалогов пользователя: %w", err)
	}
	defer rows.Close()

	var threads []int64
	for rows.Next() {
		var threadID int64
		if err := rows.Scan(&threadID); err != nil {
			return nil, fmt.Errorf("ошибка сканирования диалога: %w", err)
		}
		threads = append(threads, threadID)
	}
	return threads, rows.Err()
}
