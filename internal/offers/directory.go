package offers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/sdelka-api/internal/models"
)

// Directory внешние справочные данные: типы аккаунтов и владельцы товаров.
// Ведение пользователей и каталога — зона других сервисов, ядру заказов
// нужны только выборки.
type Directory interface {
	UserTypes(ctx context.Context, userIDs ...int64) (map[int64][]models.UserType, error)
	ItemOwner(ctx context.Context, itemID int64) (int64, error)
}

// PgDirectory реализация Directory поверх общей базы данных
type PgDirectory struct {
	pool *pgxpool.Pool
}

// NewPgDirectory создаёт новый экземпляр PgDirectory
func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

// UserTypes возвращает типы аккаунтов для набора пользователей
func (d *PgDirectory) UserTypes(ctx context.Context, userIDs ...int64) (map[int64][]models.UserType, error) {
	rows, err := d.pool.Query(ctx, `
        SELECT user_id, type FROM user_types WHERE user_id = ANY($1)
    `, userIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса типов пользователей: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]models.UserType, len(userIDs))
	for rows.Next() {
		var userID int64
		var userType string
		if err := rows.Scan(&userID, &userType); err != nil {
			return nil, fmt.Errorf("ошибка сканирования типа пользователя: %w", err)
		}
		result[userID] = append(result[userID], models.UserType(userType))
	}
	return result, rows.Err()
}

// ItemOwner возвращает владельца товара/услуги
func (d *PgDirectory) ItemOwner(ctx context.Context, itemID int64) (int64, error) {
	var ownerID int64
	err := d.pool.QueryRow(ctx, `
        SELECT user_id FROM items WHERE id = $1
    `, itemID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &ItemNotFoundError{ItemID: itemID}
		}
		return 0, fmt.Errorf("ошибка запроса владельца товара: %w", err)
	}
	return ownerID, nil
}
