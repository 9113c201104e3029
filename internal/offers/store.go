package offers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/sdelka-api/internal/models"
	"github.com/rajivgeraev/sdelka-api/pkg/logger"
)

// Store персистентность заказов
type Store interface {
	Create(ctx context.Context, offer *models.Offer) (int64, error)
	Get(ctx context.Context, offerID int64) (*models.Offer, error)
	View(ctx context.Context, offerID int64) (*models.OfferView, error)
	List(ctx context.Context, userID int64, incoming bool, offset, limit int) ([]models.OfferView, int, error)
	Delete(ctx context.Context, offerID int64) error
	UpdateDetails(ctx context.Context, offerID int64, patch models.OfferDetailsPatch) error
	UpdateStatus(ctx context.Context, offerID int64, current, next models.OfferStatus, rejectComment *string) (bool, error)
}

// PgStore реализация Store поверх PostgreSQL
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore создаёт новый экземпляр PgStore
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Create сохраняет заказ вместе с деталями
func (s *PgStore) Create(ctx context.Context, offer *models.Offer) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var offerID int64
	err = tx.QueryRow(ctx, `
        INSERT INTO offers (item_id, request_id, from_user_id, to_user_id, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, offer.ItemID, offer.RequestID, offer.FromUserID, offer.ToUserID, offer.Status).Scan(&offerID)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания заказа: %w", err)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO offer_details (offer_id, price, currency, production, comment)
        VALUES ($1, $2, $3, $4, $5)
    `, offerID, offer.Price, offer.Currency, offer.Production, offer.Comment)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания деталей заказа: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return offerID, nil
}

// Get возвращает заказ с деталями, nil — если заказа нет
func (s *PgStore) Get(ctx context.Context, offerID int64) (*models.Offer, error) {
	var offer models.Offer
	err := s.pool.QueryRow(ctx, `
        SELECT o.id, o.item_id, o.request_id, o.from_user_id, o.to_user_id,
               o.status, o.reject_comment, o.created_at,
               d.price, d.currency, d.production, d.comment
        FROM offers o
        JOIN offer_details d ON d.offer_id = o.id
        WHERE o.id = $1
    `, offerID).Scan(
		&offer.ID,
		&offer.ItemID,
		&offer.RequestID,
		&offer.FromUserID,
		&offer.ToUserID,
		&offer.Status,
		&offer.RejectComment,
		&offer.CreatedAt,
		&offer.Price,
		&offer.Currency,
		&offer.Production,
		&offer.Comment,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка запроса заказа: %w", err)
	}
	return &offer, nil
}

// View возвращает полное представление заказа для API
func (s *PgStore) View(ctx context.Context, offerID int64) (*models.OfferView, error) {
	offer, err := s.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, nil
	}
	return s.buildView(ctx, offer, true)
}

// List возвращает страницу заказов пользователя и общее количество
func (s *PgStore) List(ctx context.Context, userID int64, incoming bool, offset, limit int) ([]models.OfferView, int, error) {
	key := "from_user_id"
	if incoming {
		key = "to_user_id"
	}

	var total int
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM offers WHERE %s = $1`, key),
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта заказов: %w", err)
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT o.id, o.item_id, o.request_id, o.from_user_id, o.to_user_id,
               o.status, o.reject_comment, o.created_at,
               d.price, d.currency, d.production, d.comment
        FROM offers o
        JOIN offer_details d ON d.offer_id = o.id
        WHERE o.%s = $1
        ORDER BY o.created_at DESC
        OFFSET $2 LIMIT $3
    `, key), userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка запроса заказов: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var offer models.Offer
		if err := rows.Scan(
			&offer.ID,
			&offer.ItemID,
			&offer.RequestID,
			&offer.FromUserID,
			&offer.ToUserID,
			&offer.Status,
			&offer.RejectComment,
			&offer.CreatedAt,
			&offer.Price,
			&offer.Currency,
			&offer.Production,
			&offer.Comment,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования заказа: %w", err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// В списке детали не раскрываются, только краткие карточки сторон и товара
	views := make([]models.OfferView, 0, len(offers))
	for i := range offers {
		view, err := s.buildView(ctx, &offers[i], false)
		if err != nil {
			logger.Get().Error().Err(err).Int64("offer_id", offers[i].ID).Msg("ошибка сборки карточки заказа")
			continue
		}
		views = append(views, *view)
	}
	return views, total, nil
}

// Delete удаляет заказ вместе с деталями
func (s *PgStore) Delete(ctx context.Context, offerID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM offer_details WHERE offer_id = $1`, offerID); err != nil {
		return fmt.Errorf("ошибка удаления деталей заказа: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM offers WHERE id = $1`, offerID); err != nil {
		return fmt.Errorf("ошибка удаления заказа: %w", err)
	}
	return tx.Commit(ctx)
}

// UpdateDetails применяет частичное обновление деталей заказа
func (s *PgStore) UpdateDetails(ctx context.Context, offerID int64, patch models.OfferDetailsPatch) error {
	_, err := s.pool.Exec(ctx, `
        UPDATE offer_details
        SET price = COALESCE($2, price),
            production = COALESCE($3, production),
            comment = COALESCE($4, comment)
        WHERE offer_id = $1
    `, offerID, patch.Price, patch.Production, patch.Comment)
	if err != nil {
		return fmt.Errorf("ошибка обновления деталей заказа: %w", err)
	}
	return nil
}

// UpdateStatus записывает новый статус, только если текущий не успел измениться
func (s *PgStore) UpdateStatus(ctx context.Context, offerID int64, current, next models.OfferStatus, rejectComment *string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
        UPDATE offers
        SET status = $1, reject_comment = $2
        WHERE id = $3 AND status = $4
    `, next, rejectComment, offerID, current)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления статуса заказа: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// buildView собирает представление заказа: стороны, товар или запрос, детали
func (s *PgStore) buildView(ctx context.Context, offer *models.Offer, withDetails bool) (*models.OfferView, error) {
	fromUser, err := s.getUserShort(ctx, offer.FromUserID)
	if err != nil {
		return nil, err
	}
	toUser, err := s.getUserShort(ctx, offer.ToUserID)
	if err != nil {
		return nil, err
	}

	view := models.OfferView{
		ID:       offer.ID,
		FromUser: fromUser,
		ToUser:   toUser,
		Status: models.OfferStatusInfo{
			Status:  offer.Status.Name(),
			Comment: offer.RejectComment,
		},
		DateCreate: offer.CreatedAt,
	}

	if offer.ItemID != nil {
		item, err := s.getItemSummary(ctx, *offer.ItemID)
		if err != nil {
			return nil, err
		}
		view.Item = item
	}
	if offer.RequestID != nil {
		request, err := s.getRequestSummary(ctx, *offer.RequestID)
		if err != nil {
			return nil, err
		}
		view.Request = request
	}

	if withDetails {
		view.Details = &models.OfferDetails{
			Price:      offer.Price,
			Currency:   offer.Currency,
			Production: offer.Production,
			Comment:    offer.Comment,
		}
	}
	return &view, nil
}

// getUserShort получает краткую информацию о пользователе
func (s *PgStore) getUserShort(ctx context.Context, userID int64) (models.UserShort, error) {
	var user models.UserShort
	err := s.pool.QueryRow(ctx, `
        SELECT id, name, COALESCE(city, ''), COALESCE(avatar_url, '')
        FROM users
        WHERE id = $1
    `, userID).Scan(&user.ID, &user.Name, &user.City, &user.AvatarURL)
	if err != nil {
		return models.UserShort{}, fmt.Errorf("ошибка получения пользователя %d: %w", userID, err)
	}
	return user, nil
}

// getItemSummary получает краткую информацию о товаре/услуге
func (s *PgStore) getItemSummary(ctx context.Context, itemID int64) (*models.ItemSummary, error) {
	var item models.ItemSummary
	err := s.pool.QueryRow(ctx, `
        SELECT id, title, status, fix_price, from_price, to_price, currency,
               COALESCE(city, ''), COALESCE(address, ''), created_at
        FROM items
        WHERE id = $1
    `, itemID).Scan(
		&item.ID,
		&item.Title,
		&item.Status,
		&item.Price.FixPrice,
		&item.Price.FromPrice,
		&item.Price.ToPrice,
		&item.Price.Currency,
		&item.Location.City,
		&item.Location.Address,
		&item.DateCreate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ItemNotFoundError{ItemID: itemID}
		}
		return nil, fmt.Errorf("ошибка получения товара %d: %w", itemID, err)
	}

	rows, err := s.pool.Query(ctx, `
        SELECT url FROM item_photos WHERE item_id = $1 ORDER BY position ASC
    `, itemID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения фотографий товара: %w", err)
	}
	defer rows.Close()

	item.Photos = []string{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("ошибка сканирования фотографии: %w", err)
		}
		item.Photos = append(item.Photos, url)
	}
	return &item, rows.Err()
}

// getRequestSummary получает краткую информацию о запросе покупателя
func (s *PgStore) getRequestSummary(ctx context.Context, requestID int64) (*models.RequestSummary, error) {
	var request models.RequestSummary
	err := s.pool.QueryRow(ctx, `
        SELECT id, title, created_at FROM requests WHERE id = $1
    `, requestID).Scan(&request.ID, &request.Title, &request.DateCreate)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения запроса %d: %w", requestID, err)
	}
	return &request, nil
}
