package models

import "time"

// OfferStatus статус заказа
type OfferStatus string

const (
	StatusPending    OfferStatus = "PENDING"
	StatusApproved   OfferStatus = "APPROVED"
	StatusProcessing OfferStatus = "PROCESSING"
	StatusRejected   OfferStatus = "REJECTED"
	StatusCancelled  OfferStatus = "CANCELLED"
	StatusCompleted  OfferStatus = "COMPLETED"
)

// StatusNames локализованные названия статусов для ответов API и текстов ошибок
var StatusNames = map[OfferStatus]string{
	StatusPending:    "В ожидании",
	StatusApproved:   "Подтверждён",
	StatusProcessing: "В работе",
	StatusRejected:   "Отклонён",
	StatusCancelled:  "Отменён",
	StatusCompleted:  "Завершён",
}

// Valid проверяет, что статус входит в известный набор
func (s OfferStatus) Valid() bool {
	_, ok := StatusNames[s]
	return ok
}

// Name возвращает локализованное название статуса
func (s OfferStatus) Name() string {
	return StatusNames[s]
}

// Terminal сообщает, допускает ли статус дальнейшие переходы
func (s OfferStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusCompleted
}

// Offer представляет заказ между двумя пользователями.
// Заказ ссылается либо на товар/услугу (ItemID), либо на запрос покупателя
// (RequestID) — ровно одно из двух.
type Offer struct {
	ID            int64       `json:"id"`
	ItemID        *int64      `json:"item_id,omitempty"`
	RequestID     *int64      `json:"request_id,omitempty"`
	FromUserID    int64       `json:"from_user_id"`
	ToUserID      int64       `json:"to_user_id"`
	Status        OfferStatus `json:"status"`
	RejectComment *string     `json:"reject_comment,omitempty"`

	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	Production *int    `json:"production,omitempty"`
	Comment    *string `json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ItemSourced сообщает, создан ли заказ по товару/услуге
func (o *Offer) ItemSourced() bool {
	return o.ItemID != nil
}

// Party проверяет, является ли пользователь стороной заказа
func (o *Offer) Party(userID int64) bool {
	return userID == o.FromUserID || userID == o.ToUserID
}

// OfferDetails детали заказа (цена, срок изготовления, комментарий)
type OfferDetails struct {
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	Production *int    `json:"production,omitempty"`
	Comment    *string `json:"comment,omitempty"`
}

// OfferDetailsPatch частичное обновление деталей заказа
type OfferDetailsPatch struct {
	Price      *float64 `json:"price,omitempty"`
	Production *int     `json:"production,omitempty"`
	Comment    *string  `json:"comment,omitempty"`
}

// Empty сообщает, что патч не содержит ни одного поля
func (p OfferDetailsPatch) Empty() bool {
	return p.Price == nil && p.Production == nil && p.Comment == nil
}

// OfferStatusInfo статус заказа с комментарием отклонения
type OfferStatusInfo struct {
	Status  string  `json:"status"`
	Comment *string `json:"comment,omitempty"`
}

// OfferView полное представление заказа для API
type OfferView struct {
	ID         int64           `json:"id"`
	FromUser   UserShort       `json:"from_user"`
	ToUser     UserShort       `json:"to_user"`
	Status     OfferStatusInfo `json:"status"`
	Item       *ItemSummary    `json:"item,omitempty"`
	Request    *RequestSummary `json:"request,omitempty"`
	Details    *OfferDetails   `json:"details,omitempty"`
	DateCreate time.Time       `json:"date_create"`
}

// Meta метаданные пагинации списка заказов
type Meta struct {
	Page         int `json:"page"`
	TotalItems   int `json:"total_items"`
	TotalPages   int `json:"total_pages"`
	ItemsPerPage int `json:"items_per_page"`
}
