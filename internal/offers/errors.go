package offers

import (
	"errors"
	"fmt"

	"github.com/rajivgeraev/sdelka-api/internal/models"
)

// Ошибки предусловий создания заказа
var (
	ErrSelfOffer           = errors.New("Нельзя сделать заказ самому себе")
	ErrWrongOfferReceiver  = errors.New("Получатель заказа не является продавцом")
	ErrWrongOfferSender    = errors.New("На запрос может отвечать только продавец")
	ErrItemHasAnotherOwner = errors.New("Данная услуга/товар принадлежит другому продавцу")
	ErrDeleteOffer         = errors.New("Вы не можете удалить заказ, который не создавали")

	// Возникает, когда конкурентный запрос успел изменить статус первым
	ErrStatusChanged = errors.New("Статус заказа был изменён, обновите данные и повторите попытку")
)

// OfferNotFoundError заказ не найден
type OfferNotFoundError struct {
	OfferID int64
}

func (e *OfferNotFoundError) Error() string {
	return fmt.Sprintf("Заказ %d не найден", e.OfferID)
}

// OfferNotBelongYouError пользователь не является стороной заказа
type OfferNotBelongYouError struct {
	OfferID int64
}

func (e *OfferNotBelongYouError) Error() string {
	return fmt.Sprintf("Заказ %d вам не принадлежит", e.OfferID)
}

// ItemNotFoundError товар/услуга не найдены
type ItemNotFoundError struct {
	ItemID int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("Товар %d не найден", e.ItemID)
}

// WrongNewStatusError недопустимый переход статуса
type WrongNewStatusError struct {
	OfferID   int64
	NewStatus models.OfferStatus
	OldStatus models.OfferStatus
}

func (e *WrongNewStatusError) Error() string {
	return fmt.Sprintf(
		"Невозможно применить статус %s для заказа с id %d, так как он находится в статусе %s",
		e.NewStatus.Name(), e.OfferID, e.OldStatus.Name(),
	)
}

// OfferAlreadyClosedError заказ находится в терминальном статусе
type OfferAlreadyClosedError struct {
	OfferID int64
}

func (e *OfferAlreadyClosedError) Error() string {
	return fmt.Sprintf("Заказ %d уже завершен или отменен", e.OfferID)
}

// UpdateStatusError пользователь не вправе установить данный статус
type UpdateStatusError struct {
	Message string
}

func (e *UpdateStatusError) Error() string {
	return e.Message
}
