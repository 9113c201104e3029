package offers

import "github.com/rajivgeraev/sdelka-api/internal/models"

// allowedTransitions задаёт граф переходов статусов заказа.
// Из любого открытого статуса заказ можно отклонить или отменить,
// вперёд статус двигается только по одному шагу:
// PENDING -> APPROVED -> PROCESSING -> COMPLETED.
// Терминальные статусы исходящих переходов не имеют.
var allowedTransitions = map[models.OfferStatus][]models.OfferStatus{
	models.StatusPending:    {models.StatusApproved, models.StatusRejected, models.StatusCancelled},
	models.StatusApproved:   {models.StatusProcessing, models.StatusRejected, models.StatusCancelled},
	models.StatusProcessing: {models.StatusCompleted, models.StatusRejected, models.StatusCancelled},
}

// transitionAllowed проверяет переход по графу статусов
func transitionAllowed(from, to models.OfferStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkStatusActor проверяет, вправе ли пользователь установить целевой статус.
// Какая сторона управляет переходом, зависит от источника заказа:
// по товару статусами управляет его владелец (получатель заказа),
// по запросу — откликнувшийся продавец (создатель заказа).
// Завершает заказ всегда противоположная сторона.
// Для CANCELLED ограничений по актору нет: отменить может любая сторона.
func checkStatusActor(offer *models.Offer, target models.OfferStatus, userID int64) error {
	switch target {
	case models.StatusCompleted:
		if offer.ItemSourced() {
			if userID != offer.FromUserID {
				return &UpdateStatusError{Message: "Завершить заказ может только его создатель"}
			}
		} else {
			if userID != offer.ToUserID {
				return &UpdateStatusError{Message: "Завершить заказ может только получатель"}
			}
		}
	case models.StatusApproved, models.StatusProcessing, models.StatusRejected:
		if offer.ItemSourced() {
			if userID != offer.ToUserID {
				return &UpdateStatusError{Message: "Изменить статус может только исполнитель"}
			}
		} else {
			if userID != offer.FromUserID {
				return &UpdateStatusError{Message: "Изменить статус может только исполнитель"}
			}
		}
	}
	return nil
}
