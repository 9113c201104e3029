package offers

import (
	"context"

	"github.com/rajivgeraev/sdelka-api/internal/models"
)

// Service движок заказов: создание, проверки прав и машина статусов
type Service struct {
	store Store
	dir   Directory
}

// NewService создаёт новый экземпляр Service
func NewService(store Store, dir Directory) *Service {
	return &Service{store: store, dir: dir}
}

// CreateOfferInput данные нового заказа; заполняется ровно одно из
// ItemID/RequestID (валидируется на границе API)
type CreateOfferInput struct {
	ItemID    *int64
	RequestID *int64
	ToUserID  int64
	Details   models.OfferDetails
}

// Create создаёт заказ после проверки ролей и владения.
// Заказ по товару может быть адресован только продавцу-владельцу товара,
// на запрос покупателя может откликнуться только продавец.
func (s *Service) Create(ctx context.Context, user models.TokenPayload, input CreateOfferInput) (int64, error) {
	if user.ID == input.ToUserID {
		return 0, ErrSelfOffer
	}

	if input.ItemID != nil {
		userTypes, err := s.dir.UserTypes(ctx, input.ToUserID)
		if err != nil {
			return 0, err
		}
		if !models.HasSellerType(userTypes[input.ToUserID]) {
			return 0, ErrWrongOfferReceiver
		}
		itemOwner, err := s.dir.ItemOwner(ctx, *input.ItemID)
		if err != nil {
			return 0, err
		}
		if itemOwner != input.ToUserID {
			return 0, ErrItemHasAnotherOwner
		}
	}

	if input.RequestID != nil {
		// роль отправителя уже есть в токене, в справочник не ходим
		if !user.HasType(models.TypeSeller) {
			return 0, ErrWrongOfferSender
		}
		// TODO: Добавить проверку владельца запроса
	}

	currency := input.Details.Currency
	if currency == "" {
		currency = "RUB"
	}

	offer := &models.Offer{
		ItemID:     input.ItemID,
		RequestID:  input.RequestID,
		FromUserID: user.ID,
		ToUserID:   input.ToUserID,
		Status:     models.StatusPending,
		Price:      input.Details.Price,
		Currency:   currency,
		Production: input.Details.Production,
		Comment:    input.Details.Comment,
	}
	return s.store.Create(ctx, offer)
}

// GetOffer возвращает полное представление заказа одной из его сторон
func (s *Service) GetOffer(ctx context.Context, offerID, userID int64) (*models.OfferView, error) {
	offer, err := s.store.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, &OfferNotFoundError{OfferID: offerID}
	}
	if !offer.Party(userID) {
		return nil, &OfferNotBelongYouError{OfferID: offerID}
	}
	return s.store.View(ctx, offerID)
}

// ListOffers возвращает страницу заказов пользователя.
// target: "from_me" — созданные пользователем, "to_me" — адресованные ему.
func (s *Service) ListOffers(ctx context.Context, userID int64, target string, page, limit int) ([]models.OfferView, models.Meta, error) {
	incoming := target == "to_me"
	offset := (page - 1) * limit

	views, total, err := s.store.List(ctx, userID, incoming, offset, limit)
	if err != nil {
		return nil, models.Meta{}, err
	}

	meta := models.Meta{
		Page:         page,
		TotalItems:   total,
		TotalPages:   (total + limit - 1) / limit,
		ItemsPerPage: limit,
	}
	return views, meta, nil
}

// DeleteOffer удаляет заказ; разрешено только его создателю.
// Возвращает id второй стороны для отложенного уведомления.
func (s *Service) DeleteOffer(ctx context.Context, offerID, userID int64) (int64, error) {
	offer, err := s.store.Get(ctx, offerID)
	if err != nil {
		return 0, err
	}
	if offer == nil {
		return 0, &OfferNotFoundError{OfferID: offerID}
	}
	if offer.FromUserID != userID {
		return 0, ErrDeleteOffer
	}
	if err := s.store.Delete(ctx, offerID); err != nil {
		return 0, err
	}
	return offer.ToUserID, nil
}

// UpdateDetails применяет частичное обновление деталей заказа;
// разрешено только его создателю. Статус не затрагивается.
// Возвращает id второй стороны для отложенного уведомления.
func (s *Service) UpdateDetails(ctx context.Context, offerID, userID int64, patch models.OfferDetailsPatch) (int64, error) {
	offer, err := s.store.Get(ctx, offerID)
	if err != nil {
		return 0, err
	}
	if offer == nil {
		return 0, &OfferNotFoundError{OfferID: offerID}
	}
	if offer.FromUserID != userID {
		return 0, &OfferNotBelongYouError{OfferID: offerID}
	}
	if !patch.Empty() {
		if err := s.store.UpdateDetails(ctx, offerID, patch); err != nil {
			return 0, err
		}
	}
	return offer.ToUserID, nil
}

// UpdateStatus выполняет переход статуса заказа.
// Порядок проверок фиксирован: существование и принадлежность,
// терминальность текущего статуса, допустимость перехода, права актора.
// Возвращает id стороны, которую следует уведомить о переходе.
func (s *Service) UpdateStatus(ctx context.Context, offerID, userID int64, newStatus models.OfferStatus, comment *string) (int64, error) {
	offer, err := s.store.Get(ctx, offerID)
	if err != nil {
		return 0, err
	}
	if offer == nil {
		return 0, &OfferNotFoundError{OfferID: offerID}
	}
	if !offer.Party(userID) {
		return 0, &OfferNotBelongYouError{OfferID: offerID}
	}

	if offer.Status == models.StatusCompleted || offer.Status == models.StatusRejected {
		return 0, &OfferAlreadyClosedError{OfferID: offerID}
	}

	if !transitionAllowed(offer.Status, newStatus) {
		return 0, &WrongNewStatusError{
			OfferID:   offerID,
			NewStatus: newStatus,
			OldStatus: offer.Status,
		}
	}

	if err := checkStatusActor(offer, newStatus, userID); err != nil {
		return 0, err
	}

	updated, err := s.store.UpdateStatus(ctx, offerID, offer.Status, newStatus, comment)
	if err != nil {
		return 0, err
	}
	if !updated {
		return 0, ErrStatusChanged
	}

	if offer.RequestID != nil {
		return offer.ToUserID, nil
	}
	return offer.FromUserID, nil
}

// Participants возвращает обе стороны заказа для построения диалога
func (s *Service) Participants(ctx context.Context, offerID, userID int64) ([]int64, error) {
	offer, err := s.store.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, &OfferNotFoundError{OfferID: offerID}
	}
	if !offer.Party(userID) {
		return nil, &OfferNotBelongYouError{OfferID: offerID}
	}
	return []int64{offer.FromUserID, offer.ToUserID}, nil
}
