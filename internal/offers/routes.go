package offers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/sdelka-api/internal/middleware"
	"github.com/rajivgeraev/sdelka-api/internal/models"
	"github.com/rajivgeraev/sdelka-api/pkg/logger"
)

// API обработчики HTTP для заказов
type API struct {
	service *Service
}

// NewAPI создаёт новый экземпляр API
func NewAPI(service *Service) *API {
	return &API{service: service}
}

// SetupRoutes настраивает маршруты для API заказов
func (a *API) SetupRoutes(app *fiber.App, auth fiber.Handler) {
	// Группа для API заказов
	api := app.Group("/api/v1/offers")

	// Защищённые маршруты (требуют авторизации)
	api.Use(auth)

	api.Post("/new", a.createOffer)
	api.Get("/", a.listOffers)
	api.Get("/:offer_id", a.getOffer)
	api.Delete("/:offer_id", a.deleteOffer)
	api.Patch("/:offer_id/details", a.updateDetails)
	api.Put("/:offer_id/status", a.updateStatus)
}

// createOffer создаёт новый заказ
func (a *API) createOffer(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var requestData struct {
		ItemID    *int64 `json:"item_id"`
		RequestID *int64 `json:"request_id"`
		ToUserID  int64  `json:"to_user_id"`
		Details   struct {
			Price      float64 `json:"price"`
			Currency   string  `json:"currency"`
			Production *int    `json:"production"`
			Comment    *string `json:"comment"`
		} `json:"details"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	// Заказ ссылается ровно на одно: товар или запрос
	if (requestData.ItemID == nil) == (requestData.RequestID == nil) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Необходимо указать item_id либо request_id",
		})
	}
	if requestData.Details.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Цена должна быть положительной"})
	}

	offerID, err := a.service.Create(c.Context(), user, CreateOfferInput{
		ItemID:    requestData.ItemID,
		RequestID: requestData.RequestID,
		ToUserID:  requestData.ToUserID,
		Details: models.OfferDetails{
			Price:      requestData.Details.Price,
			Currency:   requestData.Details.Currency,
			Production: requestData.Details.Production,
			Comment:    requestData.Details.Comment,
		},
	})
	if err != nil {
		return a.handleError(c, err)
	}

	// TODO: Добавить отправку уведомления получателю заказа
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"offer_id": offerID,
	})
}

// listOffers возвращает страницу заказов пользователя
func (a *API) listOffers(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	target := c.Query("target", "from_me")
	if target != "from_me" && target != "to_me" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимое значение target"})
	}

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("page_limit", "50"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 50
	}

	result, meta, err := a.service.ListOffers(c.Context(), user.ID, target, page, limit)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.JSON(fiber.Map{
		"result": result,
		"meta":   meta,
	})
}

// getOffer возвращает заказ по ID
func (a *API) getOffer(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	offerID, err := strconv.ParseInt(c.Params("offer_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID заказа"})
	}

	offer, err := a.service.GetOffer(c.Context(), offerID, user.ID)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.JSON(offer)
}

// deleteOffer удаляет заказ пользователя
func (a *API) deleteOffer(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	offerID, err := strconv.ParseInt(c.Params("offer_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID заказа"})
	}

	_, err = a.service.DeleteOffer(c.Context(), offerID, user.ID)
	if err != nil {
		return a.handleError(c, err)
	}

	// TODO: Добавить уведомление второй стороны об удалении заказа
	return c.SendStatus(fiber.StatusNoContent)
}

// updateDetails изменяет детали заказа
func (a *API) updateDetails(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	offerID, err := strconv.ParseInt(c.Params("offer_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID заказа"})
	}

	var patch models.OfferDetailsPatch
	if err := c.Bind().Body(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Цена должна быть положительной"})
	}

	_, err = a.service.UpdateDetails(c.Context(), offerID, user.ID, patch)
	if err != nil {
		return a.handleError(c, err)
	}

	// TODO: Добавить уведомление второй стороны об изменении деталей
	return c.JSON(fiber.Map{"success": true})
}

// updateStatus изменяет статус заказа
func (a *API) updateStatus(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	offerID, err := strconv.ParseInt(c.Params("offer_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID заказа"})
	}

	var requestData struct {
		Status  string  `json:"status"`
		Comment *string `json:"comment"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	newStatus := models.OfferStatus(requestData.Status)
	if !newStatus.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус заказа"})
	}

	// Отклонение заказа требует комментария
	if newStatus == models.StatusRejected && (requestData.Comment == nil || *requestData.Comment == "") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Для отклонения заказа необходимо указать комментарий",
		})
	}

	_, err = a.service.UpdateStatus(c.Context(), offerID, user.ID, newStatus, requestData.Comment)
	if err != nil {
		return a.handleError(c, err)
	}

	// TODO: Добавить уведомление второй стороны о смене статуса
	return c.JSON(fiber.Map{"success": true})
}

// handleError преобразует доменные ошибки в HTTP-ответы
func (a *API) handleError(c fiber.Ctx, err error) error {
	var notFound *OfferNotFoundError
	var itemNotFound *ItemNotFoundError
	var notBelong *OfferNotBelongYouError
	var wrongStatus *WrongNewStatusError
	var alreadyClosed *OfferAlreadyClosedError
	var updateStatus *UpdateStatusError

	switch {
	case errors.As(err, &notFound), errors.As(err, &itemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &notBelong):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrStatusChanged):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrSelfOffer),
		errors.Is(err, ErrWrongOfferReceiver),
		errors.Is(err, ErrWrongOfferSender),
		errors.Is(err, ErrItemHasAnotherOwner),
		errors.Is(err, ErrDeleteOffer),
		errors.As(err, &wrongStatus),
		errors.As(err, &alreadyClosed),
		errors.As(err, &updateStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Get().Error().Err(err).Msg("внутренняя ошибка сервиса заказов")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
}
