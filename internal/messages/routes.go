package messages

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/sdelka-api/internal/middleware"
	"github.com/rajivgeraev/sdelka-api/internal/offers"
	"github.com/rajivgeraev/sdelka-api/pkg/logger"
)

// API обработчики HTTP для диалогов и сообщений
type API struct {
	service *Service
	offers  OfferParticipants
}

// NewAPI создаёт новый экземпляр API
func NewAPI(service *Service, offers OfferParticipants) *API {
	return &API{service: service, offers: offers}
}

// SetupRoutes настраивает маршруты для API сообщений
func (a *API) SetupRoutes(app *fiber.App, auth fiber.Handler) {
	// Группа для API сообщений
	api := app.Group("/api/v1/messages")

	// Защищённые маршруты (требуют авторизации)
	api.Use(auth)

	api.Post("/thread", a.createThread)
	api.Delete("/thread/:thread_id", a.deleteThread)
	api.Post("/thread/:thread_id/message", a.sendMessage)
	api.Get("/thread/:thread_id/messages", a.getMessages)
	api.Patch("/thread/:thread_id/messages/mark-as-read", a.markAsRead)
	api.Put("/thread/:thread_id/messages/:message_id", a.updateMessage)
	api.Delete("/thread/:thread_id/messages/:message_id", a.deleteMessage)
	api.Get("/unread/total", a.unreadTotal)
	api.Get("/threads", a.userThreads)
}

// createThread создаёт диалог по заказу
func (a *API) createThread(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	offerID, err := strconv.ParseInt(c.Query("offer_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID заказа"})
	}

	threadID, err := a.service.CreateThread(c.Context(), user.ID, offerID, a.offers)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"thread_id": threadID})
}

// deleteThread удаляет диалог вместе с сообщениями
func (a *API) deleteThread(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	threadID, err := strconv.ParseInt(c.Params("thread_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID диалога"})
	}

	if err := a.service.DeleteThread(c.Context(), threadID, user.ID); err != nil {
		return a.handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// sendMessage отправляет сообщение в диалог
func (a *API) sendMessage(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	threadID, err := strconv.ParseInt(c.Params("thread_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID диалога"})
	}

	var requestData struct {
		Content string `json:"content"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}
	if requestData.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Текст сообщения не может быть пустым"})
	}

	messageID, err := a.service.SendMessage(c.Context(), threadID, user.ID, requestData.Content)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message_id": messageID})
}

// getMessages возвращает страницу сообщений диалога
func (a *API) getMessages(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	threadID, err := strconv.ParseInt(c.Params("thread_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID диалога"})
	}

	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	msgs, meta, err := a.service.GetMessages(c.Context(), threadID, user.ID, offset, limit)
	if err != nil {
		return a.handleError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": msgs,
		"meta":     meta,
	})
}

// updateMessage редактирует сообщение отправителя
func (a *API) updateMessage(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	threadID, err := strconv.ParseInt(c.Params("thread_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID диалога"})
	}
	messageID := c.Params("message_id")

	var requestData struct {
		Content string `json:"content"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}
	if requestData.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Текст сообщения не может быть пустым"})
	}

	success, err := a.service.UpdateOrDeleteMessage(c.Context(), threadID, messageID, user.ID, requestData.Content, "upd")
	if err != nil {
		return a.handleError(c, err)
	}
	return c.JSON(fiber.Map{"success": success})
}

// deleteMessage удаляет сообщение отправителя
func (a *API) deleteMessage(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	threadID, err := strconv.ParseInt(c.Params("thread_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID диалога"})
	}
	messageID := c.Params("message_id")

	success, err := a.service.UpdateOrDeleteMessage(c.Context(), threadID, messageID, user.ID, "", "del")
	if err != nil {
		return a.handleError(c, err)
	}
	return c.JSON(fiber.Map{"success": success})
}

// markAsRead помечает прочитанными несколько сообщений
func (a *API) markAsRead(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	threadID, err := strconv.ParseInt(c.Params("thread_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID диалога"})
	}

	var requestData struct {
		IDs []string `json:"ids"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	success, err := a.service.MarkAsRead(c.Context(), threadID, requestData.IDs, user.ID)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.JSON(fiber.Map{"success": success})
}

// unreadTotal возвращает число непрочитанных сообщений пользователя
func (a *API) unreadTotal(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	count, err := a.service.UnreadTotal(c.Context(), user.ID)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// userThreads возвращает все диалоги пользователя
func (a *API) userThreads(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	threads, err := a.service.UserThreads(c.Context(), user.ID)
	if err != nil {
		return a.handleError(c, err)
	}
	return c.JSON(fiber.Map{"threads": threads})
}

// handleError преобразует доменные ошибки в HTTP-ответы
func (a *API) handleError(c fiber.Ctx, err error) error {
	var threadErr *ThreadError
	var offerNotFound *offers.OfferNotFoundError
	var offerNotBelong *offers.OfferNotBelongYouError

	switch {
	case errors.Is(err, ErrThreadNotFound),
		errors.Is(err, ErrMessageNotFound),
		errors.As(err, &offerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrThreadAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &offerNotBelong):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &threadErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	logger.Get().Error().Err(err).Msg("внутренняя ошибка сервиса сообщений")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
}
