package messages

import (
	"context"
	"time"

	"github.com/rajivgeraev/sdelka-api/internal/models"
	"github.com/rajivgeraev/sdelka-api/pkg/logger"
)

// OfferParticipants доступ к сторонам заказа (движок заказов)
type OfferParticipants interface {
	Participants(ctx context.Context, offerID, userID int64) ([]int64, error)
}

// UnreadCache кэш счётчиков непрочитанных сообщений
type UnreadCache interface {
	GetUnreadTotal(ctx context.Context, userID int64) (int64, bool)
	SetUnreadTotal(ctx context.Context, userID int64, total int64)
	InvalidateUnread(ctx context.Context, userIDs ...int64)
}

// Service движок сообщений: диалоги по заказам, доступ по участию,
// шифрование содержимого, учёт прочитанности
type Service struct {
	threads ThreadStore
	store   MessageStore
	cipher  *Cipher
	cache   UnreadCache // может отсутствовать, кэширование необязательно
}

// NewService создаёт новый экземпляр Service
func NewService(threads ThreadStore, store MessageStore, cipher *Cipher, cache UnreadCache) *Service {
	return &Service{threads: threads, store: store, cipher: cipher, cache: cache}
}

// CreateThread создаёт диалог по заказу между его сторонами.
// Создать диалог может любая из сторон, но только один раз.
func (s *Service) CreateThread(ctx context.Context, userID, offerID int64, offers OfferParticipants) (int64, error) {
	participants, err := offers.Participants(ctx, offerID, userID)
	if err != nil {
		return 0, err
	}

	var toUserID int64
	for _, id := range participants {
		if id != userID {
			toUserID = id
		}
	}
	if toUserID == 0 || toUserID == userID {
		return 0, &ThreadError{Message: "Нельзя создать диалог с самим собой"}
	}

	return s.threads.Create(ctx, offerID, userID, toUserID)
}

// participants проверяет существование диалога и участие пользователя
func (s *Service) participants(ctx context.Context, threadID, userID int64, errMessage string) ([]int64, error) {
	participants, err := s.threads.Participants(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, ErrThreadNotFound
	}
	for _, id := range participants {
		if id == userID {
			return participants, nil
		}
	}
	return nil, &ThreadError{Message: errMessage}
}

// DeleteThread удаляет диалог и его сообщения.
// Диалог и сообщения живут в разных хранилищах: сначала удаляется
// реляционная запись, затем сообщения. Неудача второй фазы логируется
// с thread_id для фоновой зачистки осиротевших сообщений.
func (s *Service) DeleteThread(ctx context.Context, threadID, userID int64) error {
	participants, err := s.participants(
		ctx, threadID, userID,
		"Вы не можете удалить диалог, участником которого вы не являетесь",
	)
	if err != nil {
		return err
	}

	if err := s.threads.Delete(ctx, threadID); err != nil {
		return err
	}

	if _, err := s.store.DeleteThread(ctx, threadID); err != nil {
		l := logger.WithUserID(userID)
		l.Error().Err(err).
			Int64("thread_id", threadID).
			Msg("диалог удалён, но сообщения остались, требуется зачистка")
	}

	if s.cache != nil {
		s.cache.InvalidateUnread(ctx, participants...)
	}
	return nil
}

// SendMessage отправляет сообщение в диалог.
// Карточки отправителя и получателя снимаются на момент отправки,
// содержимое шифруется перед записью.
func (s *Service) SendMessage(ctx context.Context, threadID, userID int64, content string) (string, error) {
	_, err := s.participants(
		ctx, threadID, userID,
		"Вы не можете отправить сообщение в диалог, участником которого вы не являетесь",
	)
	if err != nil {
		return "", err
	}

	users, err := s.threads.ParticipantsInfo(ctx, threadID)
	if err != nil {
		return "", err
	}
	if len(users) < 2 {
		return "", &ThreadError{Message: "Невозможно отправить сообщение в данный диалог"}
	}

	var fromUser, toUser models.UserShort
	for _, user := range users {
		if user.ID == userID {
			fromUser = user
		} else {
			toUser = user
		}
	}

	encrypted, err := s.cipher.Encrypt(content)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	messageID, err := s.store.Add(ctx, &models.ThreadMessage{
		ThreadID:  threadID,
		FromUser:  fromUser,
		ToUser:    toUser,
		Content:   encrypted,
		Read:      false,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		s.cache.InvalidateUnread(ctx, toUser.ID)
	}
	return messageID, nil
}

// GetMessages возвращает страницу сообщений диалога, новые первыми.
// Содержимое расшифровывается, сторона вызывающего помечается is_me.
func (s *Service) GetMessages(ctx context.Context, threadID, userID int64, offset, limit int) ([]models.ThreadMessage, models.MessageMeta, error) {
	_, err := s.participants(ctx, threadID, userID, "Вы не являетесь участником диалога")
	if err != nil {
		return nil, models.MessageMeta{}, err
	}

	msgs, err := s.store.ByThread(ctx, threadID, offset, limit)
	if err != nil {
		return nil, models.MessageMeta{}, err
	}
	if msgs == nil {
		msgs = []models.ThreadMessage{}
	}
	total, err := s.store.Count(ctx, threadID)
	if err != nil {
		return nil, models.MessageMeta{}, err
	}

	for i := range msgs {
		content, err := s.cipher.Decrypt(msgs[i].Content)
		if err != nil {
			return nil, models.MessageMeta{}, err
		}
		msgs[i].Content = content

		if msgs[i].FromUser.ID == userID {
			msgs[i].FromUser.IsMe = true
		} else if msgs[i].ToUser.ID == userID {
			msgs[i].ToUser.IsMe = true
		}
	}

	meta := models.MessageMeta{
		TotalMessages: total,
		CurrentOffset: offset,
		CurrentLimit:  limit,
	}
	return msgs, meta, nil
}

// UpdateOrDeleteMessage редактирует ("upd") или удаляет ("del") сообщение.
// Операция доступна только отправителю: чужое сообщение выглядит
// для вызывающего как несуществующее.
func (s *Service) UpdateOrDeleteMessage(ctx context.Context, threadID int64, messageID string, userID int64, content, mode string) (bool, error) {
	participants, err := s.participants(ctx, threadID, userID, "Вы не являетесь участником данного диалога")
	if err != nil {
		return false, err
	}

	exists, err := s.store.SenderMessageExists(ctx, messageID, userID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrMessageNotFound
	}

	var result bool
	switch mode {
	case "upd":
		encrypted, err := s.cipher.Encrypt(content)
		if err != nil {
			return false, err
		}
		result, err = s.store.UpdateContent(ctx, messageID, encrypted)
		if err != nil {
			return false, err
		}
	case "del":
		result, err = s.store.Delete(ctx, messageID)
		if err != nil {
			return false, err
		}
	}

	if s.cache != nil {
		s.cache.InvalidateUnread(ctx, participants...)
	}
	return result, nil
}

// MarkAsRead помечает прочитанными сообщения, адресованные пользователю.
// Массовая операция с best-effort семантикой: чужие идентификаторы
// в списке молча пропускаются.
func (s *Service) MarkAsRead(ctx context.Context, threadID int64, messageIDs []string, userID int64) (bool, error) {
	_, err := s.participants(ctx, threadID, userID, "Вы не являетесь участником данного диалога")
	if err != nil {
		return false, err
	}

	modified, err := s.store.SetRead(ctx, messageIDs, userID)
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		s.cache.InvalidateUnread(ctx, userID)
	}
	return modified > 0, nil
}

// UnreadTotal возвращает суммарное число непрочитанных сообщений пользователя
func (s *Service) UnreadTotal(ctx context.Context, userID int64) (int64, error) {
	if s.cache != nil {
		if total, ok := s.cache.GetUnreadTotal(ctx, userID); ok {
			return total, nil
		}
	}

	total, err := s.store.UnreadTotal(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		s.cache.SetUnreadTotal(ctx, userID, total)
	}
	return total, nil
}

// UserThreads возвращает диалоги пользователя с последним сообщением
// и числом непрочитанных, недавно активные первыми
func (s *Service) UserThreads(ctx context.Context, userID int64) ([]models.ThreadPreview, error) {
	threadIDs, err := s.threads.UserThreads(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(threadIDs) == 0 {
		return []models.ThreadPreview{}, nil
	}

	previews, err := s.store.LatestWithUnread(ctx, userID, threadIDs)
	if err != nil {
		return nil, err
	}

	for i := range previews {
		if previews[i].LastMessage == nil {
			continue
		}
		content, err := s.cipher.Decrypt(previews[i].LastMessage.Content)
		if err != nil {
			return nil, err
		}
		previews[i].LastMessage.Content = content
	}
	return previews, nil
}
