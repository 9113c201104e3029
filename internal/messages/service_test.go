package messages

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/sdelka-api/internal/models"
)

// fakeThreadStore хранит диалоги в памяти
type fakeThreadStore struct {
	threads map[int64][]int64 // thread_id -> участники
	byOffer map[int64]int64   // offer_id -> thread_id
	users   map[int64]models.UserShort
	nextID  int64
}

func newFakeThreadStore() *fakeThreadStore {
	return &fakeThreadStore{
		threads: make(map[int64][]int64),
		byOffer: make(map[int64]int64),
		users: map[int64]models.UserShort{
			100: {ID: 100, Name: "Анна", City: "Москва"},
			200: {ID: 200, Name: "Борис", City: "Казань"},
		},
		nextID: 1,
	}
}

func (s *fakeThreadStore) Create(_ context.Context, offerID, fromUser, toUser int64) (int64, error) {
	if _, exists := s.byOffer[offerID]; exists {
		return 0, ErrThreadAlreadyExists
	}
	id := s.nextID
	s.nextID++
	s.threads[id] = []int64{fromUser, toUser}
	s.byOffer[offerID] = id
	return id, nil
}

func (s *fakeThreadStore) Delete(_ context.Context, threadID int64) error {
	delete(s.threads, threadID)
	return nil
}

func (s *fakeThreadStore) Participants(_ context.Context, threadID int64) ([]int64, error) {
	return s.threads[threadID], nil
}

func (s *fakeThreadStore) ParticipantsInfo(_ context.Context, threadID int64) ([]models.UserShort, error) {
	var users []models.UserShort
	for _, id := range s.threads[threadID] {
		users = append(users, s.users[id])
	}
	return users, nil
}

func (s *fakeThreadStore) UserThreads(_ context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for threadID, participants := range s.threads {
		for _, id := range participants {
			if id == userID {
				ids = append(ids, threadID)
			}
		}
	}
	return ids, nil
}

// fakeMessageStore журнал сообщений в памяти
type fakeMessageStore struct {
	messages map[string]*models.ThreadMessage
	nextID   int
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{messages: make(map[string]*models.ThreadMessage), nextID: 1}
}

func (s *fakeMessageStore) Add(_ context.Context, msg *models.ThreadMessage) (string, error) {
	id := "msg-" + strconv.Itoa(s.nextID)
	s.nextID++
	cp := *msg
	s.messages[id] = &cp
	return id, nil
}

func (s *fakeMessageStore) ByThread(_ context.Context, threadID int64, offset, limit int) ([]models.ThreadMessage, error) {
	var msgs []models.ThreadMessage
	for _, msg := range s.messages {
		if msg.ThreadID == threadID {
			msgs = append(msgs, *msg)
		}
	}
	return msgs, nil
}

func (s *fakeMessageStore) Count(_ context.Context, threadID int64) (int64, error) {
	var count int64
	for _, msg := range s.messages {
		if msg.ThreadID == threadID {
			count++
		}
	}
	return count, nil
}

func (s *fakeMessageStore) SenderMessageExists(_ context.Context, messageID string, senderID int64) (bool, error) {
	msg, ok := s.messages[messageID]
	return ok && msg.FromUser.ID == senderID, nil
}

func (s *fakeMessageStore) UpdateContent(_ context.Context, messageID, content string) (bool, error) {
	msg, ok := s.messages[messageID]
	if !ok {
		return false, nil
	}
	msg.Content = content
	msg.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *fakeMessageStore) Delete(_ context.Context, messageID string) (bool, error) {
	if _, ok := s.messages[messageID]; !ok {
		return false, nil
	}
	delete(s.messages, messageID)
	return true, nil
}

func (s *fakeMessageStore) SetRead(_ context.Context, messageIDs []string, receiverID int64) (int64, error) {
	var modified int64
	for _, id := range messageIDs {
		msg, ok := s.messages[id]
		if !ok || msg.ToUser.ID != receiverID || msg.Read {
			continue
		}
		msg.Read = true
		modified++
	}
	return modified, nil
}

func (s *fakeMessageStore) UnreadTotal(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, msg := range s.messages {
		if msg.ToUser.ID == userID && !msg.Read {
			count++
		}
	}
	return count, nil
}

func (s *fakeMessageStore) LatestWithUnread(_ context.Context, userID int64, threadIDs []int64) ([]models.ThreadPreview, error) {
	var previews []models.ThreadPreview
	for _, threadID := range threadIDs {
		preview := models.ThreadPreview{ThreadID: threadID}
		for _, msg := range s.messages {
			if msg.ThreadID != threadID {
				continue
			}
			cp := *msg
			if preview.LastMessage == nil || cp.CreatedAt.After(preview.LastMessage.CreatedAt) {
				preview.LastMessage = &cp
			}
			if msg.ToUser.ID == userID && !msg.Read {
				preview.UnreadCount++
			}
		}
		previews = append(previews, preview)
	}
	return previews, nil
}

func (s *fakeMessageStore) DeleteThread(_ context.Context, threadID int64) (int64, error) {
	var deleted int64
	for id, msg := range s.messages {
		if msg.ThreadID == threadID {
			delete(s.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeOffers сторона заказов для создания диалогов
type fakeOffers struct {
	participants map[int64][]int64
}

func (f *fakeOffers) Participants(_ context.Context, offerID, userID int64) ([]int64, error) {
	return f.participants[offerID], nil
}

// fakeCache учитывает обращения к кэшу непрочитанных
type fakeCache struct {
	values      map[int64]int64
	invalidated []int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[int64]int64)}
}

func (c *fakeCache) GetUnreadTotal(_ context.Context, userID int64) (int64, bool) {
	val, ok := c.values[userID]
	return val, ok
}

func (c *fakeCache) SetUnreadTotal(_ context.Context, userID int64, total int64) {
	c.values[userID] = total
}

func (c *fakeCache) InvalidateUnread(_ context.Context, userIDs ...int64) {
	for _, id := range userIDs {
		delete(c.values, id)
		c.invalidated = append(c.invalidated, id)
	}
}

func newTestService(t *testing.T, cache UnreadCache) (*Service, *fakeThreadStore, *fakeMessageStore) {
	t.Helper()
	cipher, err := NewCipher(testKey(t))
	require.NoError(t, err)

	threads := newFakeThreadStore()
	store := newFakeMessageStore()
	return NewService(threads, store, cipher, cache), threads, store
}

func TestCreateThread(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	offers := &fakeOffers{participants: map[int64][]int64{1: {100, 200}}}

	threadID, err := svc.CreateThread(context.Background(), 100, 1, offers)
	require.NoError(t, err)
	assert.NotZero(t, threadID)

	// повторное создание по тому же заказу
	_, err = svc.CreateThread(context.Background(), 200, 1, offers)
	assert.ErrorIs(t, err, ErrThreadAlreadyExists)
}

func TestSendAndGetMessages(t *testing.T) {
	svc, threads, store := newTestService(t, nil)
	ctx := context.Background()

	threadID, err := threads.Create(ctx, 1, 100, 200)
	require.NoError(t, err)

	messageID, err := svc.SendMessage(ctx, threadID, 100, "Привет! Ещё актуально?")
	require.NoError(t, err)

	// в хранилище лежит шифротекст
	assert.NotEqual(t, "Привет! Ещё актуально?", store.messages[messageID].Content)
	assert.False(t, store.messages[messageID].Read)

	msgs, meta, err := svc.GetMessages(ctx, threadID, 100, 0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Привет! Ещё актуально?", msgs[0].Content)
	assert.Equal(t, int64(1), meta.TotalMessages)

	// отправитель помечен is_me только для своей стороны
	assert.True(t, msgs[0].FromUser.IsMe)
	assert.False(t, msgs[0].ToUser.IsMe)

	msgs, _, err = svc.GetMessages(ctx, threadID, 200, 0, 10)
	require.NoError(t, err)
	assert.False(t, msgs[0].FromUser.IsMe)
	assert.True(t, msgs[0].ToUser.IsMe)
}

func TestSendMessage_NotParticipant(t *testing.T) {
	svc, threads, _ := newTestService(t, nil)
	ctx := context.Background()

	threadID, err := threads.Create(ctx, 1, 100, 200)
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, threadID, 300, "текст")
	var threadErr *ThreadError
	assert.ErrorAs(t, err, &threadErr)

	_, err = svc.SendMessage(ctx, 999, 100, "текст")
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestGetMessages_NotParticipant(t *testing.T) {
	svc, threads, _ := newTestService(t, nil)
	ctx := context.Background()

	threadID, err := threads.Create(ctx, 1, 100, 200)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, threadID, 100, "приватный текст")
	require.NoError(t, err)

	// посторонний не читает чужую переписку
	_, _, err = svc.GetMessages(ctx, threadID, 300, 0, 10)
	var threadErr *ThreadError
	assert.ErrorAs(t, err, &threadErr)

	_, _, err = svc.GetMessages(ctx, 999, 100, 0, 10)
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestMarkAsRead_NotParticipant(t *testing.T) {
	svc, threads, store := newTestService(t, nil)
	ctx := context.Background()

	threadID, err := threads.Create(ctx, 1, 100, 200)
	require.NoError(t, err)
	messageID, err := svc.SendMessage(ctx, threadID, 100, "текст")
	require.NoError(t, err)

	_, err = svc.MarkAsRead(ctx, threadID, []string{messageID}, 300)
	var threadErr *ThreadError
	assert.ErrorAs(t, err, &threadErr)
	assert.False(t, store.messages[messageID].Read)

	_, err = svc.MarkAsRead(ctx, 999, []string{messageID}, 200)
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestGetMessages_EmptyThread(t *testing.T) {
	svc, threads, _ := newTestService(t, nil)
	ctx := context.Background()

	threadID, err := threads.Create(ctx, 1, 100, 200)
	require.NoError(t, err)

	// пустой диалог отдаёт пустой список, а не null
	msgs, meta, err := svc.GetMessages(ctx, threadID, 100, 0, 10)
	require.NoError(t, err)
	require.NotNil(t, msgs)
	assert.Empty(t, msgs)
	assert.Zero(t, meta.TotalMessages)
}

func TestUpdateMessage_OnlySender(t *testing.T) {
	svc, threads, store := newTestService(t, nil)
	ctx := context.Background()

	threadID, err := threads.Create(ctx, 1, 100, 200)
	require.NoError(t, err)
	messageID, err := svc.SendMessage(ctx, threadID, 100, "исходный текст")
	require.NoError(t, err)

	// получатель не может редактировать чужое сообщение
	_, err = svc.UpdateOrDeleteMessage(ctx, threadID, messageID, 200, "подмена", "upd")
	assert.ErrorIs(t, err, ErrMessageNotFound)

	success, err := svc.UpdateOrDeleteMessage(ctx, threadID, messageID, 100, "новый текст", "upd")
	require.NoError(t, err)
	assert.True(t, success)

	msgs, _, err := svc.GetMessages(ctx, threadID, 100, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "новый текст", msgs[0].Content)

	success, err = svc.UpdateOrDeleteMessage(ctx, threadID, messageID, 100, "", "del")
	require.NoError(t, err)
	assert.True(t, success)
	assert.Empty(t, store.messages)
}

func TestMarkAsRead(t *testing.T) {
	svc, threads, _ := newTestService(t, nil)
	ctx := context.Background()

	threadID, err := threads.Create(ctx, 1, 100, 200)
	require.NoError(t, err)

	first, err := svc.SendMessage(ctx, threadID, 100, "первое")
	require.NoError(t, err)
	second, err := svc.SendMessage(ctx, threadID, 100, "второе")
	require.NoError(t, err)

	// чужие и несуществующие идентификаторы молча пропускаются
	success, err := svc.MarkAsRead(ctx, threadID, []string{first, second, "нет такого"}, 200)
	require.NoError(t, err)
	assert.True(t, success)

	total, err := svc.UnreadTotal(ctx, 200)
	require.NoError(t, err)
	assert.Zero(t, total)

	// повторная отметка ничего не меняет
	success, err = svc.MarkAsRead(ctx, threadID, []string{first}, 200)
	require.NoError(t, err)
	assert.False(t, success)
}

func TestUnreadTotal_Cache(t *testing.T) {
	cache := newFakeCache()
	svc, threads, _ := newTestService(t, cache)
	ctx := context.Background()

	threadID, err := threads.Create(ctx, 1, 100, 200)
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, threadID, 100, "непрочитанное")
	require.NoError(t, err)

	// первый запрос считает по хранилищу и наполняет кэш
	total, err := svc.UnreadTotal(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), cache.values[200])

	// новое сообщение сбрасывает счётчик получателя
	_, err = svc.SendMessage(ctx, threadID, 100, "ещё одно")
	require.NoError(t, err)
	assert.NotContains(t, cache.values, int64(200))
	assert.Contains(t, cache.invalidated, int64(200))
}

func TestDeleteThread(t *testing.T) {
	svc, threads, store := newTestService(t, nil)
	ctx := context.Background()

	threadID, err := threads.Create(ctx, 1, 100, 200)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, threadID, 100, "будет удалено")
	require.NoError(t, err)

	// посторонний не может удалить диалог
	err = svc.DeleteThread(ctx, threadID, 300)
	var threadErr *ThreadError
	assert.ErrorAs(t, err, &threadErr)

	err = svc.DeleteThread(ctx, threadID, 100)
	require.NoError(t, err)
	assert.Empty(t, threads.threads)
	assert.Empty(t, store.messages)

	err = svc.DeleteThread(ctx, threadID, 100)
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestUserThreads(t *testing.T) {
	svc, threads, _ := newTestService(t, nil)
	ctx := context.Background()

	threadID, err := threads.Create(ctx, 1, 100, 200)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, threadID, 100, "последнее сообщение")
	require.NoError(t, err)

	previews, err := svc.UserThreads(ctx, 200)
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, threadID, previews[0].ThreadID)
	assert.Equal(t, int64(1), previews[0].UnreadCount)
	require.NotNil(t, previews[0].LastMessage)
	assert.Equal(t, "последнее сообщение", previews[0].LastMessage.Content)

	// пользователь без диалогов получает пустой список
	previews, err = svc.UserThreads(ctx, 300)
	require.NoError(t, err)
	assert.Empty(t, previews)
}
