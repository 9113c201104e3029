package messages

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rajivgeraev/sdelka-api/internal/models"
)

// MessageStore журнал сообщений диалогов в документном хранилище
type MessageStore interface {
	Add(ctx context.Context, msg *models.ThreadMessage) (string, error)
	ByThread(ctx context.Context, threadID int64, offset, limit int) ([]models.ThreadMessage, error)
	Count(ctx context.Context, threadID int64) (int64, error)
	SenderMessageExists(ctx context.Context, messageID string, senderID int64) (bool, error)
	UpdateContent(ctx context.Context, messageID, content string) (bool, error)
	Delete(ctx context.Context, messageID string) (bool, error)
	SetRead(ctx context.Context, messageIDs []string, receiverID int64) (int64, error)
	UnreadTotal(ctx context.Context, userID int64) (int64, error)
	LatestWithUnread(ctx context.Context, userID int64, threadIDs []int64) ([]models.ThreadPreview, error)
	DeleteThread(ctx context.Context, threadID int64) (int64, error)
}

// MongoMessageStore реализация MessageStore поверх MongoDB
type MongoMessageStore struct {
	col *mongo.Collection
}

// NewMongoMessageStore создаёт новый экземпляр MongoMessageStore
func NewMongoMessageStore(col *mongo.Collection) *MongoMessageStore {
	return &MongoMessageStore{col: col}
}

// Add сохраняет новое сообщение и возвращает его идентификатор
func (s *MongoMessageStore) Add(ctx context.Context, msg *models.ThreadMessage) (string, error) {
	result, err := s.col.InsertOne(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("ошибка сохранения сообщения: %w", err)
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("неожиданный тип идентификатора сообщения: %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// ByThread возвращает страницу сообщений диалога, новые первыми
func (s *MongoMessageStore) ByThread(ctx context.Context, threadID int64, offset, limit int) ([]models.ThreadMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, bson.M{"thread_id": threadID}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса сообщений: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.ThreadMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("ошибка чтения сообщений: %w", err)
	}
	return messages, nil
}

// Count возвращает общее количество сообщений в диалоге
func (s *MongoMessageStore) Count(ctx context.Context, threadID int64) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{"thread_id": threadID})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта сообщений: %w", err)
	}
	return count, nil
}

// SenderMessageExists проверяет существование сообщения у данного отправителя.
// Чужое сообщение для вызывающего неотличимо от несуществующего.
func (s *MongoMessageStore) SenderMessageExists(ctx context.Context, messageID string, senderID int64) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return false, nil
	}
	count, err := s.col.CountDocuments(ctx, bson.M{
		"_id":          oid,
		"from_user.id": senderID,
	})
	if err != nil {
		return false, fmt.Errorf("ошибка поиска сообщения: %w", err)
	}
	return count > 0, nil
}

// UpdateContent заменяет содержимое сообщения и обновляет updated_at
func (s *MongoMessageStore) UpdateContent(ctx context.Context, messageID, content string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return false, nil
	}
	result, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"content":    content,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("ошибка обновления сообщения: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

// Delete удаляет сообщение
func (s *MongoMessageStore) Delete(ctx context.Context, messageID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return false, nil
	}
	result, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("ошибка удаления сообщения: %w", err)
	}
	return result.DeletedCount == 1, nil
}

// SetRead помечает прочитанными сообщения, адресованные получателю.
// Сообщения других получателей из списка молча пропускаются.
func (s *MongoMessageStore) SetRead(ctx context.Context, messageIDs []string, receiverID int64) (int64, error) {
	oids := make([]primitive.ObjectID, 0, len(messageIDs))
	for _, id := range messageIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return 0, nil
	}

	result, err := s.col.UpdateMany(ctx, bson.M{
		"_id":        bson.M{"$in": oids},
		"to_user.id": receiverID,
	}, bson.M{
		"$set": bson.M{"read": true},
	})
	if err != nil {
		return 0, fmt.Errorf("ошибка отметки о прочтении: %w", err)
	}
	return result.ModifiedCount, nil
}

// UnreadTotal возвращает число непрочитанных сообщений пользователя по всем диалогам
func (s *MongoMessageStore) UnreadTotal(ctx context.Context, userID int64) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{
		"to_user.id": userID,
		"read":       false,
	})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта непрочитанных сообщений: %w", err)
	}
	return count, nil
}

// LatestWithUnread возвращает последнее сообщение и число непрочитанных
// для каждого диалога, отсортированные по времени последнего сообщения
func (s *MongoMessageStore) LatestWithUnread(ctx context.Context, userID int64, threadIDs []int64) ([]models.ThreadPreview, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"thread_id": bson.M{"$in": threadIDs}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$thread_id",
			"last_message": bson.M{"$first": "$$ROOT"},
			"unread_count": bson.M{
				"$sum": bson.M{
					"$cond": bson.A{
						bson.M{"$and": bson.A{
							bson.M{"$eq": bson.A{"$read", false}},
							bson.M{"$eq": bson.A{"$to_user.id", userID}},
						}},
						1, 0,
					},
				},
			},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"thread_id":    "$_id",
			"unread_count": 1,
			"last_message": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_message.created_at", Value: -1}}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("ошибка агрегации диалогов: %w", err)
	}
	defer cursor.Close(ctx)

	var previews []models.ThreadPreview
	if err := cursor.All(ctx, &previews); err != nil {
		return nil, fmt.Errorf("ошибка чтения диалогов: %w", err)
	}
	return previews, nil
}

// DeleteThread удаляет все сообщения диалога, возвращает число удалённых
func (s *MongoMessageStore) DeleteThread(ctx context.Context, threadID int64) (int64, error) {
	result, err := s.col.DeleteMany(ctx, bson.M{"thread_id": threadID})
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления сообщений диалога: %w", err)
	}
	return result.DeletedCount, nil
}
