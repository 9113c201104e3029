package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rajivgeraev/sdelka-api/internal/config"
)

// MongoClient клиент документного хранилища сообщений
var MongoClient *mongo.Client

// MongoDB база данных сообщений
var MongoDB *mongo.Database

// InitMongo инициализирует соединение с MongoDB
func InitMongo(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		return fmt.Errorf("ошибка при подключении к MongoDB: %w", err)
	}

	// Проверяем соединение
	if err = client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ошибка при проверке соединения с MongoDB: %w", err)
	}

	MongoClient = client
	MongoDB = client.Database(cfg.MongoDatabase)

	log.Println("✅ Успешное подключение к MongoDB")
	return nil
}

// CloseMongo закрывает соединение с MongoDB
func CloseMongo() {
	if MongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = MongoClient.Disconnect(ctx)
	}
}

// Messages возвращает коллекцию сообщений
func Messages() *mongo.Collection {
	return MongoDB.Collection("messages")
}
