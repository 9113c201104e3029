package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config структура конфигурации
type Config struct {
	JWTSecret      string
	EncodeKey      string // ключ симметричного шифрования сообщений (base64, 32 байта)
	DatabaseURL    string
	DatabaseConfig DatabaseConfig
	MongoURL       string
	MongoDatabase  string
	RedisURL       string
	AppEnv         string
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// LoadConfig загружает переменные из .env
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "sdelka_user"),
		Password: getEnv("PGPASSWORD", "sdelka_pass"),
		Name:     getEnv("PGDATABASE", "sdelka"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	// Формируем строку подключения к базе данных
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	cfg := &Config{
		JWTSecret:      getEnv("JWT_SECRET", ""),
		EncodeKey:      getEnv("ENCODE_KEY", ""),
		DatabaseURL:    dbURL,
		DatabaseConfig: dbConfig,
		MongoURL:       getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "sdelka"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AppEnv:         getEnv("APP_ENV", "production"),
	}

	if cfg.JWTSecret == "" || cfg.EncodeKey == "" {
		log.Fatal("❌ Ошибка: Не заданы обязательные переменные окружения JWT_SECRET и ENCODE_KEY")
	}

	return cfg
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
