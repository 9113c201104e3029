package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog zerolog.Logger

// Init инициализирует глобальный структурированный логгер
func Init(env string) {
	var w io.Writer

	if env == "development" || env == "dev" {
		// Читаемый консольный вывод для разработки
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		// JSON для продакшена
		w = os.Stdout
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", "sdelka-api").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// Get возвращает глобальный логгер
func Get() *zerolog.Logger {
	return &zlog
}

// WithUserID возвращает логгер с полем user_id
func WithUserID(userID int64) zerolog.Logger {
	return zlog.With().Int64("user_id", userID).Logger()
}
