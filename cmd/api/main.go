package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	"github.com/rajivgeraev/sdelka-api/internal/config"
	"github.com/rajivgeraev/sdelka-api/internal/db"
	"github.com/rajivgeraev/sdelka-api/internal/messages"
	"github.com/rajivgeraev/sdelka-api/internal/middleware"
	"github.com/rajivgeraev/sdelka-api/internal/offers"
	"github.com/rajivgeraev/sdelka-api/internal/utils"
	"github.com/rajivgeraev/sdelka-api/pkg/cache"
	"github.com/rajivgeraev/sdelka-api/pkg/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)

	// Инициализируем базы данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	if err := db.InitMongo(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации MongoDB: %v", err)
	}
	defer db.CloseMongo()

	// Кэш необязателен: без Redis сервис работает, но медленнее
	var unreadCache messages.UnreadCache
	if c, err := cache.New(cfg.RedisURL); err != nil {
		logger.Get().Warn().Err(err).Msg("Redis недоступен, кэширование отключено")
	} else {
		defer c.Close()
		unreadCache = c
	}

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Sdelka API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Настраиваем middleware для аутентификации
	jwtService := utils.NewJWTService(cfg.JWTSecret)
	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Движок заказов
	offerStore := offers.NewPgStore(db.Pool)
	offerService := offers.NewService(offerStore, offers.NewPgDirectory(db.Pool))
	offers.NewAPI(offerService).SetupRoutes(app, authMiddleware)

	// Движок сообщений
	msgCipher, err := messages.NewCipher(cfg.EncodeKey)
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации шифрования сообщений: %v", err)
	}
	messageService := messages.NewService(
		messages.NewPgThreadStore(db.Pool),
		messages.NewMongoMessageStore(db.Messages()),
		msgCipher,
		unreadCache,
	)
	messages.NewAPI(messageService, offerService).SetupRoutes(app, authMiddleware)

	// Запускаем сервер
	log.Println("✅ Sdelka API запущен на порту 8080")
	log.Fatal(app.Listen(":8080"))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
