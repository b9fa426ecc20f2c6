package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"grievgo/backend/internal/account"
	"grievgo/backend/internal/ai"
	"grievgo/backend/internal/api/handler"
	"grievgo/backend/internal/lifecycle"
	"grievgo/backend/internal/localization"
	"grievgo/backend/internal/models"
	"grievgo/backend/internal/notify"
	"grievgo/backend/internal/storage"
	"grievgo/backend/internal/voicehub"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupDependencies() (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL (Використовуємо дані з docker-compose)
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "user"),
		envOr("DB_PASSWORD", "password"),
		envOr("DB_NAME", "grievgodb"),
		envOr("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: "",
		DB:       0,
	})

	// Перевірка з'єднання Redis
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Міграції (Створення таблиць)
	err = db.AutoMigrate(
		&models.User{},
		&models.Grievance{},
		&models.HistoryEntry{},
		&models.GrievanceDocument{},
	)
	if err != nil {
		// Якщо міграція не спрацювала, зупиняємо додаток
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting GrievGo Backend...")

	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	// 1. Ініціалізація залежностей
	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)
	if err := s.SyncGrievanceSeq(); err != nil {
		log.Fatalf("Failed to sync grievance sequence: %v", err)
	}

	localizer, err := localization.NewLocalizer(envOr("LOCALES_DIR", "locales"))
	if err != nil {
		log.Fatalf("Failed to load locales: %v", err)
	}

	// 2. Зовнішня модель (опційна: без ключа сервіс деградує коректно)
	var completer ai.Completer
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		completer = ai.NewOpenAIClient(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY not set, assistant features disabled")
	}
	assistant := ai.NewService(completer)

	// 3. Доменні сервіси
	accounts := account.NewService(s)
	lc := lifecycle.NewService(s, assistant)

	// 4. Voice Hub
	hub := voicehub.NewManagerService(assistant, lc)
	go hub.Run() // Головний диспетчер

	// 5. Telegram-сповіщення департаментів (опційно)
	if botToken := os.Getenv("TELEGRAM_BOT_TOKEN"); botToken != "" {
		deptChats := notify.ParseDeptChats(os.Getenv("DEPT_CHAT_IDS"))
		notifier, err := notify.NewService(botToken, s, localizer, deptChats)
		if err != nil {
			log.Fatalf("Не вдалося запустити Telegram-бота: %v", err)
		}
		go notifier.Run()
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, department notifications disabled")
	}

	// 6. Налаштування Gin та роутингу
	r := gin.Default()
	h := handler.NewHandler(accounts, lc, s, assistant, hub, localizer, envOr("JWT_SECRET", "YOUR_ULTRA_SECRET_KEY_HERE"))

	// Роути
	r.POST("/auth/register", h.RegisterCitizen)
	r.POST("/auth/login", h.LoginCitizen)
	r.POST("/auth/admin/login", h.LoginAdmin)

	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.UpdateProfile)
	r.PUT("/profile/password", h.ChangePassword)

	r.GET("/departments", h.ListDepartments)

	r.POST("/grievances", h.FileGrievance)
	r.GET("/grievances", h.ListMyGrievances)
	r.GET("/grievances/:id", h.GetGrievance)
	r.GET("/grievances/:id/documents/:name", h.DownloadDocument)
	r.POST("/grievances/:id/ask", h.AskAboutGrievance)

	r.GET("/admin/grievances", h.ListDepartmentGrievances)
	r.POST("/admin/grievances/:id/transition", h.TransitionGrievance)
	r.POST("/admin/grievances/:id/solution", h.GenerateSolution)

	r.GET("/ws/voice", h.ServeVoiceWebSocket) // WebSocket Upgrade

	// Запуск HTTP-сервера
	server := &http.Server{
		Addr:           ":" + envOr("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
