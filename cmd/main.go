package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"resumevault/internal/auth"
	"resumevault/internal/config"
	"resumevault/internal/feedback"
	"resumevault/internal/handler"
	"resumevault/internal/repository"
	"resumevault/internal/repository/gateway"
	"resumevault/internal/service"
	"resumevault/internal/service/s3"
	"resumevault/internal/voice"
)

func connectWithRetry(cfg *config.Config, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	dsn := cfg.Database.GetDSN()

	// Сначала подключаемся к системной базе postgres, которая всегда существует
	pgDSN := strings.Replace(dsn, "dbname="+cfg.Database.Name, "dbname=postgres", 1)
	pgDB, err := sqlx.Connect("postgres", pgDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres database: %v", err)
	}
	defer pgDB.Close()

	// Проверяем, существует ли целевая база
	var exists bool
	err = pgDB.Get(&exists, "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1)", cfg.Database.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	// Если базы нет, создаем её
	if !exists {
		log.Printf("Database %s does not exist, creating...", cfg.Database.Name)
		_, err = pgDB.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.Database.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	// Теперь пытаемся подключиться к целевой базе
	var db *sqlx.DB
	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxAttempts, err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %v", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	var m *migrate.Migrate
	var err error

	for i := 0; i < 5; i++ {
		m, err = migrate.New("file://migrations", databaseURL)
		if err == nil {
			break
		}
		log.Printf("Failed to create migrate instance (attempt %d/5): %v", i+1, err)
		time.Sleep(time.Second * 5)
	}

	if err != nil {
		return fmt.Errorf("failed to create migrate instance after retries: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Printf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func main() {
	// Загружаем конфигурации
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Выбираем путь доступа к метаданным
	var store repository.Store
	switch appConfig.Repository.Mode {
	case "gateway":
		log.Printf("Using GraphQL gateway at %s", appConfig.Repository.GatewayURL)
		gatewayClient := gateway.NewClient(appConfig.Repository.GatewayURL, appConfig.Repository.GatewaySecret)
		store = gateway.NewResumeGateway(gatewayClient)

	default:
		db, err := connectWithRetry(appConfig, 5, time.Second*5)
		if err != nil {
			log.Fatalf("Failed to connect to database after retries: %v", err)
		}
		defer db.Close()

		if err := runMigrations(appConfig); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}

		store = repository.NewResumeRepository(db)
	}

	// Инициализация S3 клиента
	s3Config, err := s3.NewConfig(".s3.env")
	if err != nil {
		log.Fatalf("Failed to load S3 config: %v", err)
	}

	s3Client, err := s3.NewClient(s3Config)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	// Подключение к сервису аутентификации
	authConfig, err := auth.NewConfig(".auth.env")
	if err != nil {
		log.Fatalf("Failed to load auth config: %v", err)
	}

	auth.InitClient(auth.NewClient(authConfig.AuthAddr))

	// Конфигурация AI-компонентов
	aiConfig, err := config.NewAIConfig(".ai.env")
	if err != nil {
		log.Fatalf("Failed to load AI config: %v", err)
	}

	feedbackService, err := feedback.NewService(aiConfig.APIKey, aiConfig.FeedbackModel)
	if err != nil {
		log.Fatalf("Failed to create feedback service: %v", err)
	}

	voiceManager, err := voice.NewManager(context.Background(), aiConfig.APIKey, aiConfig.LiveModel, aiConfig.VoiceName)
	if err != nil {
		log.Fatalf("Failed to create voice manager: %v", err)
	}

	// Инициализация сервисов
	resumeService := service.NewResumeService(store, s3Client)
	userService := service.NewUserService(store)

	// Инициализация хендлеров
	resumeHandler := handler.NewResumeHandler(resumeService)
	fileHandler := handler.NewFileHandler(resumeService)
	userHandler := handler.NewUserHandler(userService)
	interviewHandler := handler.NewInterviewHandler(resumeService, feedbackService, voiceManager)

	// Настройка HTTP роутера
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// HTTP маршруты
	r.Route("/v1", func(r chi.Router) {
		r.Route("/resumes", func(r chi.Router) {
			r.Get("/", resumeHandler.ListResumes)
			r.Post("/", resumeHandler.CreateResume)
			r.Post("/upload", resumeHandler.UploadResume)
			r.Post("/upload/complete", resumeHandler.CompleteUpload)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", resumeHandler.GetResume)
				r.Delete("/", resumeHandler.DeleteResume)
				r.Put("/file", resumeHandler.ReplaceFile)
				r.Get("/history", resumeHandler.GetHistory)
				r.Get("/download", resumeHandler.DownloadResume)
				r.Post("/feedback", interviewHandler.RunFeedback)
				r.Post("/interview", interviewHandler.StartInterview)
			})
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/presigned-url", fileHandler.PresignedURL)
			r.Post("/upload-url", fileHandler.UploadURL)
		})

		r.Post("/user/sync", userHandler.SyncUser)
	})

	// Создаем HTTP сервер
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}

	// Канал для сигналов завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Запускаем HTTP сервер
	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
