package main

import (
	"context"
	"os"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "edumanage/api/swagger" // swagger docs
	"edumanage/internal/ai"
	"edumanage/internal/auth"
	"edumanage/internal/database"
	"edumanage/internal/handler"
	"edumanage/internal/logger"
	"edumanage/internal/mailer"
	"edumanage/internal/middleware"
	"edumanage/internal/repository"
	"edumanage/internal/service"
	"edumanage/internal/websocket"
)

// @title           Course Management API
// @version         1.0
// @description     University course management: roles, permissions, courses, enrollments and assignments.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Optional: environment variables may be set directly
	_ = godotenv.Load("configs/.env")

	log := logger.New(getenv("LOG_LEVEL", "info"), os.Getenv("LOG_PRETTY") == "true")

	secret := os.Getenv("JWT_SECRET")
	authenticator, err := auth.NewAuthenticator([]byte(secret))
	if err != nil {
		log.Fatal().Err(err).Msg("JWT_SECRET must be set")
	}

	dsn := "postgres://" + getenv("DB_USER", "postgres") + ":" + getenv("DB_PASSWORD", "postgres") +
		"@" + getenv("DB_HOST", "localhost") + ":" + getenv("DB_PORT", "5432") +
		"/" + getenv("DB_NAME", "postgres") + "?sslmode=" + getenv("DB_SSLMODE", "disable")

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("connected to PostgreSQL")

	smtpPort, _ := strconv.Atoi(getenv("SMTP_PORT", "587"))
	notifier := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:      os.Getenv("SMTP_HOST"),
		Port:      smtpPort,
		Username:  os.Getenv("SMTP_USERNAME"),
		Password:  os.Getenv("SMTP_PASSWORD"),
		FromName:  getenv("SMTP_FROM_NAME", "Course Management"),
		FromEmail: os.Getenv("SMTP_FROM_EMAIL"),
	}, log)

	var generator ai.TextGenerator
	if key := os.Getenv("AI_API_KEY"); key != "" {
		generator = ai.NewClient(ai.Config{
			BaseURL: os.Getenv("AI_BASE_URL"),
			APIKey:  key,
			Model:   os.Getenv("AI_MODEL"),
		})
	}

	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)

	auditService := service.NewAuditService(auditRepo, log)
	roleService := service.NewRoleService(roleRepo, txManager, auditService)
	userService := service.NewUserService(userRepo, roleRepo, authenticator, auditService, notifier, log)
	courseService := service.NewCourseService(courseRepo, userRepo, auditService, generator)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, userRepo, auditService, notifier, wsHub, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, userRepo, auditService)
	statisticsService := service.NewStatisticsService(statisticsRepo)

	if err := roleService.SeedDefaults(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("seeding default roles failed")
	}

	roleHandler := handler.NewRoleHandler(roleService)
	userHandler := handler.NewUserHandler(userService)
	courseHandler := handler.NewCourseHandler(courseService, os.Getenv("UPLOAD_DIR"))
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, authenticator)
	})

	public := router.Group("")
	userHandler.RegisterPublicRoutes(public)

	private := router.Group("")
	private.Use(middleware.Authenticate(authenticator))
	userHandler.RegisterRoutes(private)
	roleHandler.RegisterRoutes(private)
	courseHandler.RegisterRoutes(private)
	enrollmentHandler.RegisterRoutes(private)
	assignmentHandler.RegisterRoutes(private)
	auditHandler.RegisterRoutes(private)
	statisticsHandler.RegisterRoutes(private)

	port := getenv("PORT", "8080")
	log.Info().Str("port", port).Msg("server listening")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
