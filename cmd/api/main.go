package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/elearn-api/internal/config"
	"github.com/yourusername/elearn-api/internal/handler"
	"github.com/yourusername/elearn-api/internal/middleware"
	pgRepo "github.com/yourusername/elearn-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/elearn-api/internal/repository/redis"
	"github.com/yourusername/elearn-api/internal/service"
	"github.com/yourusername/elearn-api/internal/service/attempt"
	ws "github.com/yourusername/elearn-api/internal/websocket"
	"github.com/yourusername/elearn-api/pkg/auth"
	"github.com/yourusername/elearn-api/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Loading configuration from %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// appCtx is cancelled on shutdown so attempt timers and background
	// goroutines stop with the server.
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	userRepo := pgRepo.NewUserRepo(db)
	courseRepo := pgRepo.NewCourseRepo(db)
	categoryRepo := pgRepo.NewCategoryRepo(db)
	enrollmentRepo := pgRepo.NewEnrollmentRepo(db)
	progressionRepo := pgRepo.NewProgressionRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	resultRepo := pgRepo.NewResultRepo(db)
	certificateRepo := pgRepo.NewCertificateRepo(db)
	reviewRepo := pgRepo.NewReviewRepo(db)
	planRepo := pgRepo.NewPlanRepo(db)
	subscriptionRepo := pgRepo.NewSubscriptionRepo(db)
	invalidTokenRepo := pgRepo.NewInvalidTokenRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// JWT
	jwtService, err := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.ExpirationHrs,
		cfg.JWT.WSTicketExpirySec,
		cfg.JWT.CleanupInterval,
		invalidTokenRepo,
		appCtx,
	)
	if err != nil {
		log.Printf("Failed to initialize JWT service: %v", err)
		os.Exit(1)
	}

	// Websocket hub and manager
	wsHub := ws.NewHub()
	go wsHub.Run()
	wsManager := ws.NewManager(wsHub)

	// Email. Without an API key the platform runs with email disabled.
	var emailService service.EmailService
	if cfg.Email.ResendAPIKey != "" {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		log.Println("Resend email service enabled")
	} else {
		emailService = &service.NoopEmailService{}
		log.Println("Email disabled, using noop sender")
	}

	// Attempt engine
	attemptService := attempt.NewService(appCtx, attempt.DefaultConfig(), &attempt.Dependencies{
		QuizRepo:   quizRepo,
		ResultRepo: resultRepo,
		CacheRepo:  cacheRepo,
		Notifier:   wsManager,
		Formula:    attempt.FormulaByName(cfg.Quiz.ScoringFormula),
	})

	// Services
	authService := service.NewAuthService(userRepo, jwtService, emailService, cacheRepo)
	userService := service.NewUserService(userRepo)
	courseService := service.NewCourseService(courseRepo, categoryRepo, cacheRepo)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, subscriptionRepo, wsManager)
	progressService := service.NewProgressService(progressionRepo, enrollmentRepo, courseRepo, userRepo)
	certificateService := service.NewCertificateService(certificateRepo, courseRepo, userRepo, emailService, wsManager, cfg.Email.AppName)
	quizService := service.NewQuizService(
		quizRepo, questionRepo, resultRepo, courseRepo, enrollmentRepo, userRepo, cacheRepo,
		attemptService, certificateService,
	)
	subscriptionService := service.NewSubscriptionService(planRepo, subscriptionRepo, nil)
	reviewService := service.NewReviewService(reviewRepo, enrollmentRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	courseHandler := handler.NewCourseHandler(courseService, reviewService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, progressService)
	quizHandler := handler.NewQuizHandler(quizService)
	certificateHandler := handler.NewCertificateHandler(certificateService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	wsHandler := handler.NewWSHandler(wsHub, wsManager, jwtService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(cacheRepo)

	router := gin.Default()

	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	courseID := middleware.ExtractUintParam("courseId", "courseID")
	videoID := middleware.ExtractUintParam("videoId", "videoID")
	quizID := middleware.ExtractUintParam("quizId", "quizID")
	questionID := middleware.ExtractUintParam("questionId", "questionID")
	certificatID := middleware.ExtractUintParam("certificatId", "certificatID")
	userID := middleware.ExtractUintParam("userId", "userID")

	// Public routes
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/verify/:serial", certificateHandler.Verify)
	router.GET("/ws", wsHandler.HandleConnection)
	router.POST("/webhooks/payments", subscriptionHandler.Webhook)

	authGroup := router.Group("/auth")
	authGroup.Use(rateLimiter.LimitByIP(middleware.DefaultAuthRateLimitConfig()))
	{
		authGroup.POST("/register", rateLimiter.LimitByIP(middleware.StrictAuthRateLimitConfig()), authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/forgot-password", rateLimiter.LimitByIP(middleware.StrictAuthRateLimitConfig()), authHandler.ForgotPassword)
		authGroup.POST("/reset-password", rateLimiter.LimitByIP(middleware.StrictAuthRateLimitConfig()), authHandler.ResetPassword)
	}

	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())
	{
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/me", authHandler.Me)
		api.GET("/auth/ws-ticket", authHandler.WSTicket)

		api.PUT("/users/me", userHandler.UpdateProfile)
		api.PUT("/users/me/password", userHandler.ChangePassword)

		// Catalog
		api.GET("/categories", courseHandler.ListCategories)
		api.GET("/courses", courseHandler.ListCourses)
		api.GET("/courses/:courseId", courseID, courseHandler.GetCourse)
		api.GET("/courses/:courseId/reviews", courseID, courseHandler.ListReviews)
		api.GET("/courses/:courseId/quiz", courseID, quizHandler.GetCourseQuiz)

		// Instructor course management
		instructor := api.Group("")
		instructor.Use(authMiddleware.InstructorOnly())
		{
			instructor.POST("/courses", courseHandler.CreateCourse)
			instructor.PUT("/courses/:courseId", courseID, courseHandler.UpdateCourse)
			instructor.POST("/courses/:courseId/publish", courseID, courseHandler.PublishCourse)
			instructor.DELETE("/courses/:courseId", courseID, courseHandler.DeleteCourse)
			instructor.POST("/courses/:courseId/modules", courseID, courseHandler.AddModule)
			instructor.POST("/courses/:courseId/videos", courseID, courseHandler.AddVideo)
			instructor.GET("/courses/:courseId/students", courseID, enrollmentHandler.CourseStudents)
			instructor.GET("/courses/:courseId/results", courseID, quizHandler.GetCourseResults)
			instructor.GET("/courses/:courseId/results/export", courseID, quizHandler.ExportCourseResults)
			instructor.GET("/courses/:courseId/stats", courseID, quizHandler.CourseQuizStats)

			instructor.POST("/courses/:courseId/quiz", courseID, quizHandler.CreateQuiz)
			instructor.PUT("/quizzes/:quizId", quizID, quizHandler.UpdateQuiz)
			instructor.DELETE("/quizzes/:quizId", quizID, quizHandler.DeleteQuiz)
			instructor.GET("/quizzes/:quizId/full", quizID, quizHandler.GetQuizWithAnswers)
			instructor.POST("/quizzes/:quizId/questions", quizID, quizHandler.AddQuestions)
			instructor.PUT("/questions/:questionId", questionID, quizHandler.UpdateQuestion)
			instructor.DELETE("/questions/:questionId", questionID, quizHandler.DeleteQuestion)
		}

		// Enrollment and progress
		api.POST("/enroll/:courseId", courseID, enrollmentHandler.Enroll)
		api.GET("/enroll/check/:courseId", courseID, enrollmentHandler.CheckEnrollment)
		api.DELETE("/enroll/:courseId", courseID, enrollmentHandler.Unenroll)
		api.GET("/enroll/my-courses", enrollmentHandler.MyCourses)
		api.POST("/courses/:courseId/videos/:videoId/watched", courseID, videoID, enrollmentHandler.MarkVideoWatched)
		api.GET("/courses/:courseId/progress", courseID, enrollmentHandler.GetProgress)
		api.GET("/progress", enrollmentHandler.ListProgress)

		// Reviews
		api.POST("/courses/:courseId/reviews", courseID, courseHandler.AddReview)
		api.PUT("/courses/:courseId/reviews", courseID, courseHandler.UpdateReview)
		api.DELETE("/courses/:courseId/reviews", courseID, courseHandler.DeleteReview)

		// Attempt flow
		api.GET("/quiz/:quizId", quizID, quizHandler.StartQuiz)
		api.POST("/quiz/:quizId/answer", quizID, quizHandler.AnswerQuestion)
		api.DELETE("/quiz/:quizId/answer", quizID, quizHandler.ClearAnswer)
		api.GET("/quiz/:quizId/progress", quizID, quizHandler.AttemptProgress)
		api.POST("/passerQuiz/:quizId", quizID,
			rateLimiter.Limit(middleware.SubmissionRateLimitConfig()), quizHandler.SubmitQuiz)
		api.GET("/quizResult/:quizId", quizID, quizHandler.GetQuizResult)
		api.GET("/results/my", quizHandler.MyResults)

		// Certificates
		api.GET("/certificats", certificateHandler.ListMine)
		api.GET("/certificat/course/:courseId", courseID, certificateHandler.GetForCourse)
		api.GET("/certificats/:certificatId/telecharger", certificatID, certificateHandler.Download)

		// Subscriptions
		api.GET("/plans", subscriptionHandler.ListPlans)
		api.POST("/subscriptions", subscriptionHandler.Subscribe)
		api.DELETE("/subscriptions", subscriptionHandler.Cancel)
		api.GET("/subscriptions/my", subscriptionHandler.MySubscription)
		api.GET("/abonnement/status", subscriptionHandler.Status)
		api.GET("/payments/my", subscriptionHandler.MyPayments)

		// Admin
		admin := api.Group("/admin")
		admin.Use(authMiddleware.AdminOnly())
		{
			admin.POST("/categories", courseHandler.CreateCategory)
			admin.POST("/plans", subscriptionHandler.CreatePlan)
			admin.GET("/users", userHandler.ListUsers)
			admin.GET("/users/:userId", userID, userHandler.GetUser)
			admin.PUT("/users/:userId/role", userID, userHandler.SetRole)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop attempt timers and the JWT cleanup routine.
	cancel()
	wsHub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
