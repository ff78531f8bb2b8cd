package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"triviahub/internal/auth"
	"triviahub/internal/models"
	"triviahub/internal/progression"
	"triviahub/internal/quiz"
	"triviahub/internal/user"
	"triviahub/pkg/cache"
	"triviahub/pkg/database"
	"triviahub/pkg/websocket"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize database
	dbConfig := &database.Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
	}

	db, err := database.NewPostgresDB(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Stats{},
		&models.Folder{},
		&models.Trivia{},
		&models.Badge{},
		&models.Category{},
		&models.Difficulty{},
		&models.PersonalBest{},
		&models.LeaderboardEntry{},
		&models.PlayedSession{},
		&models.PlayedCount{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := seedReferenceData(db); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(os.Getenv("REDIS_ADDR"))

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Initialize repositories
	authRepo := auth.NewRepository(db)
	userRepo := user.NewRepository(db)
	progressionRepo := progression.NewRepository(db)

	// Initialize services
	jwtSecret := os.Getenv("JWT_SECRET")
	authService := auth.NewService(authRepo, jwtSecret)
	userService := user.NewService(userRepo)
	progressionService := progression.NewService(progressionRepo, redisCache, wsHub)
	quizClient := quiz.NewClient()

	// Initialize handlers
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	progressionHandler := progression.NewHandler(progressionService)
	quizHandler := quiz.NewHandler(quizClient)

	// Setup router
	router := mux.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	// Auth routes - no JWT required
	router.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Public routes
	router.HandleFunc("/quizzes", quizHandler.GetQuestions).Methods("GET", "OPTIONS")
	router.HandleFunc("/leaderboard", progressionHandler.GetLeaderboard).Methods("GET", "OPTIONS")
	router.HandleFunc("/ws/leaderboard/{category}/{difficulty}", wsHub.HandleWebSocket)

	// Authenticated routes
	api := router.PathPrefix("/").Subrouter()
	api.Use(auth.JWTMiddleware(jwtSecret))

	api.Handle("/leaderboard", http.HandlerFunc(progressionHandler.UpdateLeaderboard)).Methods("POST", "OPTIONS")
	api.Handle("/users", auth.EnsureAdmin(http.HandlerFunc(userHandler.GetUsers))).Methods("GET")
	api.Handle("/users", auth.EnsureAdmin(http.HandlerFunc(authHandler.Register))).Methods("POST")

	// Per-user routes: token must match {username} or carry the admin flag
	users := api.PathPrefix("/users/{username}").Subrouter()
	users.Use(auth.EnsureCorrectUserOrAdmin)

	users.HandleFunc("", userHandler.GetUser).Methods("GET")
	users.HandleFunc("", userHandler.UpdateUser).Methods("PATCH")
	users.HandleFunc("", userHandler.DeleteUser).Methods("DELETE")

	users.HandleFunc("/folders", userHandler.GetFolders).Methods("GET")
	users.HandleFunc("/folders", userHandler.CreateFolder).Methods("POST")
	users.HandleFunc("/folders/{folderId}", userHandler.GetFolderTrivia).Methods("GET")
	users.HandleFunc("/folders/{folderId}", userHandler.RenameFolder).Methods("PATCH")
	users.HandleFunc("/folders/{folderId}", userHandler.DeleteFolder).Methods("DELETE")

	users.HandleFunc("/fav", userHandler.GetAllFav).Methods("GET")
	users.HandleFunc("/fav", userHandler.AddFav).Methods("POST")
	users.HandleFunc("/fav/{triviaId}", userHandler.GetTrivia).Methods("GET")
	users.HandleFunc("/fav/{triviaId}", userHandler.MoveTrivia).Methods("PATCH")
	users.HandleFunc("/fav/{triviaId}", userHandler.DeleteTrivia).Methods("DELETE")

	users.HandleFunc("/badges", userHandler.GetBadges).Methods("GET")
	users.HandleFunc("/badges", userHandler.AwardBadge).Methods("POST")

	users.HandleFunc("/stats", progressionHandler.GetStats).Methods("GET")
	users.HandleFunc("/stats", progressionHandler.UpdateStats).Methods("POST")
	users.HandleFunc("/scores", progressionHandler.GetScores).Methods("GET")
	users.HandleFunc("/scores", progressionHandler.UpdateScore).Methods("POST")
	users.HandleFunc("/sessions", progressionHandler.GetSessions).Methods("GET")
	users.HandleFunc("/sessions", progressionHandler.AddSession).Methods("POST")
	users.HandleFunc("/sessions", progressionHandler.DeleteSession).Methods("DELETE")
	users.HandleFunc("/playedcounts", progressionHandler.GetPlayedCounts).Methods("GET")
	users.HandleFunc("/playedcounts", progressionHandler.UpdatePlayedCount).Methods("POST")
	users.HandleFunc("/complete", progressionHandler.CompleteQuiz).Methods("POST")

	// Setup server with CORS handler
	srv := &http.Server{
		Addr:         ":8080",
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port 8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown setup
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}

// seedReferenceData fills the category and difficulty tables on first
// boot; reruns are no-ops.
func seedReferenceData(db *gorm.DB) error {
	difficulties := []string{"easy", "medium", "hard"}
	for _, name := range difficulties {
		var count int64
		if err := db.Model(&models.Difficulty{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&models.Difficulty{Name: name}).Error; err != nil {
				return err
			}
		}
	}

	categories := []string{
		"General Knowledge",
		"Science & Nature",
		"Mythology",
		"Sports",
		"Geography",
		"History",
		"Art",
		"Animals",
	}
	for _, name := range categories {
		var count int64
		if err := db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&models.Category{Name: name}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
