package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/petzone/backend/internal/config"
	"github.com/petzone/backend/internal/database"
	"github.com/petzone/backend/internal/handlers"
	"github.com/petzone/backend/internal/middleware"
	"github.com/petzone/backend/internal/storage"
)

type Server struct {
	cfg     *config.Properties
	db      database.Service
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	cfg, err := config.ReadProperties()
	if err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	blobs, err := storage.NewMinioStore(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}

	handler := handlers.NewHandler(db.GetDB(), blobs, cfg)

	newServer := &Server{
		cfg:     cfg,
		db:      db,
		handler: handler,
	}

	router := newServer.RegisterRoutes()

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", cfg.Port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	secret := []byte(s.cfg.JWTSecret)

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/signup", s.handler.Auth.Register)
		api.POST("/auth/login", s.handler.Auth.Login)

		// Community feed is public; identity is optional
		api.GET("/community/feed", middleware.AuthOptional(secret), s.handler.Community.GetFeed)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(secret))
		{
			// Auth protected routes
			protected.GET("/auth/me", s.handler.Auth.GetMe)
			protected.PUT("/auth/profile", s.handler.Auth.UpdateProfile)
			protected.PUT("/auth/password", s.handler.Auth.ChangePassword)
			protected.POST("/auth/profile/photo", s.handler.Auth.UploadProfilePhoto)

			// Pet routes
			protected.GET("/pets", s.handler.Pet.GetMyPets)
			protected.GET("/pets/:id", s.handler.Pet.GetPet)
			protected.POST("/pets", s.handler.Pet.AddPet)
			protected.PUT("/pets/:id", s.handler.Pet.UpdatePet)
			protected.POST("/pets/:id/photo", s.handler.Pet.UploadPetPhoto)
			protected.DELETE("/pets/:id", s.handler.Pet.DeletePet)
			protected.GET("/pets/:id/stats", s.handler.Pet.GetPetStats)

			// Care log routes
			protected.GET("/care-logs/pet/:petId", s.handler.CareLog.GetPetCareLogs)
			protected.POST("/care-logs", s.handler.CareLog.AddCareLog)
			protected.PUT("/care-logs/:id", s.handler.CareLog.UpdateCareLog)
			protected.DELETE("/care-logs/:id", s.handler.CareLog.DeleteCareLog)
			protected.GET("/care-logs/reminders", s.handler.CareLog.GetUpcomingReminders)
			protected.GET("/care-logs/stats/:petId", s.handler.CareLog.GetCareStats)

			// Memory routes
			protected.GET("/memories/all", s.handler.Memory.GetAllMemories)
			protected.GET("/memories/pet/:petId", s.handler.Memory.GetPetMemories)
			protected.POST("/memories", s.handler.Memory.AddMemory)
			protected.PUT("/memories/:id", s.handler.Memory.UpdateMemory)
			protected.DELETE("/memories/:id", s.handler.Memory.DeleteMemory)

			// Community protected routes
			protected.POST("/community/posts", s.handler.Community.CreatePost)
			protected.POST("/community/posts/:postId/like", s.handler.Community.ToggleLike)
			protected.POST("/community/posts/:postId/report", s.handler.Community.ReportPost)
			protected.GET("/community/my-posts", s.handler.Community.GetMyPosts)
			protected.DELETE("/community/posts/:postId", s.handler.Community.DeletePost)
		}
	}

	return r
}
