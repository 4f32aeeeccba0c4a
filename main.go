package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/config"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/handler"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/middleware"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/repository"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/services"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/usecase"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupRouter(cfg *config.Config, userService *usecase.UserService,
	notesService *usecase.NotesService, tokens *services.TokenService,
	blacklist *services.TokenBlacklist, uploads *services.UploadStore) *gin.Engine {

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	router.Static("/uploads", uploads.Dir())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "notes API"})
	})

	public := router.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", func(c *gin.Context) {
				handler.RegistrationHandler(c, userService)
			})
			auth.POST("/login", func(c *gin.Context) {
				handler.LoginHandler(c, userService)
			})
		}
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(tokens, blacklist))
	{
		protected.POST("/auth/logout", func(c *gin.Context) {
			handler.LogoutHandler(c, tokens, blacklist)
		})

		notes := protected.Group("/notes")
		{
			notes.POST("", func(c *gin.Context) {
				handler.CreateNoteHandler(c, notesService, uploads)
			})
			notes.GET("", func(c *gin.Context) {
				handler.ListNotesHandler(c, notesService)
			})
			notes.GET("/:id", func(c *gin.Context) {
				handler.GetNoteHandler(c, notesService)
			})
			notes.PUT("/:id", func(c *gin.Context) {
				handler.UpdateNoteHandler(c, notesService, uploads)
			})
			notes.DELETE("/:id", func(c *gin.Context) {
				handler.DeleteNoteHandler(c, notesService)
			})
		}
	}

	return router
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load .env file: %v", err)
	}

	utils.InitValidator()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	mongoClient, err := config.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	log.Println("connected to MongoDB")

	if err := repository.SetupIndexes(ctx, mongoClient.Database(cfg.MongoDB)); err != nil {
		log.Fatalf("failed to create indexes: %v", err)
	}

	var blacklist *services.TokenBlacklist
	if cfg.RedisURL != "" {
		blacklist, err = services.NewTokenBlacklist(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer blacklist.Close()
		log.Println("token blacklist enabled")
	}

	uploads, err := services.NewUploadStore(cfg.UploadsDir)
	if err != nil {
		log.Fatalf("failed to prepare uploads dir: %v", err)
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration)

	userService := &usecase.UserService{
		Repo:   repository.NewUserRepo(mongoClient, cfg.MongoDB),
		Tokens: tokens,
	}
	notesService := &usecase.NotesService{
		Repo:   repository.NewNotesRepo(mongoClient, cfg.MongoDB),
		Images: uploads,
	}

	go utils.CollectSystemMetrics(ctx, 15*time.Second)

	router := setupRouter(cfg, userService, notesService, tokens, blacklist, uploads)

	addr := ":" + cfg.Port
	log.Printf("server listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
