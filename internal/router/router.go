// internal/router/router.go
package router

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beatstore/backend/internal/config"
	"github.com/beatstore/backend/internal/handlers"
	"github.com/beatstore/backend/internal/middleware"
	"github.com/beatstore/backend/internal/services"
	"github.com/beatstore/backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	tokens := utils.NewTokenIssuer(cfg.JWT.SecretKey)

	authService := services.NewAuthService(db, cfg, tokens)
	catalogService := services.NewCatalogService(db, storageService)
	entitlementService := services.NewEntitlementService(db, storageService)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	beatHandler := handlers.NewBeatHandler(catalogService, entitlementService)
	adminHandler := handlers.NewAdminHandler(catalogService, adminService)
	streamHandler := handlers.NewStreamHandler(storageService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Range-aware audio streaming. Demos are public; full tracks are
	// served from the same tree but only ever referenced by URLs the
	// catalog reveals to entitled users.
	static := r.Group("/static")
	{
		static.GET("/demos/:filename", streamHandler.ServeDemo)
		static.GET("/audio/:filename", streamHandler.ServeFullAudio)
	}
	if cfg.AWS.AccessKeyID == "" {
		r.StaticFS("/static/covers", gin.Dir(filepath.Join(cfg.Storage.Root, "covers"), false))
	}

	// Authentication routes
	auth := r.Group("/")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/token", authHandler.Login)
		auth.POST("/login", authHandler.Login)
		auth.POST("/api/admin/login", authHandler.AdminLogin)
	}
	r.GET("/me", middleware.AuthRequired(db, tokens), authHandler.Me)

	// Catalog routes
	beats := r.Group("/beats")
	{
		beats.GET("", beatHandler.ListBeats)
		beats.GET("/:id", middleware.OptionalAuth(db, tokens), beatHandler.GetBeat)

		protected := beats.Group("/:id")
		protected.Use(middleware.AuthRequired(db, tokens))
		{
			protected.POST("/favorite", beatHandler.AddFavorite)
			protected.DELETE("/favorite", beatHandler.RemoveFavorite)
			protected.POST("/cart", beatHandler.AddToCart)
			protected.DELETE("/cart", beatHandler.RemoveFromCart)
			protected.POST("/purchase", beatHandler.Purchase)
			protected.GET("/download", beatHandler.Download)
		}
	}

	// Library routes
	library := r.Group("/")
	library.Use(middleware.AuthRequired(db, tokens))
	{
		library.GET("/favorites", beatHandler.ListFavorites)
		library.GET("/cart", beatHandler.ListCart)
		library.GET("/purchases", beatHandler.ListPurchases)
	}

	// Upload routes
	uploads := r.Group("/")
	uploads.Use(middleware.AuthRequired(db, tokens), middleware.UploadRateLimit())
	{
		uploads.POST("/upload-audio/:id", beatHandler.UploadAudio)
		uploads.POST("/create-beat-with-audio", beatHandler.CreateBeatWithAudio)
	}

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.AdminRequired(db, tokens))
	{
		admin.GET("/beats", adminHandler.ListBeats)
		admin.GET("/genres", adminHandler.Genres)
		admin.POST("/beats", adminHandler.CreateBeat)
		admin.POST("/upload-beat", middleware.UploadRateLimit(), adminHandler.UploadBeat)
		admin.PUT("/beats/:id", adminHandler.UpdateBeat)
		admin.DELETE("/beats/:id", adminHandler.DeleteBeat)
		admin.GET("/purchases", adminHandler.ListPurchases)
		admin.GET("/analytics", adminHandler.Analytics)
	}

	return r, nil
}
