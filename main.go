package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/config"
	"github.com/kendall-kelly/cafe-pos-api/middleware"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"github.com/kendall-kelly/cafe-pos-api/routes"
	"github.com/kendall-kelly/cafe-pos-api/services"
	"gorm.io/gorm"
)

func main() {
	log.Println("Starting Café POS API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	router, err := setupRouter(context.Background(), cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires the production dependencies around an open database
func setupRouter(ctx context.Context, cfg *config.Config, db *gorm.DB) (*gin.Engine, error) {
	images, err := services.NewImageService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		DB:       db,
		Images:   images,
		UserInfo: services.NewAuth0Service(cfg.Auth0Domain),
		Auth:     middleware.EnsureValidToken(cfg),
	}), nil
}
