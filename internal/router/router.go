package router

import (
	"log"

	"github.com/atlasroam/atlas/backend/internal/handlers"
	"github.com/atlasroam/atlas/backend/internal/middleware"
	"github.com/atlasroam/atlas/backend/internal/repositories"
	"github.com/atlasroam/atlas/backend/internal/services"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, client *mongo.Client, db *mongo.Database, jwtSecret string) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	connectionRepo := repositories.NewMongoConnectionRepository(client, db)
	journalRepo := repositories.NewMongoJournalRepository(db)
	likeRepo := repositories.NewMongoLikeRepository(client, db)
	commentRepo := repositories.NewMongoCommentRepository(client, db)
	locationRepo := repositories.NewMongoLocationRepository(db)
	tipRepo := repositories.NewMongoTipRepository(db)

	// --- Initialize Services ---
	connectionService := services.NewConnectionService(connectionRepo, userRepo)
	socialService := services.NewSocialService(connectionRepo, journalRepo, likeRepo, commentRepo, userRepo)
	journalService := services.NewJournalService(journalRepo, connectionRepo, userRepo)
	suggestionService := services.NewSuggestionService(userRepo, connectionRepo)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(userRepo, jwtSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(jwtSecret))
	log.Println("JWT authentication middleware applied to /api group.")

	authHandler.RegisterUserRoutes(api)

	profileHandler := handlers.NewProfileHandler(userRepo)
	profileHandler.RegisterProfileRoutes(api)
	log.Println("Profile routes configured.")

	connectionHandler := handlers.NewConnectionHandler(connectionService, suggestionService, socialService)
	connectionHandler.RegisterConnectionRoutes(api)
	log.Println("Connection routes configured.")

	journalHandler := handlers.NewJournalHandler(journalService, socialService)
	journalHandler.RegisterJournalRoutes(api)
	log.Println("Journal routes configured.")

	locationHandler := handlers.NewLocationHandler(locationRepo, userRepo)
	locationHandler.RegisterLocationRoutes(api)
	log.Println("Location routes configured.")

	tipHandler := handlers.NewTipHandler(tipRepo)
	tipHandler.RegisterTipRoutes(api)
	log.Println("Tip routes configured.")

	log.Println("All routes configured.")
}
