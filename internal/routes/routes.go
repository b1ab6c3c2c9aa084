package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"hms-server/internal/config"
	"hms-server/internal/handlers"
	"hms-server/internal/middleware"
	"hms-server/internal/models"
	"hms-server/internal/services"
	"hms-server/internal/session"
	"hms-server/internal/storage"
	"hms-server/internal/utils"
)

// Deps are the collaborators the API is built from. Redis may be nil;
// Revoker is required.
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Files   *storage.LocalStorage
	Revoker session.Revoker
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Deps, cfg *config.Config) {
	issuer := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiration())
	revoker := deps.Revoker

	userService := services.NewUserService(deps.DB, issuer)
	appointmentService := services.NewAppointmentService(deps.DB)
	documentService := services.NewDocumentService(deps.DB, deps.Files)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, revoker)
	userHandler := handlers.NewUserHandler(userService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	documentHandler := handlers.NewDocumentHandler(documentService, cfg.Upload.MaxBytes)

	authenticate := middleware.AuthMiddleware(issuer, userService, revoker)
	limit := middleware.RateLimiter(deps.Redis, middleware.RateLimitConfig{
		Limit:  cfg.RateLimit.Requests,
		Window: cfg.RateLimit.Window,
	})

	api := router.Group("/api")

	// Public routes (no authentication required)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", limit, authHandler.Register)
		authRoutes.POST("/login", limit, authHandler.Login)
		authRoutes.GET("/me", authenticate, authHandler.Me)
		authRoutes.POST("/logout", authenticate, authHandler.Logout)
	}

	// Authenticated routes
	private := api.Group("")
	private.Use(authenticate)
	{
		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.POST("", userHandler.CreateUser)
			}
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("/my", appointmentHandler.GetMyAppointments)
			appointmentRoutes.GET("/all", middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.GetAllAppointments)
			// Ownership is checked by the service.
			appointmentRoutes.DELETE("/:id", appointmentHandler.CancelAppointment)
			appointmentRoutes.PUT("/:id/status", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.UpdateAppointmentStatus)
		}

		documentRoutes := private.Group("/documents")
		{
			documentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), documentHandler.UploadDocument)
			documentRoutes.GET("/my", middleware.RoleAuthMiddleware(models.RolePatient), documentHandler.GetMyDocuments)
			documentRoutes.GET("/patient/:patientId", middleware.RoleAuthMiddleware(models.RoleDoctor), documentHandler.GetPatientDocuments)
			documentRoutes.GET("/all", middleware.RoleAuthMiddleware(models.RoleAdmin), documentHandler.GetAllDocuments)
			documentRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), documentHandler.DeleteDocument)
		}
	}

	// Uploaded files
	if deps.Files != nil {
		router.Static("/"+deps.Files.Prefix(), deps.Files.Root())
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running...")
	})
}
