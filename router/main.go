package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/carebridge/api/config"
	"github.com/carebridge/api/database"
	auth_handlers "github.com/carebridge/api/handlers/auth"
	chat_handlers "github.com/carebridge/api/handlers/chat"
	chatbot_handlers "github.com/carebridge/api/handlers/chatbot"
	patient_handlers "github.com/carebridge/api/handlers/patient"
	volunteer_handlers "github.com/carebridge/api/handlers/volunteer"
	"github.com/carebridge/api/model"
	"github.com/carebridge/api/services"
	"github.com/carebridge/api/utils/auth"
	"github.com/carebridge/api/utils/cache"
	"github.com/carebridge/api/utils/middleware"
	"github.com/carebridge/api/utils/response"
)

// SetupRoutes wires all middleware, services and handlers onto the app
func SetupRoutes(app *fiber.App, store *database.GORMStore, db *gorm.DB, summaries *services.SummaryService, chatbotService *services.ChatbotService) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "carebridge-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: getEnv.JWT_SECRET,
		Issuer: jwtIssuer,
	})

	// Redis cache for brute force protection
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Domain services
	requestService := services.NewRequestService(db, summaries)
	assignmentService := services.NewAssignmentService(db)
	messageService := services.NewMessageService(db)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	patientHandler := patient_handlers.NewPatientHandler(requestService, messageService)
	volunteerHandler := volunteer_handlers.NewVolunteerHandler(assignmentService)
	chatHandler := chat_handlers.NewChatHandler(messageService)
	chatbotHandler := chatbot_handlers.NewChatbotHandler(chatbotService)

	// Security middleware
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    getEnv.ALLOWED_ORIGINS,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.InternalServerError(c, "Database unavailable")
		}
		return response.Message(c, "pong")
	})

	// Auth routes (public)
	userGroup := app.Group("/user")
	userGroup.Post("/register", authHandler.Register)
	if bruteForceProtection != nil {
		userGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		userGroup.Post("/login", authHandler.Login)
	}

	// Patient routes
	patientGroup := app.Group("/patient", authMiddleware.Required(), authMiddleware.RequireRole(model.RolePatient))
	patientGroup.Post("/request", patientHandler.CreateRequest)
	patientGroup.Get("/my_requests", patientHandler.MyRequests)
	patientGroup.Get("/request/:id", patientHandler.GetRequest)
	patientGroup.Patch("/resolve/:id", patientHandler.ResolveRequest)
	patientGroup.Post("/ask_query/:id", patientHandler.AskQuery)

	// Volunteer routes
	volunteerGroup := app.Group("/volunteer", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleVolunteer))
	volunteerGroup.Get("/get_all_patient", volunteerHandler.AvailableRequests)
	volunteerGroup.Post("/assign/:id", volunteerHandler.AssignRequest)
	volunteerGroup.Get("/my_patients", volunteerHandler.MyPatients)

	// Chat routes (patient or volunteer). The static unread route must
	// be registered before the :requestId parameter route.
	chatGroup := app.Group("/chat", authMiddleware.Required(), authMiddleware.RequireRole(model.RolePatient, model.RoleVolunteer))
	chatGroup.Post("/", chatHandler.SendMessage)
	chatGroup.Get("/unread/count", chatHandler.UnreadCount)
	chatGroup.Get("/:requestId", chatHandler.ListMessages)
	chatGroup.Patch("/:requestId/read", chatHandler.MarkRead)
	chatGroup.Delete("/:messageId", chatHandler.DeleteMessage)

	// Chatbot routes (any authenticated account)
	chatbotGroup := app.Group("/chatbot", authMiddleware.Required())
	chatbotGroup.Post("/", chatbotHandler.Ask)
	chatbotGroup.Get("/history", chatbotHandler.History)
	chatbotGroup.Delete("/history", chatbotHandler.DeleteHistory)
	chatbotGroup.Get("/session/:id", chatbotHandler.SessionDetails)
	chatbotGroup.Patch("/session/:id/title", chatbotHandler.RenameSession)
}
