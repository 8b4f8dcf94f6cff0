package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/access"
	"docuchat/internal/ai"
	appsvc "docuchat/internal/app"
	"docuchat/internal/bootstrap"
	"docuchat/internal/cache"
	rabbitmqClient "docuchat/internal/platform/rabbitmq"
	"docuchat/internal/repository"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	documentRepo := repository.NewDocumentRepository(app.MySQL)
	interactionRepo := repository.NewInteractionRepository(app.MySQL)

	resolver := access.NewResolver(userRepo, documentRepo)
	answerCache := cache.NewAnswerCache(app.Redis, time.Duration(app.Config.Redis.AnswerTTLSeconds)*time.Second)
	publisher := rabbitmqClient.NewInteractionPublisher(app.MQConn, app.Config.RabbitMQ.InteractionPersistQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	documentService := appsvc.NewDocumentService(documentRepo, resolver)
	askService := appsvc.NewAskService(
		resolver,
		answerCache,
		interactionRepo,
		publisher,
		ai.NewOpenAICompatibleClient(),
		ai.ChatConfig{
			BaseURL: app.Config.LLM.BaseURL,
			APIKey:  app.Config.LLM.APIKey,
			Model:   app.Config.LLM.Model,
			Timeout: time.Duration(app.Config.LLM.TimeoutSeconds) * time.Second,
		},
	)

	authHandler := handler.NewAuthHandler(authService, app.Config.Auth.JWTSecret)
	documentHandler := handler.NewDocumentHandler(documentService, app.Config.Upload.MaxPDFSizeMB)
	askHandler := handler.NewAskHandler(askService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	authed := v1.Group("")
	authed.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	authed.POST("/documents", documentHandler.Upload)
	authed.GET("/documents", documentHandler.List)
	authed.POST("/ask", askHandler.Ask)
	authed.GET("/history", askHandler.History)

	return router
}
