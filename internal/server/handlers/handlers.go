package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/application/authservice"
	"github.com/blockmarketai/marketplace/internal/application/datasetservice"
	"github.com/blockmarketai/marketplace/internal/application/ledgerservice"
	"github.com/blockmarketai/marketplace/internal/application/userservice"
	"github.com/blockmarketai/marketplace/internal/server/middleware"
	"github.com/blockmarketai/marketplace/internal/server/websocket"
	"github.com/blockmarketai/marketplace/pkg/config"
)

type Handlers struct {
	AuthSvc    authservice.IAuthService
	UserSvc    userservice.IUserService
	DatasetSvc datasetservice.IDatasetService
	LedgerSvc  ledgerservice.ILedgerService
	Logger     zerolog.Logger
	Config     *config.Config
	WsHub      *websocket.WsHub
}

func New(
	authSvc authservice.IAuthService,
	userSvc userservice.IUserService,
	datasetSvc datasetservice.IDatasetService,
	ledgerSvc ledgerservice.ILedgerService,
	logger zerolog.Logger,
	config *config.Config,
	wsHub *websocket.WsHub,
) *Handlers {
	return &Handlers{
		AuthSvc:    authSvc,
		UserSvc:    userSvc,
		DatasetSvc: datasetSvc,
		LedgerSvc:  ledgerSvc,
		Logger:     logger,
		Config:     config,
		WsHub:      wsHub,
	}
}

func (h *Handlers) SetupHandlers(router *gin.Engine, m *middleware.Middleware) {
	authHandler := NewAuthHandler(h.AuthSvc, h.UserSvc, h.Logger)
	userHandler := NewUserHandler(h.UserSvc, h.Logger)
	datasetHandler := NewDatasetHandler(h.DatasetSvc, h.Config, h.Logger)
	transactionHandler := NewTransactionHandler(h.LedgerSvc, h.Logger)
	wsHandler := NewWebSocketHandler(h.WsHub, h.Config, h.Logger)
	healthHandler := NewHealthHandler()

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	router.GET("/ws", m.Authenticate(), wsHandler.HandleConnection)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", m.Authenticate(), authHandler.Refresh)
			auth.POST("/logout", m.Authenticate(), authHandler.Logout)
			auth.GET("/me", m.Authenticate(), authHandler.Me)
		}

		users := api.Group("/users")
		{
			users.GET("", m.Authenticate(), m.RequireAdmin(), userHandler.List)
			users.PUT("/profile", m.Authenticate(), userHandler.UpdateProfile)
			users.DELETE("/me", m.Authenticate(), userHandler.DeleteAccount)
			users.GET("/:id", userHandler.Get)
			users.GET("/:id/stats", userHandler.Stats)
		}

		datasets := api.Group("/datasets")
		{
			datasets.GET("", m.OptionalAuth(), datasetHandler.List)
			datasets.GET("/categories", datasetHandler.Categories)
			datasets.GET("/my-datasets", m.Authenticate(), datasetHandler.MyDatasets)
			datasets.POST("", m.Authenticate(), datasetHandler.Create)
			datasets.GET("/:id", m.OptionalAuth(), datasetHandler.Get)
			datasets.PUT("/:id", m.Authenticate(), datasetHandler.Update)
			datasets.DELETE("/:id", m.Authenticate(), datasetHandler.Delete)
			datasets.GET("/:id/download", m.Authenticate(), datasetHandler.Download)
		}

		transactions := api.Group("/transactions", m.Authenticate())
		{
			transactions.POST("", transactionHandler.CreatePurchase)
			transactions.GET("", transactionHandler.List)
			transactions.GET("/purchases", transactionHandler.Purchases)
			transactions.GET("/sales", transactionHandler.Sales)
			transactions.GET("/analytics", m.RequireAdmin(), transactionHandler.Analytics)
			transactions.GET("/:id", transactionHandler.Get)
			transactions.PUT("/:id/status", transactionHandler.UpdateStatus)
		}
	}
}
