package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/internal/application/authservice"
	"github.com/blockmarketai/marketplace/internal/application/datasetservice"
	"github.com/blockmarketai/marketplace/internal/application/ledgerservice"
	"github.com/blockmarketai/marketplace/internal/application/userservice"
	"github.com/blockmarketai/marketplace/internal/server/handlers"
	"github.com/blockmarketai/marketplace/internal/server/middleware"
	"github.com/blockmarketai/marketplace/internal/server/websocket"
	"github.com/blockmarketai/marketplace/pkg/config"
)

type Server struct {
	AuthSvc    authservice.IAuthService
	UserSvc    userservice.IUserService
	DatasetSvc datasetservice.IDatasetService
	LedgerSvc  ledgerservice.ILedgerService
	Cfg        *config.Config
	Logger     zerolog.Logger
	Router     *gin.Engine
	httpServer *http.Server
	WsHub      *websocket.WsHub
}

func New(
	cfg *config.Config,
	authSvc authservice.IAuthService,
	userSvc userservice.IUserService,
	datasetSvc datasetservice.IDatasetService,
	ledgerSvc ledgerservice.ILedgerService,
	logger zerolog.Logger,
	wsHub *websocket.WsHub,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		AuthSvc:    authSvc,
		UserSvc:    userSvc,
		DatasetSvc: datasetSvc,
		LedgerSvc:  ledgerSvc,
		Cfg:        cfg,
		Logger:     logger,
		Router:     gin.New(),
		WsHub:      wsHub,
	}
}

func (s *Server) SetupRouter() {
	m := middleware.NewMiddleware(s.AuthSvc, s.Cfg, s.Logger)
	m.SetupMiddleware(s.Router)

	handler := handlers.New(
		s.AuthSvc,
		s.UserSvc,
		s.DatasetSvc,
		s.LedgerSvc,
		s.Logger,
		s.Cfg,
		s.WsHub,
	)
	handler.SetupHandlers(s.Router, m)
}

func (s *Server) Start() {
	s.SetupRouter()

	s.httpServer = &http.Server{
		Addr:         s.Cfg.Server.Host + ":" + s.Cfg.Server.Port,
		Handler:      s.Router,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	s.Logger.Info().Msgf("Starting server on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-stopChan
	s.Logger.Info().Msg("Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.Logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	s.Logger.Info().Msg("Server exited gracefully")
}
