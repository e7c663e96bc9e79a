package main

import (
	"github.com/blockmarketai/marketplace/internal/application/authservice"
	"github.com/blockmarketai/marketplace/internal/application/datasetservice"
	"github.com/blockmarketai/marketplace/internal/application/ledgerservice"
	"github.com/blockmarketai/marketplace/internal/application/userservice"
	"github.com/blockmarketai/marketplace/internal/infrastructure/database"
	"github.com/blockmarketai/marketplace/internal/infrastructure/rpc"
	"github.com/blockmarketai/marketplace/internal/infrastructure/storage"
	datasetrepository "github.com/blockmarketai/marketplace/internal/repositories/datasetrepo"
	transactionrepository "github.com/blockmarketai/marketplace/internal/repositories/transactionrepo"
	userrepository "github.com/blockmarketai/marketplace/internal/repositories/userrepo"
	"github.com/blockmarketai/marketplace/internal/server"
	"github.com/blockmarketai/marketplace/internal/server/websocket"
	"github.com/blockmarketai/marketplace/pkg/config"
	"github.com/blockmarketai/marketplace/pkg/logger"
)

func main() {
	logger := logger.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.ShutDown()

	if err := db.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	fileStore, err := storage.NewFileStore(cfg.Upload.Dir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize file storage")
	}

	userRepo := userrepository.New(db, logger)
	datasetRepo := datasetrepository.New(db, logger)
	transactionRepo := transactionrepository.New(db, logger)

	wsHub := websocket.NewWsHub(logger)
	go wsHub.Run()

	var chainReader ledgerservice.ChainReader
	if cfg.Ethereum.Enabled {
		chainReader = rpc.NewEthereumClient(cfg.Ethereum, logger)
	}

	authService := authservice.NewAuthService(cfg, logger, userRepo)
	userService := userservice.NewUserService(logger, userRepo)
	datasetService := datasetservice.NewDatasetService(cfg, logger, datasetRepo, transactionRepo, fileStore)
	ledgerService := ledgerservice.NewLedgerService(cfg, logger, transactionRepo, datasetRepo, userRepo, wsHub, chainReader)

	srv := server.New(cfg, authService, userService, datasetService, ledgerService, logger, wsHub)
	srv.Start()
}
