package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/notional-finance/notional-indexer/internal/adapter"
	"github.com/notional-finance/notional-indexer/internal/config"
	"github.com/notional-finance/notional-indexer/internal/handler"
	"github.com/notional-finance/notional-indexer/internal/indexer"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/providers/notional"
	"github.com/notional-finance/notional-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	config.ChdirRepoRoot()
	cfg, err := config.LoadIndexerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "notional-indexer",
			"chain":   string(cfg.Ethereum.ChainID),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting Notional Indexer")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	if err := store.Migrate(ctx, db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Connected to database")

	dataStore := store.NewPGStore(db)

	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()

	// Contract reads go through plain RPC
	ethDialer := adapter.NewEthClientDialer()
	ethClient, err := ethDialer.Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.Fatal("Failed to dial Ethereum RPC", zap.Error(err), zap.String("rpc_url", cfg.Ethereum.RPCURL))
	}
	defer ethClient.Close()

	accessor, err := notional.NewAccessor(ethClient, notional.Config{
		RouterAddress:        common.HexToAddress(cfg.Ethereum.NotionalAddress),
		TokenCacheSize:       cfg.Cache.TokenSize,
		RetryInitialInterval: cfg.Retry.InitialInterval,
		RetryMaxElapsedTime:  cfg.Retry.MaxElapsedTime,
	})
	if err != nil {
		logger.Fatal("Failed to create Notional accessor", zap.Error(err))
	}

	dispatcher := handler.NewDispatcher(accessor, dataStore)

	eventIndexer, err := indexer.NewIndexer(
		indexer.Config{
			URL:             cfg.NATS.URL,
			StreamName:      cfg.NATS.StreamName,
			ConsumerName:    cfg.NATS.ConsumerName,
			ChainID:         cfg.Ethereum.ChainID,
			MaxReconnects:   cfg.NATS.MaxReconnects,
			ReconnectWait:   cfg.NATS.ReconnectWait,
			ConnectionName:  cfg.NATS.ConnectionName,
			AckWaitTimeout:  cfg.NATS.AckWait,
			MaxDeliver:      cfg.NATS.MaxDeliver,
			RedeliveryDelay: cfg.NATS.RedeliveryDelay,
		},
		natsJS,
		dispatcher,
		dataStore,
		jsonAdapter,
	)
	if err != nil {
		logger.Fatal("Failed to create indexer", zap.Error(err))
	}
	defer eventIndexer.Close()
	logger.Info("Indexer created", zap.String("stream", cfg.NATS.StreamName), zap.String("consumer", cfg.NATS.ConsumerName))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- eventIndexer.Run(ctx)
	}()

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
		// let the event in flight settle before the connections close
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(err, zap.String("component", "indexer"))
		}
		cancel()
	}

	logger.Info("Notional Indexer stopped")
}
