package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ragvault/ragvault/internal/chunker"
	"github.com/ragvault/ragvault/internal/config"
	"github.com/ragvault/ragvault/internal/dbpool"
	"github.com/ragvault/ragvault/internal/entities"
	"github.com/ragvault/ragvault/internal/httpapi"
	"github.com/ragvault/ragvault/internal/ingest"
	"github.com/ragvault/ragvault/internal/logging"
	"github.com/ragvault/ragvault/internal/metastore"
	"github.com/ragvault/ragvault/internal/provider"
	"github.com/ragvault/ragvault/internal/retrieval"
	"github.com/ragvault/ragvault/internal/vectorstore"
)

// version is overridable via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("ragvault " + version)
		return
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	httpapi.Version = version

	setupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := dbpool.Open(setupCtx, cfg.Database.URL, cfg.Database.PoolMin, cfg.Database.PoolMax)
	if err != nil {
		logger.Fatal("failed to open database pool", zap.Error(err))
	}
	defer pool.Close()

	metaStore, err := metastore.NewStore(setupCtx, pool)
	if err != nil {
		logger.Fatal("failed to set up metadata store", zap.Error(err))
	}

	vectorStore, err := vectorstore.NewStore(setupCtx, pool, cfg.Embed.Dimension)
	if err != nil {
		logger.Fatal("failed to set up vector store", zap.Error(err))
	}

	adapter := provider.NewOpenAIAdapter(
		cfg.Provider.APIKey,
		cfg.Provider.BaseURL,
		cfg.Embed.Model,
		cfg.Embed.Dimension,
		cfg.Provider.ChatModel,
		cfg.Provider.MaxConcurrency,
	)

	pipeline := ingest.New(metaStore, vectorStore, adapter, chunker.DefaultOptions(), logger)

	core := retrieval.New(
		metaStore,
		vectorStore,
		adapter,
		adapter,
		cfg.Retrieval.TopKDefault,
		float32(cfg.Retrieval.DefaultTemperature),
		cfg.Retrieval.MaxHistoryMessages,
	)

	vaults := entities.NewVaults(metaStore, vectorStore)
	documents := entities.NewDocuments(metaStore, vectorStore)
	agents := entities.NewAgents(metaStore)

	api := httpapi.New(httpapi.Deps{
		Vaults:         vaults,
		Documents:      documents,
		Agents:         agents,
		Ingest:         pipeline,
		Retrieval:      core,
		Logger:         logger,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.Request.Timeout,
		MaxBodyBytes:   cfg.Request.MaxBodyBytes,
	})

	httpServer := &http.Server{
		Addr:    cfg.Address,
		Handler: http.MaxBytesHandler(api, cfg.Request.MaxBodyBytes),
	}

	logger.Info("starting server",
		zap.String("address", cfg.Address),
		zap.String("chat_model", cfg.Provider.ChatModel),
		zap.String("embedding_model", cfg.Embed.Model),
	)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	waitForShutdown(httpServer, logger)
}

func waitForShutdown(srv *http.Server, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if err := srv.Close(); err != nil {
			logger.Warn("forced close failed", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}
