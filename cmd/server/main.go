package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	credhandler "certledger/internal/credential/handler"
	credmetrics "certledger/internal/credential/metrics"
	credservice "certledger/internal/credential/service"
	credstore "certledger/internal/credential/store"
	"certledger/internal/ledger"
	ledgertracer "certledger/internal/ledger/tracer"
	partyhandler "certledger/internal/party/handler"
	partyservice "certledger/internal/party/service"
	partystore "certledger/internal/party/store"
	"certledger/internal/platform/config"
	"certledger/internal/platform/health"
	"certledger/internal/platform/httpserver"
	"certledger/internal/platform/logger"
	httptransport "certledger/internal/transport/http"
	"certledger/internal/upload"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	_ = godotenv.Load()

	log := logger.New()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("initializing certledger",
		"addr", cfg.Addr,
		"chain_bridge", cfg.ChainBridgeURL,
		"mongo_database", cfg.MongoDatabase,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	cancel()
	if err != nil {
		log.Error("mongo connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
	}()
	db := client.Database(cfg.MongoDatabase)

	initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer initCancel()

	issuedStore, err := credstore.NewMongoIssuedStore(initCtx, db)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}
	submittedStore, err := credstore.NewMongoSubmittedStore(initCtx, db)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}
	studentStore, err := partystore.NewMongoStudentStore(initCtx, db)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}
	instituteStore, err := partystore.NewMongoInstituteStore(initCtx, db)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}
	verifierStore, err := partystore.NewMongoVerifierStore(initCtx, db)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}

	var tracer ledgertracer.Tracer = ledgertracer.NewNoop()
	if cfg.TracingEnabled {
		tracer = ledgertracer.NewOTel()
	}

	chainClient := ledger.NewHTTPClient(cfg.ChainBridgeURL, cfg.ChainBridgeAPIKey, cfg.ChainTimeout)
	gateway := ledger.New(chainClient, ledger.Config{
		AdminAddress:     cfg.AdminAddress,
		InstituteAddress: cfg.InstituteAddress,
		GasLimit:         cfg.GasLimit,
	},
		ledger.WithLogger(log),
		ledger.WithTracer(tracer),
	)

	uploader := upload.NewHTTPUploader(cfg.UploadURL, cfg.UploadAPIKey, cfg.UploadTimeout)

	parties := partyservice.New(studentStore, instituteStore, verifierStore, gateway,
		partyservice.WithLogger(log))
	credentials := credservice.New(issuedStore, submittedStore, gateway, uploader, studentStore, instituteStore,
		credservice.WithLogger(log),
		credservice.WithMetrics(credmetrics.New()),
	)

	healthHandler := health.New()
	healthHandler.RegisterCheck("mongo", func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})

	router := httptransport.NewRouter(httptransport.Deps{
		Credentials:    credhandler.New(credentials, log),
		Parties:        partyhandler.New(parties, log),
		Health:         healthHandler,
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
