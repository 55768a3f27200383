package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/TesslaRay/claudio-aleph-2025/internal/config"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/intake"
	chainclient "github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/chain"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/database"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/lease"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/llmprovider"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/logger"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/observability"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/promptstore"
	casefilerepo "github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/repository/casefile"
	contractrepo "github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/repository/contract"
	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	dbCfg := database.FromAppConfig(cfg)
	dbCfg.LogLevel = gormlogger.Warn
	db, err := database.Connect(dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	caseRepository := casefilerepo.NewRepository(db)
	contractRepository := contractrepo.NewRepository(db)

	llmClient := llmprovider.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMTimeout, log)

	registrar, err := chainclient.NewClient(chainclient.Config{
		RPCURL:          cfg.ChainRPCURL,
		ContractAddress: cfg.ChainContractAddr,
		FromAddress:     cfg.ChainFromAddr,
		TxTimeout:       cfg.ChainTxTimeout,
		ReceiptPoll:     cfg.ChainReceiptPoll,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize chain client")
	}

	locker := newCaseLocker(cfg, log)
	prompts := promptstore.New(cfg.PromptDir, log)

	intakeService := intake.NewService(intake.Params{
		Cases:          caseRepository,
		Contracts:      contractRepository,
		LLM:            llmClient,
		Chain:          registrar,
		Prompts:        prompts,
		Locker:         locker,
		IntakeModel:    cfg.IntakeModel,
		DrafterModel:   cfg.DrafterModel,
		ScoreThreshold: cfg.ScoreThreshold,
	}, log)
	caseService := casefile.NewService(caseRepository, log)

	httpServer := httpserver.New(cfg, log, intakeService, caseService)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// newCaseLocker selects the Redis lease when REDIS_URL is set, and the
// in-process lock otherwise.
func newCaseLocker(cfg *config.Config, log zerolog.Logger) intake.CaseLocker {
	if cfg.RedisURL == "" {
		log.Info().Msg("no REDIS_URL configured, using in-process case locks")
		return lease.NewMemoryLocker()
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse REDIS_URL")
	}
	return lease.NewRedisLocker(redis.NewClient(opts), cfg.CaseLockTTL, log)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
