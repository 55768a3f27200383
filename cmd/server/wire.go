//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/TesslaRay/claudio-aleph-2025/internal/config"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/casefile"
	chaindomain "github.com/TesslaRay/claudio-aleph-2025/internal/domain/chain"
	contractdomain "github.com/TesslaRay/claudio-aleph-2025/internal/domain/contract"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/intake"
	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/llm"
	chainclient "github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/chain"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/database"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/llmprovider"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/logger"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/promptstore"
	casefilerepo "github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/repository/casefile"
	contractrepo "github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/repository/contract"
	"github.com/TesslaRay/claudio-aleph-2025/internal/interfaces/httpserver"
)

var claudioSet = wire.NewSet(
	casefilerepo.NewRepository,
	wire.Bind(new(casefile.Repository), new(*casefilerepo.Repository)),
	contractrepo.NewRepository,
	wire.Bind(new(contractdomain.Repository), new(*contractrepo.Repository)),
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	newChainClient,
	wire.Bind(new(chaindomain.Registrar), new(*chainclient.Client)),
	newPromptStore,
	wire.Bind(new(intake.PromptSource), new(*promptstore.Store)),
	newIntakeService,
	casefile.NewService,
)

// BuildApplication demonstrates how to assemble the claudio service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newCaseLockerProvider,
		claudioSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	dbCfg := database.FromAppConfig(cfg)
	dbCfg.LogLevel = gormlogger.Warn
	return dbCfg
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newLLMProvider(cfg *config.Config, log zerolog.Logger) *llmprovider.Client {
	return llmprovider.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMTimeout, log)
}

func newChainClient(cfg *config.Config, log zerolog.Logger) (*chainclient.Client, error) {
	return chainclient.NewClient(chainclient.Config{
		RPCURL:          cfg.ChainRPCURL,
		ContractAddress: cfg.ChainContractAddr,
		FromAddress:     cfg.ChainFromAddr,
		TxTimeout:       cfg.ChainTxTimeout,
		ReceiptPoll:     cfg.ChainReceiptPoll,
	}, log)
}

func newPromptStore(cfg *config.Config, log zerolog.Logger) *promptstore.Store {
	return promptstore.New(cfg.PromptDir, log)
}

func newCaseLockerProvider(cfg *config.Config, log zerolog.Logger) intake.CaseLocker {
	return newCaseLocker(cfg, log)
}

func newIntakeService(
	cases casefile.Repository,
	contracts contractdomain.Repository,
	provider llm.Provider,
	registrar chaindomain.Registrar,
	prompts intake.PromptSource,
	locker intake.CaseLocker,
	cfg *config.Config,
	log zerolog.Logger,
) *intake.Service {
	return intake.NewService(intake.Params{
		Cases:          cases,
		Contracts:      contracts,
		LLM:            provider,
		Chain:          registrar,
		Prompts:        prompts,
		Locker:         locker,
		IntakeModel:    cfg.IntakeModel,
		DrafterModel:   cfg.DrafterModel,
		ScoreThreshold: cfg.ScoreThreshold,
	}, log)
}
