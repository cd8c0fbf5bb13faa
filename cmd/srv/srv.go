package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/launchfee/backend/config"
	"github.com/launchfee/backend/internal/chain/distributor"
	"github.com/launchfee/backend/internal/chain/erc20"
	"github.com/launchfee/backend/internal/chain/eth"
	"github.com/launchfee/backend/internal/chain/multicall"
	"github.com/launchfee/backend/internal/client"
	"github.com/launchfee/backend/internal/domain"
	"github.com/launchfee/backend/internal/domain/claim"
	"github.com/launchfee/backend/internal/entity"
	"github.com/launchfee/backend/internal/repository"
	"github.com/launchfee/backend/pkg/logger"
	"github.com/launchfee/backend/pkg/router"
	"github.com/launchfee/backend/pkg/xcontext"
	"github.com/launchfee/backend/pkg/xredis"
)

type srv struct {
	app *cli.App

	configs *config.Configs
	logger  logger.Logger

	db          *gorm.DB
	redisClient xredis.Client

	ethClient    eth.EthClient
	session      *claim.Session
	writer       *eth.Writer
	gate         *claim.Gate
	resolver     *claim.Resolver
	ledger       *claim.Ledger
	orchestrator *claim.Orchestrator

	claimRepo repository.ClaimTransactionRepository
	discovery client.DiscoveryClient

	claimDomain      domain.ClaimDomain
	walletAuthDomain domain.WalletAuthDomain

	router *router.Router
	server *http.Server
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}

	return defaultValue
}

func (s *srv) loadConfig() {
	godotenv.Load()

	chainCfg, err := config.LoadChainConfigs(getEnv("CHAIN_CONFIG", "./chain.toml"))
	if err != nil {
		panic(err)
	}
	chainCfg.SessionSecret = os.Getenv("CHAIN_SESSION_SECRET")

	s.configs = &config.Configs{
		Env: getEnv("ENV", "local"),
		ApiServer: config.ServerConfigs{
			Host:           getEnv("HOST", "localhost"),
			Port:           getEnv("PORT", "8080"),
			Cert:           os.Getenv("SERVER_CERT"),
			Key:            os.Getenv("SERVER_KEY"),
			AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "*")},
		},
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "launchfee"),
			User:     getEnv("MYSQL_USER", "launchfee"),
			Password: getEnv("MYSQL_PASSWORD", "launchfee"),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Auth: config.AuthConfigs{
			AccessTokenName: "access_token",
			TokenSecret:     getEnv("TOKEN_SECRET", "token_secret"),
			TokenExpiration: getEnvDuration("TOKEN_EXPIRATION", time.Hour*24),
		},
		Chain: chainCfg,
		Claim: config.ClaimConfigs{
			ConfirmTimeout:     getEnvDuration("CLAIM_CONFIRM_TIMEOUT", claim.DefaultConfirmTimeout),
			SettlePollInterval: getEnvDuration("CLAIM_SETTLE_POLL_INTERVAL", claim.DefaultSettlePollInterval),
			SettleMaxAttempts:  getEnvInt("CLAIM_SETTLE_MAX_ATTEMPTS", claim.DefaultSettleMaxAttempts),
			CacheTTL:           getEnvDuration("CLAIM_CACHE_TTL", time.Minute),
			LedgerKeyPrefix:    getEnv("CLAIM_LEDGER_KEY_PREFIX", "claim_ledger"),
		},
		Discovery: config.DiscoveryConfigs{
			URL:      os.Getenv("DISCOVERY_URL"),
			PageSize: getEnvInt("DISCOVERY_PAGE_SIZE", 100),
			MaxPages: getEnvInt("DISCOVERY_MAX_PAGES", 10),
		},
	}
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if s.configs.Env == "local" {
		level = logger.DEBUG
	}

	s.logger = logger.NewLogger(level)
}

// ctx carries configs, logger, and db the same way the router seeds them per
// request, so load methods and background loops share one access pattern.
func (s *srv) ctx() context.Context {
	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, *s.configs)
	ctx = xcontext.WithLogger(ctx, s.logger)
	if s.db != nil {
		ctx = xcontext.WithDB(ctx, s.db)
	}

	return ctx
}

func (s *srv) loadDatabase() {
	var err error
	s.db, err = gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	if err := s.db.AutoMigrate(&entity.ClaimTransaction{}); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedis() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx())
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadChain() {
	ctx := s.ctx()
	chainCfg := s.configs.Chain

	s.ethClient = eth.NewEthClient(chainCfg.Chain, chainCfg.ChainID, chainCfg.Rpcs)
	s.ethClient.Start(ctx)

	s.session = claim.NewSession(s.ethClient)
	if err := s.session.Connect(ctx); err != nil {
		panic(err)
	}

	routerAddr := common.HexToAddress(chainCfg.FeeRouter)
	distributorAddr := common.HexToAddress(chainCfg.Distributor)
	settlementAddr := common.HexToAddress(chainCfg.SettlementToken)
	multicallAddr := common.HexToAddress(chainCfg.Multicall)

	s.writer = eth.NewWriter(
		s.ethClient,
		s.session.Signer(),
		routerAddr,
		distributorAddr,
		time.Duration(chainCfg.BlockTime)*time.Second,
	)

	erc20Reader := erc20.NewReader(s.ethClient)
	batchCaller := multicall.NewCaller(s.ethClient, multicallAddr)
	feeReader := distributor.NewReader(s.ethClient, batchCaller, distributorAddr)

	s.gate = claim.NewGate(erc20Reader, routerAddr)
	s.resolver = claim.NewResolver(feeReader, erc20Reader, settlementAddr)
	s.ledger = claim.NewLedger(s.redisClient, s.configs.Claim.LedgerKeyPrefix)
	s.orchestrator = claim.NewOrchestrator(
		s.writer, s.gate, s.resolver, s.ledger, settlementAddr,
		claim.OrchestratorOptions{
			ConfirmTimeout:     s.configs.Claim.ConfirmTimeout,
			SettlePollInterval: s.configs.Claim.SettlePollInterval,
			SettleMaxAttempts:  s.configs.Claim.SettleMaxAttempts,
		},
	)
}

func (s *srv) loadRepos() {
	s.claimRepo = repository.NewClaimTransactionRepository()
}

func (s *srv) loadClients() {
	s.discovery = client.NewDiscoveryClient()
}

func (s *srv) loadDomains() {
	s.claimDomain = domain.NewClaimDomain(
		s.claimRepo, s.orchestrator, s.resolver, s.gate, s.session, s.discovery, s.redisClient)
	s.walletAuthDomain = domain.NewWalletAuthDomain(s.redisClient)
}
