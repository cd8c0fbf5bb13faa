package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/launchfee/backend/internal/common"
	"github.com/launchfee/backend/internal/middleware"
	"github.com/launchfee/backend/pkg/router"
)

func (s *srv) startApi(ct *cli.Context) error {
	server.loadConfig()
	server.loadLogger()
	server.loadDatabase()
	server.loadRedis()
	server.loadChain()
	server.loadRepos()
	server.loadClients()
	server.loadDomains()
	server.loadRouter()

	common.RegisterPrometheus()

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", s.configs.ApiServer.Host, s.configs.ApiServer.Port),
		Handler: s.router.Handler(),
	}

	log.Printf("Starting server on port: %s\n", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}
	log.Printf("server stop")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, *s.configs, s.logger)
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())
	s.router.Before(middleware.VerifyAccessToken())
	s.router.Handle("/metrics", promhttp.Handler())

	// Auth API
	router.GET(s.router, "/wallet/login", s.walletAuthDomain.Login)
	router.GET(s.router, "/wallet/verify", s.walletAuthDomain.Verify)

	// Public claim API. The wallet comes from the query or, when omitted, from
	// the access token.
	router.GET(s.router, "/getClaimable", s.claimDomain.ResolveClaimable)
	router.GET(s.router, "/checkAllowance", s.claimDomain.CheckAllowance)
	router.GET(s.router, "/getSession", s.claimDomain.GetSession)

	// These following APIs need authentication with Access Token.
	authRouter := s.router.Branch()
	authRouter.Before(middleware.Authenticate())
	{
		router.POST(authRouter, "/claim", s.claimDomain.Claim)
		router.POST(authRouter, "/invalidateCache", s.claimDomain.InvalidateCache)
		router.GET(authRouter, "/getHistory", s.claimDomain.GetHistory)
	}
}
