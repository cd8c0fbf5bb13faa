package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/launchfee/backend/config"
	"github.com/launchfee/backend/pkg/logger"
	"github.com/launchfee/backend/pkg/xcontext"
)

func NewConfigs() config.Configs {
	return config.Configs{
		Env: "testing",
		Auth: config.AuthConfigs{
			AccessTokenName: "access_token",
			TokenSecret:     "secret",
			TokenExpiration: time.Minute,
		},
		Chain: config.ChainConfigs{
			Chain:           "testchain",
			ChainID:         31337,
			FeeRouter:       "0x00000000000000000000000000000000000000A1",
			Distributor:     "0x00000000000000000000000000000000000000D1",
			SettlementToken: "0x0000000000000000000000000000000000000FFF",
			Multicall:       "0xcA11bde05977b3631167028862bE2a173976CA11",
			BlockTime:       1,
		},
		Claim: config.ClaimConfigs{
			ConfirmTimeout:     time.Second,
			SettlePollInterval: time.Millisecond,
			SettleMaxAttempts:  6,
			CacheTTL:           time.Minute,
			LedgerKeyPrefix:    "claim_ledger",
		},
	}
}

// NewContext builds a context carrying test configs, a silent logger, and an
// in-memory database, mirroring what the router seeds per request.
func NewContext(t *testing.T) context.Context {
	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, NewConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, NewTestDB(t))
	return ctx
}
