package domain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/launchfee/backend/internal/client"
	"github.com/launchfee/backend/internal/common"
	"github.com/launchfee/backend/internal/domain/claim"
	"github.com/launchfee/backend/internal/entity"
	"github.com/launchfee/backend/internal/model"
	"github.com/launchfee/backend/internal/repository"
	"github.com/launchfee/backend/pkg/errorx"
	"github.com/launchfee/backend/pkg/xcontext"
	"github.com/launchfee/backend/pkg/xredis"
)

const claimableCachePrefix = "claimable:"

type ClaimDomain interface {
	ResolveClaimable(context.Context, *model.ResolveClaimableRequest) (*model.TokensResponse, error)
	CheckAllowance(context.Context, *model.CheckAllowanceRequest) (*model.CheckAllowanceResponse, error)
	InvalidateCache(context.Context, *model.InvalidateCacheRequest) (*model.InvalidateCacheResponse, error)
	Claim(context.Context, *model.ClaimRequest) (*model.ClaimResponse, error)
	GetHistory(context.Context, *model.GetHistoryRequest) (*model.GetHistoryResponse, error)
	GetSession(context.Context, *model.GetSessionRequest) (*model.GetSessionResponse, error)
}

type claimDomain struct {
	claimRepo    repository.ClaimTransactionRepository
	orchestrator *claim.Orchestrator
	resolver     *claim.Resolver
	gate         *claim.Gate
	session      *claim.Session
	discovery    client.DiscoveryClient
	redisClient  xredis.Client
}

func NewClaimDomain(
	claimRepo repository.ClaimTransactionRepository,
	orchestrator *claim.Orchestrator,
	resolver *claim.Resolver,
	gate *claim.Gate,
	session *claim.Session,
	discovery client.DiscoveryClient,
	redisClient xredis.Client,
) *claimDomain {
	return &claimDomain{
		claimRepo:    claimRepo,
		orchestrator: orchestrator,
		resolver:     resolver,
		gate:         gate,
		session:      session,
		discovery:    discovery,
		redisClient:  redisClient,
	}
}

func (d *claimDomain) requestWallet(ctx context.Context, requested string) (ethcommon.Address, error) {
	if requested == "" {
		requested = xcontext.RequestWallet(ctx)
	}

	if !ethcommon.IsHexAddress(requested) {
		return ethcommon.Address{}, errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	return ethcommon.HexToAddress(requested), nil
}

func cacheKey(wallet ethcommon.Address) string {
	return claimableCachePrefix + strings.ToLower(wallet.Hex())
}

// ResolveClaimable serves the claimable reward set through a short-lived
// read-through cache. Within the TTL the cached payload is returned byte for
// byte; force_refresh bypasses the cache and overwrites it.
func (d *claimDomain) ResolveClaimable(
	ctx context.Context, req *model.ResolveClaimableRequest,
) (*model.TokensResponse, error) {
	wallet, err := d.requestWallet(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	if !req.ForceRefresh {
		cached, err := d.redisClient.Get(ctx, cacheKey(wallet))
		if err == nil {
			resp := &model.TokensResponse{}
			if err := json.Unmarshal([]byte(cached), resp); err == nil {
				return resp, nil
			}

			xcontext.Logger(ctx).Warnf("Invalid cached payload for %s, refreshing", wallet)
		} else if !errors.Is(err, xredis.ErrNotFound) {
			xcontext.Logger(ctx).Warnf("Cannot read claimable cache of %s: %v", wallet, err)
		}
	}

	resp, err := d.resolveFresh(ctx, wallet)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal claimable payload: %v", err)
		return nil, errorx.Unknown
	}

	ttl := xcontext.Configs(ctx).Claim.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	if err := d.redisClient.Set(ctx, cacheKey(wallet), string(payload), ttl); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache claimable payload of %s: %v", wallet, err)
	}

	return resp, nil
}

func (d *claimDomain) resolveFresh(ctx context.Context, wallet ethcommon.Address) (*model.TokensResponse, error) {
	candidates, err := d.discovery.DeployedTokens(ctx, wallet)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot discover tokens of %s: %v", wallet, err)
		return nil, errorx.New(errorx.Unavailable, "Cannot load deployed tokens")
	}

	resolved, err := d.resolver.Resolve(ctx, wallet, candidates)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve claimable of %s: %v", wallet, err)
		return nil, errorx.New(errorx.Unavailable, "Cannot resolve claimable balances")
	}

	return convertResolved(resolved), nil
}

func convertResolved(resolved *claim.Resolved) *model.TokensResponse {
	resp := &model.TokensResponse{
		Rewards:            []model.RewardAsset{},
		ClaimableAddresses: []string{},
	}

	for _, reward := range resolved.Rewards {
		resp.Rewards = append(resp.Rewards, model.RewardAsset(reward))
	}
	for _, addr := range resolved.ClaimableAddresses {
		resp.ClaimableAddresses = append(resp.ClaimableAddresses, addr.Hex())
	}

	return resp
}

func (d *claimDomain) CheckAllowance(
	ctx context.Context, req *model.CheckAllowanceRequest,
) (*model.CheckAllowanceResponse, error) {
	wallet, err := d.requestWallet(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	if !ethcommon.IsHexAddress(req.TokenAddress) {
		return nil, errorx.New(errorx.BadRequest, "Invalid token address")
	}

	var required *big.Int
	if req.Amount != "" {
		parsed, ok := new(big.Int).SetString(req.Amount, 10)
		if !ok || parsed.Sign() < 0 {
			return nil, errorx.New(errorx.BadRequest, "Invalid amount")
		}
		required = parsed
	}

	allowance, needs := d.gate.Check(ctx, wallet, ethcommon.HexToAddress(req.TokenAddress), required)
	return &model.CheckAllowanceResponse{
		Allowance:     allowance.String(),
		NeedsApproval: needs,
	}, nil
}

func (d *claimDomain) InvalidateCache(
	ctx context.Context, req *model.InvalidateCacheRequest,
) (*model.InvalidateCacheResponse, error) {
	wallet, err := d.requestWallet(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	if err := d.redisClient.Del(ctx, cacheKey(wallet)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot invalidate claimable cache of %s: %v", wallet, err)
		return nil, errorx.Unknown
	}

	return &model.InvalidateCacheResponse{}, nil
}

// Claim runs the orchestrated claim flow for the authenticated wallet and
// records the confirmed transaction.
func (d *claimDomain) Claim(ctx context.Context, req *model.ClaimRequest) (*model.ClaimResponse, error) {
	wallet, err := d.requestWallet(ctx, "")
	if err != nil {
		return nil, err
	}

	candidates, err := d.discovery.DeployedTokens(ctx, wallet)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot discover tokens of %s: %v", wallet, err)
		return nil, errorx.New(errorx.Unavailable, "Cannot load deployed tokens")
	}

	result, err := d.orchestrator.Claim(ctx, wallet, candidates)
	if err != nil {
		return nil, convertClaimError(ctx, err)
	}

	entryType := entity.ClaimTypeBatch
	if len(result.Rewards) == 1 {
		entryType = entity.ClaimTypeSingle
	}

	record := &entity.ClaimTransaction{
		Base:          entity.Base{ID: uuid.NewString()},
		WalletAddress: strings.ToLower(wallet.Hex()),
		Type:          entryType,
		TxHash:        result.TxHash.Hex(),
	}
	for _, reward := range result.Rewards {
		record.Tokens = append(record.Tokens, reward.Address)
		record.Symbols = append(record.Symbols, reward.Symbol)
		record.Amounts = append(record.Amounts, reward.Amount)
	}

	if err := d.claimRepo.Create(ctx, record); err != nil {
		// The chain already confirmed the claim; a failed record is logged
		// but not surfaced as a claim failure.
		xcontext.Logger(ctx).Errorf("Cannot record claim %s: %v", result.TxHash, err)
	}

	if err := d.redisClient.Del(ctx, cacheKey(wallet)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate claimable cache of %s: %v", wallet, err)
	}

	resp := &model.ClaimResponse{TxHash: result.TxHash.Hex(), Rewards: []model.RewardAsset{}}
	for _, reward := range result.Rewards {
		resp.Rewards = append(resp.Rewards, model.RewardAsset(reward))
	}
	if result.Remaining != nil {
		resp.Remaining = *convertResolved(result.Remaining)
	}

	return resp, nil
}

func convertClaimError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, claim.ErrFlowInFlight):
		return errorx.New(errorx.ClaimInFlight, "A claim is already in progress")
	case errors.Is(err, claim.ErrNothingToClaim):
		return errorx.New(errorx.NothingToClaim, "No claimable balance")
	case claim.IsUserRejected(err):
		countClaimFailure("user_rejected")
		return errorx.New(errorx.UserRejected, "Transaction rejected in wallet")
	case errors.Is(err, claim.ErrConfirmTimeout):
		countClaimFailure("confirm_timeout")
		return errorx.New(errorx.ConfirmTimeout, "Transaction not confirmed in time, please retry")
	case errors.Is(err, claim.ErrVerificationFailed):
		countClaimFailure("verification_failed")
		return errorx.New(errorx.VerificationFailed, "Claim confirmed but no reward transfer found")
	case errors.Is(err, claim.ErrClaimReverted):
		countClaimFailure("on_chain_revert")
		return errorx.New(errorx.OnChainRevert, "Claim transaction reverted on chain")
	default:
		countClaimFailure("unknown")
		xcontext.Logger(ctx).Errorf("Cannot run claim flow: %v", err)
		return errorx.Unknown
	}
}

func countClaimFailure(reason string) {
	common.PromCounters[common.ClaimFlowFailure].WithLabelValues(reason).Inc()
}

func (d *claimDomain) GetHistory(
	ctx context.Context, req *model.GetHistoryRequest,
) (*model.GetHistoryResponse, error) {
	wallet, err := d.requestWallet(ctx, "")
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (100)")
	}

	walletKey := strings.ToLower(wallet.Hex())
	total, err := d.claimRepo.Count(ctx, walletKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count claim history: %v", err)
		return nil, errorx.Unknown
	}

	records, err := d.claimRepo.GetByWallet(ctx, walletKey, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get claim history: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetHistoryResponse{Total: total, History: []model.ClaimHistoryEntry{}}
	for _, record := range records {
		resp.History = append(resp.History, model.ClaimHistoryEntry{
			ID:        record.ID,
			Type:      string(record.Type),
			Tokens:    record.Tokens,
			Symbols:   record.Symbols,
			Amounts:   record.Amounts,
			TxHash:    record.TxHash,
			CreatedAt: record.CreatedAt.Format(time.RFC3339),
		})
	}

	return resp, nil
}

func (d *claimDomain) GetSession(
	ctx context.Context, req *model.GetSessionRequest,
) (*model.GetSessionResponse, error) {
	resp := &model.GetSessionResponse{Status: string(d.session.Status())}
	if wallet := d.session.Wallet(); wallet != (ethcommon.Address{}) {
		resp.WalletAddress = wallet.Hex()
	}

	return resp, nil
}
