package domain

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/launchfee/backend/internal/chain/erc20"
	"github.com/launchfee/backend/internal/domain/claim"
	"github.com/launchfee/backend/internal/entity"
	"github.com/launchfee/backend/internal/model"
	"github.com/launchfee/backend/internal/repository"
	"github.com/launchfee/backend/internal/testutil"
	"github.com/launchfee/backend/pkg/xcontext"
)

var (
	testSettlement = common.HexToAddress("0x0000000000000000000000000000000000000FFF")
	testLaunchedA  = common.HexToAddress("0x0000000000000000000000000000000000000AAA")
	testRouter     = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	testWallet     = common.HexToAddress("0x00000000000000000000000000000000000000E1")
)

type fakeDiscovery struct {
	tokens []common.Address
	err    error
}

func (f *fakeDiscovery) DeployedTokens(ctx context.Context, wallet common.Address) ([]common.Address, error) {
	return f.tokens, f.err
}

type fakeFeeReader struct {
	mutex    sync.Mutex
	balances map[common.Address]*big.Int
	resolves int
}

func (f *fakeFeeReader) balance(token common.Address) *big.Int {
	if b, ok := f.balances[token]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (f *fakeFeeReader) AvailableFees(ctx context.Context, feeOwner, token common.Address) (*big.Int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.resolves++
	return f.balance(token), nil
}

func (f *fakeFeeReader) AvailableFeesBatch(
	ctx context.Context, feeOwner common.Address, tokens []common.Address,
) ([]*big.Int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	result := make([]*big.Int, len(tokens))
	for i, token := range tokens {
		result[i] = f.balance(token)
	}
	return result, nil
}

type fakeTokenInfoReader struct{}

func (fakeTokenInfoReader) TokenInfo(ctx context.Context, token common.Address) (erc20.TokenInfo, error) {
	symbol := "AAA"
	if token == testSettlement {
		symbol = "WETH"
	}
	return erc20.TokenInfo{Address: token, Symbol: symbol, Decimals: 18}, nil
}

type fakeAllowances struct {
	allowance *big.Int
}

func (f *fakeAllowances) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return new(big.Int).Set(f.allowance), nil
}

type claimDomainFixture struct {
	ctx         context.Context
	domain      ClaimDomain
	fees        *fakeFeeReader
	redisClient *testutil.InMemoryRedisClient
	repo        repository.ClaimTransactionRepository
}

func newClaimDomainFixture(t *testing.T) *claimDomainFixture {
	fees := &fakeFeeReader{balances: map[common.Address]*big.Int{
		testSettlement: big.NewInt(1500000000000000000),
		testLaunchedA:  big.NewInt(42),
	}}
	redisClient := testutil.NewInMemoryRedisClient()
	repo := repository.NewClaimTransactionRepository()

	resolver := claim.NewResolver(fees, fakeTokenInfoReader{}, testSettlement)
	gate := claim.NewGate(&fakeAllowances{allowance: big.NewInt(100)}, testRouter)
	discovery := &fakeDiscovery{tokens: []common.Address{testLaunchedA}}

	return &claimDomainFixture{
		ctx:    testutil.NewContext(t),
		domain: NewClaimDomain(repo, nil, resolver, gate, claim.NewSession(nil), discovery, redisClient),
		fees:   fees, redisClient: redisClient, repo: repo,
	}
}

func Test_claimDomain_ResolveClaimableCaches(t *testing.T) {
	f := newClaimDomainFixture(t)

	first, err := f.domain.ResolveClaimable(f.ctx, &model.ResolveClaimableRequest{
		WalletAddress: testWallet.Hex(),
	})
	require.NoError(t, err)
	require.Len(t, first.Rewards, 2)
	require.Equal(t, "WETH", first.Rewards[0].Symbol)
	require.Equal(t, "1500000000000000000", first.Rewards[0].Amount)
	require.Equal(t, []string{testSettlement.Hex(), testLaunchedA.Hex()}, first.ClaimableAddresses)
	resolvesAfterFirst := f.fees.resolves

	second, err := f.domain.ResolveClaimable(f.ctx, &model.ResolveClaimableRequest{
		WalletAddress: testWallet.Hex(),
	})
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, resolvesAfterFirst, f.fees.resolves)

	_, err = f.domain.ResolveClaimable(f.ctx, &model.ResolveClaimableRequest{
		WalletAddress: testWallet.Hex(),
		ForceRefresh:  true,
	})
	require.NoError(t, err)
	require.Greater(t, f.fees.resolves, resolvesAfterFirst)
}

func Test_claimDomain_InvalidateCache(t *testing.T) {
	f := newClaimDomainFixture(t)

	_, err := f.domain.ResolveClaimable(f.ctx, &model.ResolveClaimableRequest{
		WalletAddress: testWallet.Hex(),
	})
	require.NoError(t, err)
	resolvesAfterFirst := f.fees.resolves

	_, err = f.domain.InvalidateCache(f.ctx, &model.InvalidateCacheRequest{
		WalletAddress: testWallet.Hex(),
	})
	require.NoError(t, err)

	_, err = f.domain.ResolveClaimable(f.ctx, &model.ResolveClaimableRequest{
		WalletAddress: testWallet.Hex(),
	})
	require.NoError(t, err)
	require.Greater(t, f.fees.resolves, resolvesAfterFirst)
}

func Test_claimDomain_CheckAllowance(t *testing.T) {
	f := newClaimDomainFixture(t)

	resp, err := f.domain.CheckAllowance(f.ctx, &model.CheckAllowanceRequest{
		WalletAddress: testWallet.Hex(),
		TokenAddress:  testSettlement.Hex(),
		Amount:        "101",
	})
	require.NoError(t, err)
	require.Equal(t, "100", resp.Allowance)
	require.True(t, resp.NeedsApproval)

	resp, err = f.domain.CheckAllowance(f.ctx, &model.CheckAllowanceRequest{
		WalletAddress: testWallet.Hex(),
		TokenAddress:  testSettlement.Hex(),
		Amount:        "100",
	})
	require.NoError(t, err)
	require.False(t, resp.NeedsApproval)

	// Without an amount only a zero allowance needs approval.
	resp, err = f.domain.CheckAllowance(f.ctx, &model.CheckAllowanceRequest{
		WalletAddress: testWallet.Hex(),
		TokenAddress:  testSettlement.Hex(),
	})
	require.NoError(t, err)
	require.False(t, resp.NeedsApproval)

	_, err = f.domain.CheckAllowance(f.ctx, &model.CheckAllowanceRequest{
		WalletAddress: testWallet.Hex(),
		TokenAddress:  testSettlement.Hex(),
		Amount:        "not-a-number",
	})
	require.Error(t, err)
}

func Test_claimDomain_GetHistory(t *testing.T) {
	f := newClaimDomainFixture(t)

	walletKey := "0x00000000000000000000000000000000000000e1"
	require.NoError(t, f.repo.Create(f.ctx, &entity.ClaimTransaction{
		Base:          entity.Base{ID: uuid.NewString()},
		WalletAddress: walletKey,
		Type:          entity.ClaimTypeBatch,
		TxHash:        "0xccc1",
		Tokens:        []string{testSettlement.Hex()},
		Symbols:       []string{"WETH"},
		Amounts:       []string{"1500000000000000000"},
	}))

	ctx := xcontext.WithRequestWallet(f.ctx, testWallet.Hex())
	resp, err := f.domain.GetHistory(ctx, &model.GetHistoryRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 1, resp.Total)
	require.Len(t, resp.History, 1)
	require.Equal(t, "0xccc1", resp.History[0].TxHash)
	require.Equal(t, []string{"WETH"}, resp.History[0].Symbols)

	_, err = f.domain.GetHistory(ctx, &model.GetHistoryRequest{Limit: 101})
	require.Error(t, err)
}

func Test_claimDomain_GetSession(t *testing.T) {
	f := newClaimDomainFixture(t)

	resp, err := f.domain.GetSession(f.ctx, &model.GetSessionRequest{})
	require.NoError(t, err)
	require.Equal(t, "booting", resp.Status)
	require.Empty(t, resp.WalletAddress)
}
