package claim

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/launchfee/backend/internal/chain/erc20"
	"github.com/launchfee/backend/internal/testutil"
)

var (
	settlementToken = common.HexToAddress("0x0000000000000000000000000000000000000FFF")
	launchTokenA    = common.HexToAddress("0x0000000000000000000000000000000000000AAA")
	launchTokenB    = common.HexToAddress("0x0000000000000000000000000000000000000BBB")
	walletAddr      = common.HexToAddress("0x00000000000000000000000000000000000000E1")
)

// fakeFees is an in-memory distributor balance table.
type fakeFees struct {
	mutex    sync.Mutex
	balances map[common.Address]*big.Int
	failing  map[common.Address]bool

	directErr error
	batchErr  error
	resolves  int
}

func newFakeFees() *fakeFees {
	return &fakeFees{
		balances: make(map[common.Address]*big.Int),
		failing:  make(map[common.Address]bool),
	}
}

func (f *fakeFees) setBalance(token common.Address, amount *big.Int) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.balances[token] = new(big.Int).Set(amount)
}

func (f *fakeFees) zeroAll() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.zeroAllLocked()
}

// zeroAllLocked requires f.mutex to be held by the caller.
func (f *fakeFees) zeroAllLocked() {
	for token := range f.balances {
		f.balances[token] = new(big.Int)
	}
}

func (f *fakeFees) AvailableFees(ctx context.Context, feeOwner, token common.Address) (*big.Int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.resolves++
	if f.directErr != nil {
		return nil, f.directErr
	}

	balance, ok := f.balances[token]
	if !ok {
		return new(big.Int), nil
	}

	return new(big.Int).Set(balance), nil
}

func (f *fakeFees) AvailableFeesBatch(ctx context.Context, feeOwner common.Address, tokens []common.Address) ([]*big.Int, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.batchErr != nil {
		return nil, f.batchErr
	}

	results := make([]*big.Int, len(tokens))
	for i, token := range tokens {
		if f.failing[token] {
			continue
		}

		if balance, ok := f.balances[token]; ok {
			results[i] = new(big.Int).Set(balance)
		} else {
			results[i] = new(big.Int)
		}
	}

	return results, nil
}

type fakeTokenInfo struct {
	symbols map[common.Address]string
	err     error
}

func (f *fakeTokenInfo) TokenInfo(ctx context.Context, token common.Address) (erc20.TokenInfo, error) {
	if f.err != nil {
		return erc20.TokenInfo{}, f.err
	}

	symbol, ok := f.symbols[token]
	if !ok {
		symbol = "TKN"
	}

	return erc20.TokenInfo{Address: token, Symbol: symbol, Decimals: 18}, nil
}

func newTestResolver(fees *fakeFees) *Resolver {
	info := &fakeTokenInfo{symbols: map[common.Address]string{
		settlementToken: "WETH",
		launchTokenA:    "AAA",
		launchTokenB:    "BBB",
	}}

	return NewResolver(fees, info, settlementToken)
}

func TestResolveOnlyPositiveBalances(t *testing.T) {
	ctx := testutil.NewContext(t)

	fees := newFakeFees()
	fees.setBalance(settlementToken, big.NewInt(15e17))
	fees.setBalance(launchTokenA, big.NewInt(0))
	fees.setBalance(launchTokenB, big.NewInt(100))

	resolver := newTestResolver(fees)
	resolved, err := resolver.Resolve(ctx, walletAddr, []common.Address{launchTokenA, launchTokenB})
	require.NoError(t, err)

	require.Len(t, resolved.Rewards, 2)
	require.Equal(t, []common.Address{settlementToken, launchTokenB}, resolved.ClaimableAddresses)

	require.Equal(t, "WETH", resolved.Rewards[0].Symbol)
	require.Equal(t, "1500000000000000000", resolved.Rewards[0].Amount)
	require.Equal(t, "1.5000", resolved.Rewards[0].Display)

	require.Equal(t, "BBB", resolved.Rewards[1].Symbol)
	require.Equal(t, "100", resolved.Rewards[1].Amount)

	// Every claimable address backs a positive reward.
	for i, reward := range resolved.Rewards {
		require.Equal(t, resolved.ClaimableAddresses[i].Hex(), reward.Address)
		require.NotEqual(t, "0", reward.Amount)
	}
}

func TestResolveFailedReadCountsAsZero(t *testing.T) {
	ctx := testutil.NewContext(t)

	fees := newFakeFees()
	fees.setBalance(launchTokenA, big.NewInt(100))
	fees.setBalance(launchTokenB, big.NewInt(200))
	fees.failing[launchTokenA] = true

	resolver := newTestResolver(fees)
	resolved, err := resolver.Resolve(ctx, walletAddr, []common.Address{launchTokenA, launchTokenB})
	require.NoError(t, err)

	require.Len(t, resolved.Rewards, 1)
	require.Equal(t, launchTokenB.Hex(), resolved.Rewards[0].Address)
}

func TestResolveSettlementReadErrorDegrades(t *testing.T) {
	ctx := testutil.NewContext(t)

	fees := newFakeFees()
	fees.setBalance(launchTokenA, big.NewInt(100))
	fees.directErr = errors.New("rpc down")

	resolver := newTestResolver(fees)
	resolved, err := resolver.Resolve(ctx, walletAddr, []common.Address{launchTokenA})
	require.NoError(t, err)

	require.Len(t, resolved.Rewards, 1)
	require.Equal(t, launchTokenA.Hex(), resolved.Rewards[0].Address)
}

func TestResolveBatchErrorFails(t *testing.T) {
	ctx := testutil.NewContext(t)

	fees := newFakeFees()
	fees.batchErr = errors.New("aggregate reverted")

	resolver := newTestResolver(fees)
	_, err := resolver.Resolve(ctx, walletAddr, []common.Address{launchTokenA})
	require.Error(t, err)
}

func TestResolveSkipsSettlementInCandidates(t *testing.T) {
	ctx := testutil.NewContext(t)

	fees := newFakeFees()
	fees.setBalance(settlementToken, big.NewInt(500))

	resolver := newTestResolver(fees)
	resolved, err := resolver.Resolve(ctx, walletAddr, []common.Address{settlementToken})
	require.NoError(t, err)

	// The settlement asset appears once even when listed as a candidate.
	require.Len(t, resolved.Rewards, 1)
	require.Equal(t, settlementToken.Hex(), resolved.Rewards[0].Address)
}

func TestResolveTokenInfoErrorDegrades(t *testing.T) {
	ctx := testutil.NewContext(t)

	fees := newFakeFees()
	fees.setBalance(launchTokenA, big.NewInt(100))

	resolver := NewResolver(fees, &fakeTokenInfo{err: errors.New("no symbol")}, settlementToken)
	resolved, err := resolver.Resolve(ctx, walletAddr, []common.Address{launchTokenA})
	require.NoError(t, err)

	require.Len(t, resolved.Rewards, 1)
	require.EqualValues(t, 18, resolved.Rewards[0].Decimals)
	require.NotEmpty(t, resolved.Rewards[0].Symbol)
}

func TestResolveEmptySymbolDegrades(t *testing.T) {
	ctx := testutil.NewContext(t)

	fees := newFakeFees()
	fees.setBalance(launchTokenA, big.NewInt(100))

	// A token whose symbol payload does not decode reports an empty string.
	info := &fakeTokenInfo{symbols: map[common.Address]string{launchTokenA: ""}}
	resolver := NewResolver(fees, info, settlementToken)
	resolved, err := resolver.Resolve(ctx, walletAddr, []common.Address{launchTokenA})
	require.NoError(t, err)

	require.Len(t, resolved.Rewards, 1)
	require.Equal(t, shortAddress(launchTokenA), resolved.Rewards[0].Symbol)
}
