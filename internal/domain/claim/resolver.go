package claim

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/launchfee/backend/internal/chain/erc20"
	"github.com/launchfee/backend/pkg/xcontext"
)

// RewardAsset is one claimable balance as shown to the user. Amount carries
// the raw base-unit integer as a decimal string, Display the formatted form.
type RewardAsset struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Amount   string `json:"amount"`
	Display  string `json:"display"`
}

// Resolved is the output of one balance resolution. ClaimableAddresses backs
// exactly the positive entries of Rewards; passing a zero-balance address to
// the distributor makes the whole claim revert.
type Resolved struct {
	Rewards            []RewardAsset    `json:"rewards"`
	ClaimableAddresses []common.Address `json:"claimable_addresses"`
}

// FeeReader reads per-owner unclaimed fees from the distributor.
type FeeReader interface {
	AvailableFees(ctx context.Context, feeOwner, token common.Address) (*big.Int, error)
	AvailableFeesBatch(ctx context.Context, feeOwner common.Address, tokens []common.Address) ([]*big.Int, error)
}

// TokenInfoReader reads ERC-20 display metadata.
type TokenInfoReader interface {
	TokenInfo(ctx context.Context, token common.Address) (erc20.TokenInfo, error)
}

// Resolver determines the current claimable reward set of a wallet. It only
// reads; claiming is the orchestrator's job.
type Resolver struct {
	fees       FeeReader
	tokens     TokenInfoReader
	settlement common.Address

	infoMutex sync.Mutex
	infoCache map[common.Address]erc20.TokenInfo
}

func NewResolver(fees FeeReader, tokens TokenInfoReader, settlement common.Address) *Resolver {
	return &Resolver{
		fees:       fees,
		tokens:     tokens,
		settlement: settlement,
		infoCache:  make(map[common.Address]erc20.TokenInfo),
	}
}

// Resolve reads the claimable balance of the settlement asset plus every
// candidate token. The settlement asset is read directly; candidates go
// through the batching contract. A failed read counts as zero for that item
// so one bad token cannot sink the whole resolution. Only strictly positive
// balances make it into the result.
func (r *Resolver) Resolve(ctx context.Context, feeOwner common.Address, candidates []common.Address) (*Resolved, error) {
	resolved := &Resolved{
		Rewards:            []RewardAsset{},
		ClaimableAddresses: []common.Address{},
	}

	settlementBalance, err := r.fees.AvailableFees(ctx, feeOwner, r.settlement)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot read settlement fees of %s: %v", feeOwner, err)
		settlementBalance = new(big.Int)
	}

	if settlementBalance.Sign() > 0 {
		r.appendReward(ctx, resolved, r.settlement, settlementBalance)
	}

	others := make([]common.Address, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate != r.settlement {
			others = append(others, candidate)
		}
	}

	if len(others) == 0 {
		return resolved, nil
	}

	balances, err := r.fees.AvailableFeesBatch(ctx, feeOwner, others)
	if err != nil {
		return nil, err
	}

	for i, balance := range balances {
		if balance == nil || balance.Sign() <= 0 {
			continue
		}

		r.appendReward(ctx, resolved, others[i], balance)
	}

	return resolved, nil
}

func (r *Resolver) appendReward(ctx context.Context, resolved *Resolved, token common.Address, balance *big.Int) {
	info := r.tokenInfo(ctx, token)
	resolved.Rewards = append(resolved.Rewards, RewardAsset{
		Address:  token.Hex(),
		Symbol:   info.Symbol,
		Decimals: info.Decimals,
		Amount:   balance.String(),
		Display:  FormatAmount(balance, info.Decimals),
	})
	resolved.ClaimableAddresses = append(resolved.ClaimableAddresses, token)
}

// tokenInfo memoizes symbol/decimals per token. Metadata never changes, so a
// failed lookup degrades to 18-decimal defaults instead of failing the
// resolution.
func (r *Resolver) tokenInfo(ctx context.Context, token common.Address) erc20.TokenInfo {
	r.infoMutex.Lock()
	info, ok := r.infoCache[token]
	r.infoMutex.Unlock()
	if ok {
		return info
	}

	info, err := r.tokens.TokenInfo(ctx, token)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot read token info of %s: %v", token, err)
		return erc20.TokenInfo{Address: token, Symbol: shortAddress(token), Decimals: 18}
	}

	// Tokens with a malformed symbol payload decode to the empty string.
	if info.Symbol == "" {
		info.Symbol = shortAddress(token)
	}

	r.infoMutex.Lock()
	r.infoCache[token] = info
	r.infoMutex.Unlock()

	return info
}

func shortAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}
