package claim

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/launchfee/backend/pkg/xcontext"
)

// AllowanceReader reads ERC-20 allowances from the chain.
type AllowanceReader interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
}

// Gate decides whether an approval transaction must precede a claim. The
// spender is always the fee router.
type Gate struct {
	reader AllowanceReader
	router common.Address
}

func NewGate(reader AllowanceReader, router common.Address) *Gate {
	return &Gate{reader: reader, router: router}
}

// Check returns the current allowance of owner toward the router on token
// and whether an approval is needed. With a known required amount, approval
// is needed when the allowance is strictly below it; without one, only a
// zero allowance needs approval. A failed read always reports approval
// needed, never the other way around.
func (g *Gate) Check(ctx context.Context, owner, token common.Address, required *big.Int) (*big.Int, bool) {
	allowance, err := g.reader.Allowance(ctx, token, owner, g.router)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot read allowance of %s on %s: %v", owner, token, err)
		return big.NewInt(0), true
	}

	return allowance, NeedsApproval(allowance, required)
}

// NeedsApproval is the pure comparison behind Check.
func NeedsApproval(allowance, required *big.Int) bool {
	if required != nil {
		return allowance.Cmp(required) < 0
	}

	return allowance.Sign() == 0
}
