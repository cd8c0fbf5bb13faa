package feerouter

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// MaxTaxBps is the hard cap on the claim tax. The owner can never set a
	// rate above it.
	MaxTaxBps = 500

	// TaxDenominator converts basis points to a fraction.
	TaxDenominator = 10000
)

var (
	ErrEmptyTokenList        = errors.New("feerouter: empty token list")
	ErrContractCaller        = errors.New("feerouter: caller must be an externally owned account")
	ErrDistributorNotAllowed = errors.New("feerouter: distributor not allowlisted")
	ErrNotContract           = errors.New("feerouter: distributor has no code")
	ErrPaused                = errors.New("feerouter: paused")
	ErrReentrantCall         = errors.New("feerouter: reentrant call")
	ErrTaxTooHigh            = errors.New("feerouter: tax rate exceeds hard cap")
	ErrInsufficientReserve   = errors.New("feerouter: insufficient rebate balance")
	ErrNotOwner              = errors.New("feerouter: caller is not the owner")
	ErrZeroTreasury          = errors.New("feerouter: treasury cannot be the zero address")
)

// Backend abstracts the EVM state the router touches. TransferFrom always
// spends the allowance the token owner granted to the router itself, exactly
// as the deployed contract does.
type Backend interface {
	BalanceOf(token, account common.Address) (*big.Int, error)
	Transfer(token, from, to common.Address, amount *big.Int) error
	TransferFrom(token, from, to common.Address, amount *big.Int) error
	HasCode(addr common.Address) bool
	CallClaim(distributor, feeOwner, token common.Address) error

	Snapshot() int
	RevertToSnapshot(id int)
}

// TokenClaim reports the outcome of one token inside a claim call.
type TokenClaim struct {
	Token   common.Address
	Claimed *big.Int
	Tax     *big.Int
}

// Router is the reference model of the deployed fee router. It mirrors the
// on-chain state machine so the claim flow and its invariants can be
// exercised without a node.
type Router struct {
	backend Backend

	self     common.Address
	owner    common.Address
	treasury common.Address

	taxBps  uint64
	allowed map[common.Address]bool
	reserve map[common.Address]*big.Int
	paused  bool
	entered bool

	events []Event
}

func New(backend Backend, self, owner, treasury common.Address, taxBps uint64) (*Router, error) {
	if treasury == (common.Address{}) {
		return nil, ErrZeroTreasury
	}

	if taxBps > MaxTaxBps {
		return nil, ErrTaxTooHigh
	}

	return &Router{
		backend:  backend,
		self:     self,
		owner:    owner,
		treasury: treasury,
		taxBps:   taxBps,
		allowed:  make(map[common.Address]bool),
		reserve:  make(map[common.Address]*big.Int),
	}, nil
}

// ClaimFor executes the claim-then-tax flow for caller against distributor.
// The call is atomic: if any distributor call or tax pull fails, every state
// change of this invocation is rolled back.
func (r *Router) ClaimFor(caller, distributor common.Address, tokens []common.Address) ([]TokenClaim, error) {
	if r.entered {
		return nil, ErrReentrantCall
	}
	r.entered = true
	defer func() { r.entered = false }()

	if r.paused {
		return nil, ErrPaused
	}

	if len(tokens) == 0 {
		return nil, ErrEmptyTokenList
	}

	if r.backend.HasCode(caller) {
		return nil, ErrContractCaller
	}

	if !r.allowed[distributor] {
		return nil, ErrDistributorNotAllowed
	}

	if !r.backend.HasCode(distributor) {
		return nil, ErrNotContract
	}

	snapshot := r.backend.Snapshot()
	claims, reserveDeltas, events, err := r.claimAll(caller, distributor, tokens)
	if err != nil {
		r.backend.RevertToSnapshot(snapshot)
		return nil, err
	}

	for token, delta := range reserveDeltas {
		r.addReserve(token, delta)
	}
	r.events = append(r.events, events...)

	return claims, nil
}

func (r *Router) claimAll(
	caller, distributor common.Address, tokens []common.Address,
) ([]TokenClaim, map[common.Address]*big.Int, []Event, error) {
	var claims []TokenClaim
	var events []Event
	reserveDeltas := make(map[common.Address]*big.Int)

	for _, token := range tokens {
		before, err := r.backend.BalanceOf(token, caller)
		if err != nil {
			return nil, nil, nil, err
		}

		if err := r.backend.CallClaim(distributor, caller, token); err != nil {
			return nil, nil, nil, fmt.Errorf("feerouter: distributor claim failed for %s: %w", token, err)
		}

		after, err := r.backend.BalanceOf(token, caller)
		if err != nil {
			return nil, nil, nil, err
		}

		claimed := new(big.Int).Sub(after, before)
		if claimed.Sign() <= 0 {
			// Nothing was paid out for this token, so there is nothing to tax.
			continue
		}

		tax := new(big.Int).Mul(claimed, new(big.Int).SetUint64(r.taxBps))
		tax.Div(tax, big.NewInt(TaxDenominator))

		if tax.Sign() > 0 {
			treasuryShare := new(big.Int).Div(tax, big.NewInt(2))
			rebateShare := new(big.Int).Sub(tax, treasuryShare)

			if treasuryShare.Sign() > 0 {
				if err := r.backend.TransferFrom(token, caller, r.treasury, treasuryShare); err != nil {
					return nil, nil, nil, err
				}
			}

			if err := r.backend.TransferFrom(token, caller, r.self, rebateShare); err != nil {
				return nil, nil, nil, err
			}

			delta, ok := reserveDeltas[token]
			if !ok {
				delta = new(big.Int)
				reserveDeltas[token] = delta
			}
			delta.Add(delta, rebateShare)
		}

		claims = append(claims, TokenClaim{Token: token, Claimed: claimed, Tax: tax})
		events = append(events, FeesClaimedEvent{
			User:        caller,
			Distributor: distributor,
			Token:       token,
			Claimed:     new(big.Int).Set(claimed),
			Tax:         new(big.Int).Set(tax),
		})
	}

	return claims, reserveDeltas, events, nil
}

func (r *Router) addReserve(token common.Address, delta *big.Int) {
	reserve, ok := r.reserve[token]
	if !ok {
		reserve = new(big.Int)
		r.reserve[token] = reserve
	}
	reserve.Add(reserve, delta)
}

// Address returns the router's own address.
func (r *Router) Address() common.Address {
	return r.self
}

func (r *Router) Owner() common.Address {
	return r.owner
}

func (r *Router) Treasury() common.Address {
	return r.treasury
}

func (r *Router) TaxBps() uint64 {
	return r.taxBps
}

func (r *Router) Paused() bool {
	return r.paused
}

func (r *Router) IsAllowedDistributor(distributor common.Address) bool {
	return r.allowed[distributor]
}

func (r *Router) RebateReserve(token common.Address) *big.Int {
	reserve, ok := r.reserve[token]
	if !ok {
		return new(big.Int)
	}

	return new(big.Int).Set(reserve)
}

// Events returns every event emitted so far, in emission order.
func (r *Router) Events() []Event {
	return r.events
}
