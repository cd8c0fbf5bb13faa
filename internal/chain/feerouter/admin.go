package feerouter

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Admin operations. Each is owner-gated and emits an event on success.

func (r *Router) SetTaxBps(caller common.Address, bps uint64) error {
	if caller != r.owner {
		return ErrNotOwner
	}

	if bps > MaxTaxBps {
		return ErrTaxTooHigh
	}

	old := r.taxBps
	r.taxBps = bps
	r.events = append(r.events, TaxRateUpdatedEvent{OldBps: old, NewBps: bps})
	return nil
}

func (r *Router) SetDistributor(caller, distributor common.Address, allowed bool) error {
	if caller != r.owner {
		return ErrNotOwner
	}

	r.allowed[distributor] = allowed
	r.events = append(r.events, DistributorUpdatedEvent{Distributor: distributor, Allowed: allowed})
	return nil
}

func (r *Router) WithdrawRebate(caller, token, to common.Address, amount *big.Int) error {
	if caller != r.owner {
		return ErrNotOwner
	}

	reserve, ok := r.reserve[token]
	if !ok || reserve.Cmp(amount) < 0 {
		return ErrInsufficientReserve
	}

	if err := r.backend.Transfer(token, r.self, to, amount); err != nil {
		return err
	}

	reserve.Sub(reserve, amount)
	r.events = append(r.events, RebateWithdrawnEvent{Token: token, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

func (r *Router) Pause(caller common.Address) error {
	if caller != r.owner {
		return ErrNotOwner
	}

	r.paused = true
	r.events = append(r.events, PausedEvent{Paused: true})
	return nil
}

func (r *Router) Unpause(caller common.Address) error {
	if caller != r.owner {
		return ErrNotOwner
	}

	r.paused = false
	r.events = append(r.events, PausedEvent{Paused: false})
	return nil
}
