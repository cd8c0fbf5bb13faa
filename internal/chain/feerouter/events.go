package feerouter

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type Event interface {
	event()
}

// FeesClaimedEvent is emitted once per token that paid out a positive amount.
type FeesClaimedEvent struct {
	User        common.Address
	Distributor common.Address
	Token       common.Address
	Claimed     *big.Int
	Tax         *big.Int
}

type TaxRateUpdatedEvent struct {
	OldBps uint64
	NewBps uint64
}

type DistributorUpdatedEvent struct {
	Distributor common.Address
	Allowed     bool
}

type RebateWithdrawnEvent struct {
	Token  common.Address
	To     common.Address
	Amount *big.Int
}

type PausedEvent struct {
	Paused bool
}

func (FeesClaimedEvent) event()        {}
func (TaxRateUpdatedEvent) event()     {}
func (DistributorUpdatedEvent) event() {}
func (RebateWithdrawnEvent) event()    {}
func (PausedEvent) event()             {}
