package claim

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/launchfee/backend/internal/chain/erc20"
)

// SettlementTransferTotal sums every Transfer on the settlement asset that
// credited the wallet inside the receipt. A confirmed receipt whose total is
// not strictly positive means the claim silently did nothing and must be
// treated as a failure.
func SettlementTransferTotal(receipt *ethtypes.Receipt, settlement, wallet common.Address) *big.Int {
	total := new(big.Int)
	for _, log := range receipt.Logs {
		if log.Address != settlement {
			continue
		}

		amount, ok := erc20.TransferAmount(log, wallet)
		if !ok {
			continue
		}
		total.Add(total, amount)
	}

	return total
}
