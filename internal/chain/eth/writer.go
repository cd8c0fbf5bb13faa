package eth

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	routerabi "github.com/launchfee/backend/contract/feerouter"
	"github.com/launchfee/backend/internal/chain/distributor"
	"github.com/launchfee/backend/internal/chain/erc20"
)

const defaultReceiptPollInterval = 2 * time.Second

// Writer broadcasts the claim flow's transactions from the signer's account.
type Writer struct {
	client       EthClient
	signer       Signer
	router       common.Address
	distributor  common.Address
	pollInterval time.Duration
}

func NewWriter(client EthClient, signer Signer, router, distributorAddr common.Address, blockTime time.Duration) *Writer {
	if blockTime <= 0 {
		blockTime = defaultReceiptPollInterval
	}

	return &Writer{
		client:       client,
		signer:       signer,
		router:       router,
		distributor:  distributorAddr,
		pollInterval: blockTime,
	}
}

func (w *Writer) Address() common.Address {
	return w.signer.Address()
}

// Approve grants the router an unlimited allowance on token.
func (w *Writer) Approve(ctx context.Context, token common.Address) (common.Hash, error) {
	return w.signer.SendTransaction(ctx, TxParams{
		To:   token,
		Data: erc20.PackApprove(w.router, erc20.MaxUint256),
	})
}

// ClaimFees routes a batch claim of tokens through the fee router.
func (w *Writer) ClaimFees(ctx context.Context, tokens []common.Address) (common.Hash, error) {
	data, err := routerabi.PackClaimFees(w.distributor, tokens)
	if err != nil {
		return common.Hash{}, err
	}

	return w.signer.SendTransaction(ctx, TxParams{To: w.router, Data: data})
}

// ClaimDirect claims one token straight from the distributor, bypassing the
// router. Used for the settlement asset, which the distributor pays out
// without a router tax.
func (w *Writer) ClaimDirect(ctx context.Context, token common.Address) (common.Hash, error) {
	return w.signer.SendTransaction(ctx, TxParams{
		To:   w.distributor,
		Data: distributor.PackClaim(w.signer.Address(), token),
	})
}

// WaitMined polls for the receipt of txHash until it lands or ctx expires.
func (w *Writer) WaitMined(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.client.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// IsContract reports whether addr has deployed code.
func (w *Writer) IsContract(ctx context.Context, addr common.Address) (bool, error) {
	code, err := w.client.CodeAt(ctx, addr)
	if err != nil {
		return false, err
	}

	return len(code) > 0, nil
}
