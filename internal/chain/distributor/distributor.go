package distributor

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/launchfee/backend/internal/chain/multicall"
)

// Function selectors of the distributor methods we touch. availableFees is
// the per-owner unclaimed fee view, claim pays fees out to their owner.
var (
	availableFeesSelector = crypto.Keccak256([]byte("availableFees(address,address)"))[:4]
	claimSelector         = crypto.Keccak256([]byte("claim(address,address)"))[:4]
)

func PackAvailableFees(feeOwner, token common.Address) []byte {
	data := make([]byte, 0, 4+64)
	data = append(data, availableFeesSelector...)
	data = append(data, common.LeftPadBytes(feeOwner.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(token.Bytes(), 32)...)
	return data
}

func PackClaim(feeOwner, token common.Address) []byte {
	data := make([]byte, 0, 4+64)
	data = append(data, claimSelector...)
	data = append(data, common.LeftPadBytes(feeOwner.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(token.Bytes(), 32)...)
	return data
}

// CallClient is the read-only contract call surface the reader needs.
type CallClient interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// BatchCaller batches many reads into one request.
type BatchCaller interface {
	Aggregate(ctx context.Context, calls []multicall.Call) ([]multicall.Result, error)
}

type Reader struct {
	client   CallClient
	batch    BatchCaller
	contract common.Address
}

func NewReader(client CallClient, batch BatchCaller, contract common.Address) *Reader {
	return &Reader{client: client, batch: batch, contract: contract}
}

func (r *Reader) Address() common.Address {
	return r.contract
}

// AvailableFees reads the unclaimed fee balance of one token directly.
func (r *Reader) AvailableFees(ctx context.Context, feeOwner, token common.Address) (*big.Int, error) {
	out, err := r.client.CallContract(ctx, r.contract, PackAvailableFees(feeOwner, token))
	if err != nil {
		return nil, err
	}
	if len(out) < 32 {
		return new(big.Int), nil
	}

	return new(big.Int).SetBytes(out[:32]), nil
}

// AvailableFeesBatch reads the unclaimed fee balance of many tokens in one
// multicall round trip. The result slice matches the token slice by index; a
// token whose read failed comes back as nil so the caller can treat it as
// zero instead of failing the whole sweep.
func (r *Reader) AvailableFeesBatch(ctx context.Context, feeOwner common.Address, tokens []common.Address) ([]*big.Int, error) {
	calls := make([]multicall.Call, len(tokens))
	for i, token := range tokens {
		calls[i] = multicall.Call{
			Target:   r.contract,
			CallData: PackAvailableFees(feeOwner, token),
		}
	}

	results, err := r.batch.Aggregate(ctx, calls)
	if err != nil {
		return nil, err
	}

	balances := make([]*big.Int, len(tokens))
	for i, result := range results {
		if !result.Success || len(result.ReturnData) < 32 {
			continue
		}
		balances[i] = new(big.Int).SetBytes(result.ReturnData[:32])
	}

	return balances, nil
}
