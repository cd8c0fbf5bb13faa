package distributor

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/launchfee/backend/internal/chain/multicall"
)

var (
	contractAddr = common.HexToAddress("0x00000000000000000000000000000000000000D1")
	feeOwner     = common.HexToAddress("0x00000000000000000000000000000000000000E1")
)

type fakeBatch struct {
	results []multicall.Result
	err     error
	calls   []multicall.Call
}

func (b *fakeBatch) Aggregate(ctx context.Context, calls []multicall.Call) ([]multicall.Result, error) {
	b.calls = calls
	return b.results, b.err
}

type fakeCallClient struct {
	out []byte
	err error
}

func (c *fakeCallClient) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.out, c.err
}

func TestAvailableFees(t *testing.T) {
	amount := big.NewInt(987654321)
	client := &fakeCallClient{out: common.LeftPadBytes(amount.Bytes(), 32)}
	reader := NewReader(client, nil, contractAddr)

	got, err := reader.AvailableFees(context.Background(), feeOwner, contractAddr)
	require.NoError(t, err)
	require.Equal(t, 0, got.Cmp(amount))
}

func TestAvailableFeesBatch(t *testing.T) {
	tokens := []common.Address{
		common.HexToAddress("0x0000000000000000000000000000000000000AAA"),
		common.HexToAddress("0x0000000000000000000000000000000000000BBB"),
		common.HexToAddress("0x0000000000000000000000000000000000000CCC"),
	}

	batch := &fakeBatch{results: []multicall.Result{
		{Success: true, ReturnData: common.LeftPadBytes(big.NewInt(100).Bytes(), 32)},
		{Success: false},
		{Success: true, ReturnData: common.LeftPadBytes(big.NewInt(300).Bytes(), 32)},
	}}
	reader := NewReader(nil, batch, contractAddr)

	balances, err := reader.AvailableFeesBatch(context.Background(), feeOwner, tokens)
	require.NoError(t, err)
	require.Len(t, balances, 3)

	require.EqualValues(t, 100, balances[0].Int64())
	require.Nil(t, balances[1])
	require.EqualValues(t, 300, balances[2].Int64())

	// Every read targets the distributor itself.
	require.Len(t, batch.calls, 3)
	for i, call := range batch.calls {
		require.Equal(t, contractAddr, call.Target)
		require.Equal(t, PackAvailableFees(feeOwner, tokens[i]), call.CallData)
	}
}

func TestAvailableFeesBatchError(t *testing.T) {
	batch := &fakeBatch{err: errors.New("rpc down")}
	reader := NewReader(nil, batch, contractAddr)

	_, err := reader.AvailableFeesBatch(context.Background(), feeOwner, []common.Address{contractAddr})
	require.Error(t, err)
}

func TestPackClaim(t *testing.T) {
	token := common.HexToAddress("0x0000000000000000000000000000000000000AAA")
	data := PackClaim(feeOwner, token)
	require.Len(t, data, 68)
	require.Equal(t, feeOwner, common.BytesToAddress(data[4:36]))
	require.Equal(t, token, common.BytesToAddress(data[36:68]))
}
