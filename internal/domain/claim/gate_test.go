package claim

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/launchfee/backend/internal/testutil"
)

type fakeAllowanceReader struct {
	allowance *big.Int
	err       error
}

func (r *fakeAllowanceReader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	if r.err != nil {
		return nil, r.err
	}

	return new(big.Int).Set(r.allowance), nil
}

func TestNeedsApproval(t *testing.T) {
	testcases := []struct {
		name      string
		allowance *big.Int
		required  *big.Int
		expected  bool
	}{
		{name: "zero allowance no required", allowance: big.NewInt(0), required: nil, expected: true},
		{name: "nonzero allowance no required", allowance: big.NewInt(1), required: nil, expected: false},
		{name: "allowance equals required", allowance: big.NewInt(100), required: big.NewInt(100), expected: false},
		{name: "allowance one short", allowance: big.NewInt(99), required: big.NewInt(100), expected: true},
		{name: "allowance above required", allowance: big.NewInt(101), required: big.NewInt(100), expected: false},
		{name: "zero required zero allowance", allowance: big.NewInt(0), required: big.NewInt(0), expected: false},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, NeedsApproval(tc.allowance, tc.required))
		})
	}
}

func TestGateCheck(t *testing.T) {
	ctx := testutil.NewContext(t)
	owner := common.HexToAddress("0x00000000000000000000000000000000000000E1")
	token := common.HexToAddress("0x0000000000000000000000000000000000000AAA")
	router := common.HexToAddress("0x00000000000000000000000000000000000000A1")

	t.Run("returns chain allowance", func(t *testing.T) {
		gate := NewGate(&fakeAllowanceReader{allowance: big.NewInt(42)}, router)
		allowance, needs := gate.Check(ctx, owner, token, nil)
		require.EqualValues(t, 42, allowance.Int64())
		require.False(t, needs)
	})

	t.Run("read error means approval needed", func(t *testing.T) {
		gate := NewGate(&fakeAllowanceReader{err: errors.New("rpc down")}, router)
		allowance, needs := gate.Check(ctx, owner, token, nil)
		require.EqualValues(t, 0, allowance.Int64())
		require.True(t, needs)
	})
}
