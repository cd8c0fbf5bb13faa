package feerouter

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestPackClaimFees(t *testing.T) {
	distributor := common.HexToAddress("0x00000000000000000000000000000000000000D1")
	tokens := []common.Address{
		common.HexToAddress("0x0000000000000000000000000000000000000AAA"),
		common.HexToAddress("0x0000000000000000000000000000000000000BBB"),
	}

	data, err := PackClaimFees(distributor, tokens)
	require.NoError(t, err)
	require.Equal(t, parsedABI.Methods["claimFees"].ID, data[:4])

	// distributor, offset, length, token0, token1
	require.Len(t, data, 4+5*32)
	require.Equal(t, distributor, common.BytesToAddress(data[4:36]))
	require.EqualValues(t, 2, new(big.Int).SetBytes(data[68:100]).Int64())
}

func TestParseFeesClaimed(t *testing.T) {
	user := common.HexToAddress("0x00000000000000000000000000000000000000E1")
	distributor := common.HexToAddress("0x00000000000000000000000000000000000000D1")
	token := common.HexToAddress("0x0000000000000000000000000000000000000AAA")
	claimed := big.NewInt(100000)
	tax := big.NewInt(5000)

	data := append(
		common.LeftPadBytes(claimed.Bytes(), 32),
		common.LeftPadBytes(tax.Bytes(), 32)...,
	)

	log := &ethtypes.Log{
		Topics: []common.Hash{
			FeesClaimedTopic,
			common.BytesToHash(user.Bytes()),
			common.BytesToHash(distributor.Bytes()),
			common.BytesToHash(token.Bytes()),
		},
		Data: data,
	}

	parsed, err := ParseFeesClaimed(log)
	require.NoError(t, err)
	require.Equal(t, user, parsed.User)
	require.Equal(t, distributor, parsed.Distributor)
	require.Equal(t, token, parsed.Token)
	require.Equal(t, 0, parsed.Claimed.Cmp(claimed))
	require.Equal(t, 0, parsed.Tax.Cmp(tax))
}

func TestParseFeesClaimedRejectsOtherLogs(t *testing.T) {
	log := &ethtypes.Log{Topics: []common.Hash{common.HexToHash("0x01")}}
	_, err := ParseFeesClaimed(log)
	require.ErrorIs(t, err, ErrNotFeesClaimed)
}
