package claim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/launchfee/backend/internal/testutil"
)

func TestLedgerAppendAndRead(t *testing.T) {
	ctx := testutil.NewContext(t)
	redisClient := testutil.NewInMemoryRedisClient()
	ledger := NewLedger(redisClient, "claim_ledger")

	entries, err := ledger.Entries(ctx, walletAddr)
	require.NoError(t, err)
	require.Empty(t, entries)

	first := LedgerEntry{
		Type:    LedgerTypeSingle,
		Symbols: []string{"WETH"},
		Tokens:  []string{settlementToken.Hex()},
		TxHash:  "0x01",
	}
	require.NoError(t, ledger.Append(ctx, walletAddr, first))

	second := LedgerEntry{
		Type:    LedgerTypeBatch,
		Symbols: []string{"WETH", "AAA"},
		Tokens:  []string{settlementToken.Hex(), launchTokenA.Hex()},
		TxHash:  "0x02",
	}
	require.NoError(t, ledger.Append(ctx, walletAddr, second))

	entries, err = ledger.Entries(ctx, walletAddr)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Append preserves order and fills in id and timestamp.
	require.Equal(t, "0x01", entries[0].TxHash)
	require.Equal(t, "0x02", entries[1].TxHash)
	require.NotEmpty(t, entries[0].ID)
	require.NotEmpty(t, entries[1].ID)
	require.NotEqual(t, entries[0].ID, entries[1].ID)
	require.False(t, entries[0].Timestamp.IsZero())
}

func TestLedgerSeparatesWallets(t *testing.T) {
	ctx := testutil.NewContext(t)
	redisClient := testutil.NewInMemoryRedisClient()
	ledger := NewLedger(redisClient, "claim_ledger")

	require.NoError(t, ledger.Append(ctx, walletAddr, LedgerEntry{TxHash: "0x01"}))

	entries, err := ledger.Entries(ctx, launchTokenA)
	require.NoError(t, err)
	require.Empty(t, entries)
}
