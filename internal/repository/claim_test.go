package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/launchfee/backend/internal/entity"
	"github.com/launchfee/backend/internal/testutil"
)

func Test_claimTransactionRepository(t *testing.T) {
	ctx := testutil.NewContext(t)
	repo := NewClaimTransactionRepository()

	wallet := "0x00000000000000000000000000000000000000e1"
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first := &entity.ClaimTransaction{
		Base:          entity.Base{ID: uuid.NewString(), CreatedAt: base},
		WalletAddress: wallet,
		Type:          entity.ClaimTypeBatch,
		TxHash:        "0xaaa1",
		Tokens:        []string{"0x0000000000000000000000000000000000000fff"},
		Symbols:       []string{"WETH"},
		Amounts:       []string{"1500000000000000000"},
	}
	second := &entity.ClaimTransaction{
		Base:          entity.Base{ID: uuid.NewString(), CreatedAt: base.Add(time.Minute)},
		WalletAddress: wallet,
		Type:          entity.ClaimTypeSingle,
		TxHash:        "0xaaa2",
		Tokens:        []string{"0x0000000000000000000000000000000000000fff"},
		Symbols:       []string{"WETH"},
		Amounts:       []string{"42"},
	}
	other := &entity.ClaimTransaction{
		Base:          entity.Base{ID: uuid.NewString(), CreatedAt: base},
		WalletAddress: "0x00000000000000000000000000000000000000e2",
		Type:          entity.ClaimTypeBatch,
		TxHash:        "0xbbb1",
		Tokens:        []string{"0x0000000000000000000000000000000000000aaa"},
		Symbols:       []string{"AAA"},
		Amounts:       []string{"7"},
	}

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, other))

	count, err := repo.Count(ctx, wallet)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	records, err := repo.GetByWallet(ctx, wallet, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "0xaaa2", records[0].TxHash)
	require.Equal(t, "0xaaa1", records[1].TxHash)
	require.Equal(t, entity.ClaimTypeSingle, records[0].Type)
	require.Equal(t, []string{"WETH"}, []string(records[0].Symbols))

	paged, err := repo.GetByWallet(ctx, wallet, 1, 10)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	require.Equal(t, "0xaaa1", paged[0].TxHash)

	byHash, err := repo.GetByTxHash(ctx, "0xaaa1")
	require.NoError(t, err)
	require.Equal(t, wallet, byHash.WalletAddress)
	require.Equal(t, []string{"1500000000000000000"}, []string(byHash.Amounts))

	_, err = repo.GetByTxHash(ctx, "0xmissing")
	require.Error(t, err)
}
