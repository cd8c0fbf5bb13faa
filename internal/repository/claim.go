package repository

import (
	"context"

	"github.com/launchfee/backend/internal/entity"
	"github.com/launchfee/backend/pkg/xcontext"
)

type ClaimTransactionRepository interface {
	Create(ctx context.Context, e *entity.ClaimTransaction) error
	GetByWallet(ctx context.Context, wallet string, offset, limit int) ([]entity.ClaimTransaction, error)
	GetByTxHash(ctx context.Context, txHash string) (*entity.ClaimTransaction, error)
	Count(ctx context.Context, wallet string) (int64, error)
}

type claimTransactionRepository struct {
}

func NewClaimTransactionRepository() *claimTransactionRepository {
	return &claimTransactionRepository{}
}

func (r *claimTransactionRepository) Create(ctx context.Context, e *entity.ClaimTransaction) error {
	if err := xcontext.DB(ctx).Model(e).Create(e).Error; err != nil {
		return err
	}
	return nil
}

func (r *claimTransactionRepository) GetByWallet(
	ctx context.Context, wallet string, offset, limit int,
) ([]entity.ClaimTransaction, error) {
	var result []entity.ClaimTransaction
	err := xcontext.DB(ctx).
		Where("wallet_address = ?", wallet).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *claimTransactionRepository) GetByTxHash(ctx context.Context, txHash string) (*entity.ClaimTransaction, error) {
	var result entity.ClaimTransaction
	if err := xcontext.DB(ctx).Take(&result, "tx_hash = ?", txHash).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *claimTransactionRepository) Count(ctx context.Context, wallet string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.ClaimTransaction{}).
		Where("wallet_address = ?", wallet).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
