package claim

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/launchfee/backend/pkg/xcontext"
	"github.com/launchfee/backend/pkg/xredis"
)

// LedgerEntry is one confirmed claim. Entries are append-only; nothing in
// the system mutates or removes them.
type LedgerEntry struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Rewards   []RewardAsset `json:"rewards"`
	Symbols   []string      `json:"symbols"`
	Tokens    []string      `json:"tokens"`
	Timestamp time.Time     `json:"timestamp"`
	TxHash    string        `json:"tx_hash"`
}

const (
	LedgerTypeBatch  = "batch"
	LedgerTypeSingle = "single"
)

// Ledger keeps the per-wallet claim history under a single key holding a
// JSON array, rewritten in full on every append.
type Ledger struct {
	redisClient xredis.Client
	keyPrefix   string
}

func NewLedger(redisClient xredis.Client, keyPrefix string) *Ledger {
	if keyPrefix == "" {
		keyPrefix = "claim_ledger"
	}

	return &Ledger{redisClient: redisClient, keyPrefix: keyPrefix}
}

func (l *Ledger) key(wallet common.Address) string {
	return l.keyPrefix + ":" + strings.ToLower(wallet.Hex())
}

func (l *Ledger) Entries(ctx context.Context, wallet common.Address) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	err := l.redisClient.GetObj(ctx, l.key(wallet), &entries)
	if err != nil {
		if errors.Is(err, xredis.ErrNotFound) {
			return []LedgerEntry{}, nil
		}

		return nil, err
	}

	return entries, nil
}

// Append adds one entry to the wallet's history. Call it only after the
// claim transaction confirmed and its transfer logs verified.
func (l *Ledger) Append(ctx context.Context, wallet common.Address, entry LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	entries, err := l.Entries(ctx, wallet)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if err := l.redisClient.SetObj(ctx, l.key(wallet), entries, 0); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot persist claim ledger of %s: %v", wallet, err)
		return err
	}

	return nil
}
