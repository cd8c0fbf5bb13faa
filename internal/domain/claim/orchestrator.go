package claim

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/puzpuzpuz/xsync"

	"github.com/launchfee/backend/internal/chain/eth"
	"github.com/launchfee/backend/pkg/xcontext"
)

// FlowState tracks where a claim invocation currently is.
type FlowState string

const (
	StateIdle               FlowState = "idle"
	StateCheckingAllowances FlowState = "checking_allowances"
	StateApproving          FlowState = "approving"
	StateSubmittingClaim    FlowState = "submitting_claim"
	StateConfirmingClaim    FlowState = "confirming_claim"
	StateSettlingBalance    FlowState = "settling_balance"
	StateDone               FlowState = "done"
	StateFailed             FlowState = "failed"
)

var (
	// ErrFlowInFlight means a claim is already running for this wallet. The
	// second invocation is dropped, not queued.
	ErrFlowInFlight = errors.New("claim: another claim is in flight for this wallet")

	ErrNothingToClaim     = errors.New("claim: no claimable balance")
	ErrClaimReverted      = errors.New("claim: transaction reverted on chain")
	ErrConfirmTimeout     = errors.New("claim: confirmation not observed in time")
	ErrVerificationFailed = errors.New("claim: no settlement transfer found in receipt")
)

const (
	DefaultConfirmTimeout     = 2 * time.Minute
	DefaultSettlePollInterval = 2500 * time.Millisecond
	DefaultSettleMaxAttempts  = 6
)

// ChainWriter is the transaction surface the orchestrator drives.
type ChainWriter interface {
	Address() common.Address
	Approve(ctx context.Context, token common.Address) (common.Hash, error)
	ClaimFees(ctx context.Context, tokens []common.Address) (common.Hash, error)
	ClaimDirect(ctx context.Context, token common.Address) (common.Hash, error)
	WaitMined(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

// Flow is the live record of one claim invocation.
type Flow struct {
	Wallet    common.Address
	State     FlowState
	StartedAt time.Time
}

// Result reports a finished claim.
type Result struct {
	TxHash  common.Hash   `json:"tx_hash"`
	Rewards []RewardAsset `json:"rewards"`

	// Remaining is the last balance resolution observed while settling. A
	// responsive chain drains it to empty within the poll budget.
	Remaining *Resolved `json:"remaining"`
}

// Orchestrator sequences allowance check, approvals, claim submission,
// confirmation with log verification, balance settlement, and the ledger
// append. One flow per wallet may run at a time.
type Orchestrator struct {
	writer   ChainWriter
	gate     *Gate
	resolver *Resolver
	ledger   *Ledger

	settlement common.Address

	confirmTimeout     time.Duration
	settlePollInterval time.Duration
	settleMaxAttempts  int

	flows *xsync.MapOf[string, *Flow]
}

type OrchestratorOptions struct {
	ConfirmTimeout     time.Duration
	SettlePollInterval time.Duration
	SettleMaxAttempts  int
}

func NewOrchestrator(
	writer ChainWriter,
	gate *Gate,
	resolver *Resolver,
	ledger *Ledger,
	settlement common.Address,
	options OrchestratorOptions,
) *Orchestrator {
	if options.ConfirmTimeout <= 0 {
		options.ConfirmTimeout = DefaultConfirmTimeout
	}
	if options.SettlePollInterval <= 0 {
		options.SettlePollInterval = DefaultSettlePollInterval
	}
	if options.SettleMaxAttempts <= 0 {
		options.SettleMaxAttempts = DefaultSettleMaxAttempts
	}

	return &Orchestrator{
		writer:             writer,
		gate:               gate,
		resolver:           resolver,
		ledger:             ledger,
		settlement:         settlement,
		confirmTimeout:     options.ConfirmTimeout,
		settlePollInterval: options.SettlePollInterval,
		settleMaxAttempts:  options.SettleMaxAttempts,
		flows:              xsync.NewMapOf[*Flow](),
	}
}

// FlowFor returns the live flow of a wallet, if any.
func (o *Orchestrator) FlowFor(wallet common.Address) (*Flow, bool) {
	return o.flows.Load(flowKey(wallet))
}

func flowKey(wallet common.Address) string {
	return strings.ToLower(wallet.Hex())
}

// Claim runs the full claim flow for the wallet against the candidate token
// set. It blocks until the flow reaches done or failed.
func (o *Orchestrator) Claim(ctx context.Context, wallet common.Address, candidates []common.Address) (*Result, error) {
	flow := &Flow{Wallet: wallet, State: StateIdle, StartedAt: time.Now()}
	if _, loaded := o.flows.LoadOrStore(flowKey(wallet), flow); loaded {
		return nil, ErrFlowInFlight
	}
	defer o.flows.Delete(flowKey(wallet))

	result, err := o.run(ctx, flow, wallet, candidates)
	if err != nil {
		flow.State = StateFailed
		return nil, err
	}

	flow.State = StateDone
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, flow *Flow, wallet common.Address, candidates []common.Address) (*Result, error) {
	flow.State = StateCheckingAllowances
	resolved, err := o.resolver.Resolve(ctx, wallet, candidates)
	if err != nil {
		return nil, err
	}

	if len(resolved.ClaimableAddresses) == 0 {
		return nil, ErrNothingToClaim
	}

	var needing []common.Address
	for _, token := range resolved.ClaimableAddresses {
		if _, needs := o.gate.Check(ctx, wallet, token, nil); needs {
			needing = append(needing, token)
		}
	}

	if err := o.approveAll(ctx, flow, needing); err != nil {
		return nil, err
	}

	flow.State = StateSubmittingClaim
	txHash, err := o.submitClaim(ctx, resolved.ClaimableAddresses)
	if err != nil {
		return nil, err
	}

	flow.State = StateConfirmingClaim
	receipt, err := o.confirm(ctx, txHash)
	if err != nil {
		return nil, err
	}

	total := SettlementTransferTotal(receipt, o.settlement, wallet)
	if total.Sign() <= 0 {
		xcontext.Logger(ctx).Errorf(
			"Claim %s confirmed without a positive settlement transfer to %s", txHash, wallet)
		return nil, ErrVerificationFailed
	}

	flow.State = StateSettlingBalance
	remaining := o.settle(ctx, wallet, candidates)

	entryType := LedgerTypeBatch
	if len(resolved.ClaimableAddresses) == 1 {
		entryType = LedgerTypeSingle
	}

	entry := LedgerEntry{
		Type:    entryType,
		Rewards: resolved.Rewards,
		TxHash:  txHash.Hex(),
	}
	for _, reward := range resolved.Rewards {
		entry.Symbols = append(entry.Symbols, reward.Symbol)
		entry.Tokens = append(entry.Tokens, reward.Address)
	}

	if err := o.ledger.Append(ctx, wallet, entry); err != nil {
		// The claim itself succeeded on chain. Losing the ledger write is
		// reported but does not fail the flow.
		xcontext.Logger(ctx).Errorf("Cannot append ledger entry for %s: %v", wallet, err)
	}

	return &Result{TxHash: txHash, Rewards: resolved.Rewards, Remaining: remaining}, nil
}

// approveAll submits one unlimited approval per token needing it, in order,
// waiting for each to confirm. Any rejection or failure aborts the claim.
func (o *Orchestrator) approveAll(ctx context.Context, flow *Flow, tokens []common.Address) error {
	for _, token := range tokens {
		flow.State = StateApproving

		txHash, err := o.writer.Approve(ctx, token)
		if err != nil {
			return err
		}

		receipt, err := o.confirm(ctx, txHash)
		if err != nil {
			return err
		}

		if receipt.Status != ethtypes.ReceiptStatusSuccessful {
			return ErrClaimReverted
		}
	}

	return nil
}

// submitClaim uses the direct distributor path when the claim is exactly the
// settlement asset; the distributor pays that one out untaxed, and skipping
// the router saves gas. Everything else routes through the fee router.
func (o *Orchestrator) submitClaim(ctx context.Context, tokens []common.Address) (common.Hash, error) {
	if len(tokens) == 1 && tokens[0] == o.settlement {
		return o.writer.ClaimDirect(ctx, o.settlement)
	}

	return o.writer.ClaimFees(ctx, tokens)
}

func (o *Orchestrator) confirm(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	confirmCtx, cancel := context.WithTimeout(ctx, o.confirmTimeout)
	defer cancel()

	receipt, err := o.writer.WaitMined(confirmCtx, txHash)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(confirmCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrConfirmTimeout
		}

		return nil, err
	}

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, ErrClaimReverted
	}

	return receipt, nil
}

// settle polls the resolver until the claimable set is empty or the retry
// budget runs out. Reads right after a write often lag, so the loop only
// reports what it last saw; it never fails the flow.
func (o *Orchestrator) settle(ctx context.Context, wallet common.Address, candidates []common.Address) *Resolved {
	var last *Resolved
	for attempt := 0; attempt < o.settleMaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return last
			case <-time.After(o.settlePollInterval):
			}
		}

		resolved, err := o.resolver.Resolve(ctx, wallet, candidates)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Settle poll %d failed for %s: %v", attempt, wallet, err)
			continue
		}

		last = resolved
		if len(resolved.ClaimableAddresses) == 0 {
			break
		}
	}

	return last
}

// IsUserRejected reports whether an error came from the signer declining.
func IsUserRejected(err error) bool {
	return errors.Is(err, eth.ErrUserRejected)
}
