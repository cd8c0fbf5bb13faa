package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/launchfee/backend/pkg/ethutil"
	"github.com/launchfee/backend/pkg/xcontext"
)

// ErrUserRejected means the account holder declined to sign the transaction.
var ErrUserRejected = errors.New("eth: transaction rejected by signer")

// userRejectedCode is the EIP-1193 provider error for a declined request.
const userRejectedCode = 4001

// TxParams describes one transaction to sign and broadcast.
type TxParams struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Signer owns one account and can broadcast transactions from it.
type Signer interface {
	Address() common.Address
	SendTransaction(ctx context.Context, params TxParams) (common.Hash, error)
}

// SelectSigner picks the embedded key signer when a session secret is
// configured and falls back to node-managed accounts otherwise.
func SelectSigner(ctx context.Context, client EthClient) (Signer, error) {
	cfg := xcontext.Configs(ctx).Chain
	if cfg.SessionSecret != "" {
		key, err := ethutil.GeneratePrivateKey([]byte(cfg.SessionSecret), []byte(cfg.Chain))
		if err != nil {
			return nil, err
		}

		return NewKeySigner(client, key, cfg.UseEip1559), nil
	}

	if len(cfg.Rpcs) == 0 {
		return nil, errors.New("eth: no rpc configured for node signer")
	}

	rpcClient, err := rpc.DialContext(ctx, cfg.Rpcs[0])
	if err != nil {
		return nil, err
	}

	return NewNodeSigner(ctx, rpcClient)
}

// keySigner signs locally with a derived session key.
type keySigner struct {
	client     EthClient
	key        *ecdsa.PrivateKey
	address    common.Address
	useEip1559 bool
}

func NewKeySigner(client EthClient, key *ecdsa.PrivateKey, useEip1559 bool) Signer {
	return &keySigner{
		client:     client,
		key:        key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
		useEip1559: useEip1559,
	}
}

func (s *keySigner) Address() common.Address {
	return s.address
}

func (s *keySigner) SendTransaction(ctx context.Context, params TxParams) (common.Hash, error) {
	value := params.Value
	if value == nil {
		value = common.Big0
	}

	nonce, err := s.client.PendingNonceAt(ctx, s.address)
	if err != nil {
		return common.Hash{}, err
	}

	gasLimit, err := s.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  s.address,
		To:    &params.To,
		Value: value,
		Data:  params.Data,
	})
	if err != nil {
		return common.Hash{}, err
	}

	tx, err := s.buildTx(ctx, params, nonce, gasLimit, value)
	if err != nil {
		return common.Hash{}, err
	}

	signedTx, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(s.client.ChainID()), s.key)
	if err != nil {
		return common.Hash{}, err
	}

	if err := s.client.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, err
	}

	return signedTx.Hash(), nil
}

func (s *keySigner) buildTx(
	ctx context.Context, params TxParams, nonce, gasLimit uint64, value *big.Int,
) (*ethtypes.Transaction, error) {
	if s.useEip1559 {
		tip, err := s.client.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, err
		}

		gasPrice, err := s.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, err
		}

		// feeCap = 2*basefee estimate + tip keeps the tx valid across a few
		// blocks of basefee growth.
		feeCap := new(big.Int).Mul(gasPrice, big.NewInt(2))
		feeCap.Add(feeCap, tip)

		return ethtypes.NewTx(&ethtypes.DynamicFeeTx{
			ChainID:   s.client.ChainID(),
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gasLimit,
			To:        &params.To,
			Value:     value,
			Data:      params.Data,
		}), nil
	}

	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	return ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &params.To,
		Value:    value,
		Data:     params.Data,
	}), nil
}

// nodeSigner delegates signing to an unlocked node account.
type nodeSigner struct {
	rpcClient *rpc.Client
	address   common.Address
}

func NewNodeSigner(ctx context.Context, rpcClient *rpc.Client) (Signer, error) {
	var accounts []common.Address
	if err := rpcClient.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}

	if len(accounts) == 0 {
		return nil, errors.New("eth: node exposes no unlocked accounts")
	}

	return &nodeSigner{rpcClient: rpcClient, address: accounts[0]}, nil
}

func (s *nodeSigner) Address() common.Address {
	return s.address
}

func (s *nodeSigner) SendTransaction(ctx context.Context, params TxParams) (common.Hash, error) {
	arg := map[string]any{
		"from": s.address,
		"to":   params.To,
		"data": hexutil.Bytes(params.Data),
	}
	if params.Value != nil && params.Value.Sign() > 0 {
		arg["value"] = (*hexutil.Big)(params.Value)
	}

	var txHash common.Hash
	if err := s.rpcClient.CallContext(ctx, &txHash, "eth_sendTransaction", arg); err != nil {
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == userRejectedCode {
			return common.Hash{}, ErrUserRejected
		}

		return common.Hash{}, err
	}

	return txHash, nil
}
