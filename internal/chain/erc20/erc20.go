package erc20

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Function selectors of the ERC-20 methods we call.
var (
	allowanceSelector = crypto.Keccak256([]byte("allowance(address,address)"))[:4]
	approveSelector   = crypto.Keccak256([]byte("approve(address,uint256)"))[:4]
	balanceOfSelector = crypto.Keccak256([]byte("balanceOf(address)"))[:4]
	symbolSelector    = crypto.Keccak256([]byte("symbol()"))[:4]
	decimalsSelector  = crypto.Keccak256([]byte("decimals()"))[:4]
)

// TransferTopic is keccak256("Transfer(address,address,uint256)").
var TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// MaxUint256 is the unlimited approval amount, 2^256-1.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func leftPadAddress(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), 32)
}

func PackAllowance(owner, spender common.Address) []byte {
	data := make([]byte, 0, 4+64)
	data = append(data, allowanceSelector...)
	data = append(data, leftPadAddress(owner)...)
	data = append(data, leftPadAddress(spender)...)
	return data
}

func PackApprove(spender common.Address, amount *big.Int) []byte {
	data := make([]byte, 0, 4+64)
	data = append(data, approveSelector...)
	data = append(data, leftPadAddress(spender)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return data
}

func PackBalanceOf(account common.Address) []byte {
	data := make([]byte, 0, 4+32)
	data = append(data, balanceOfSelector...)
	data = append(data, leftPadAddress(account)...)
	return data
}

func PackSymbol() []byte {
	return append([]byte{}, symbolSelector...)
}

func PackDecimals() []byte {
	return append([]byte{}, decimalsSelector...)
}

// UnpackUint256 decodes a single uint256 return value.
func UnpackUint256(data []byte) *big.Int {
	if len(data) < 32 {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(data[:32])
}

// UnpackString decodes a single ABI-encoded string return value. Tokens that
// return bytes32 symbols are handled by trimming the zero padding.
func UnpackString(data []byte) string {
	if len(data) == 32 {
		return strings.TrimRight(string(data), "\x00")
	}
	if len(data) < 64 {
		return ""
	}

	// Offset and length come from the token contract. They are compared
	// without any addition so oversized words cannot wrap around and pass
	// the bounds check.
	offsetWord := new(big.Int).SetBytes(data[:32])
	if !offsetWord.IsUint64() {
		return ""
	}
	offset := offsetWord.Uint64()
	if offset > uint64(len(data))-32 {
		return ""
	}

	lengthWord := new(big.Int).SetBytes(data[offset : offset+32])
	if !lengthWord.IsUint64() {
		return ""
	}
	length := lengthWord.Uint64()
	if length > uint64(len(data))-32-offset {
		return ""
	}

	return string(data[offset+32 : offset+32+length])
}

// TransferAmount extracts the amount of an ERC-20 Transfer log when, and
// only when, it credits the given recipient. Logs with a different shape
// (missing topics, empty data) are rejected rather than guessed at.
func TransferAmount(log *ethtypes.Log, recipient common.Address) (*big.Int, bool) {
	if len(log.Topics) != 3 || log.Topics[0] != TransferTopic {
		return nil, false
	}
	if len(log.Data) == 0 {
		return nil, false
	}
	if common.BytesToAddress(log.Topics[2].Bytes()) != recipient {
		return nil, false
	}

	return new(big.Int).SetBytes(log.Data), true
}

// CallClient is the read-only contract call surface the reader needs.
type CallClient interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// TokenInfo holds the display metadata of an ERC-20 token.
type TokenInfo struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
}

type Reader struct {
	client CallClient
}

func NewReader(client CallClient) *Reader {
	return &Reader{client: client}
}

func (r *Reader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	out, err := r.client.CallContract(ctx, token, PackAllowance(owner, spender))
	if err != nil {
		return nil, err
	}

	return UnpackUint256(out), nil
}

func (r *Reader) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	out, err := r.client.CallContract(ctx, token, PackBalanceOf(account))
	if err != nil {
		return nil, err
	}

	return UnpackUint256(out), nil
}

func (r *Reader) TokenInfo(ctx context.Context, token common.Address) (TokenInfo, error) {
	symbolOut, err := r.client.CallContract(ctx, token, PackSymbol())
	if err != nil {
		return TokenInfo{}, err
	}

	decimalsOut, err := r.client.CallContract(ctx, token, PackDecimals())
	if err != nil {
		return TokenInfo{}, err
	}

	return TokenInfo{
		Address:  token,
		Symbol:   UnpackString(symbolOut),
		Decimals: uint8(UnpackUint256(decimalsOut).Uint64()),
	}, nil
}
