// Package feerouter holds the hand-written binding of the deployed fee
// router contract: calldata packing for its mutating methods, return decoding
// for its views, and FeesClaimed log parsing.
package feerouter

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

const routerABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "distributor", "type": "address"},
			{"internalType": "address[]", "name": "tokens", "type": "address[]"}
		],
		"name": "claimFees",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "taxBps",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "treasury",
		"outputs": [{"internalType": "address", "name": "", "type": "address"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "", "type": "address"}],
		"name": "allowedDistributors",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "address", "name": "", "type": "address"}],
		"name": "rebateReserve",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "address", "name": "user", "type": "address"},
			{"indexed": true, "internalType": "address", "name": "distributor", "type": "address"},
			{"indexed": true, "internalType": "address", "name": "token", "type": "address"},
			{"indexed": false, "internalType": "uint256", "name": "claimed", "type": "uint256"},
			{"indexed": false, "internalType": "uint256", "name": "tax", "type": "uint256"}
		],
		"name": "FeesClaimed",
		"type": "event"
	}
]`

var parsedABI abi.ABI

func init() {
	var err error
	parsedABI, err = abi.JSON(strings.NewReader(routerABI))
	if err != nil {
		panic(err)
	}
}

// FeesClaimedTopic identifies FeesClaimed logs.
var FeesClaimedTopic = parsedABI.Events["FeesClaimed"].ID

var ErrNotFeesClaimed = errors.New("feerouter: log is not a FeesClaimed event")

// FeesClaimed is one decoded FeesClaimed log.
type FeesClaimed struct {
	User        common.Address
	Distributor common.Address
	Token       common.Address
	Claimed     *big.Int
	Tax         *big.Int
}

// PackClaimFees builds the calldata of claimFees(distributor, tokens).
func PackClaimFees(distributor common.Address, tokens []common.Address) ([]byte, error) {
	return parsedABI.Pack("claimFees", distributor, tokens)
}

// ParseFeesClaimed decodes one FeesClaimed log.
func ParseFeesClaimed(log *ethtypes.Log) (*FeesClaimed, error) {
	if len(log.Topics) != 4 || log.Topics[0] != FeesClaimedTopic {
		return nil, ErrNotFeesClaimed
	}

	values, err := parsedABI.Events["FeesClaimed"].Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, err
	}

	return &FeesClaimed{
		User:        common.BytesToAddress(log.Topics[1].Bytes()),
		Distributor: common.BytesToAddress(log.Topics[2].Bytes()),
		Token:       common.BytesToAddress(log.Topics[3].Bytes()),
		Claimed:     values[0].(*big.Int),
		Tax:         values[1].(*big.Int),
	}, nil
}

// CallClient is the read-only contract call surface the views need.
type CallClient interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Caller reads the router's public state.
type Caller struct {
	client   CallClient
	contract common.Address
}

func NewCaller(client CallClient, contract common.Address) *Caller {
	return &Caller{client: client, contract: contract}
}

func (c *Caller) view(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	out, err := c.client.CallContract(ctx, c.contract, data)
	if err != nil {
		return nil, err
	}

	return parsedABI.Unpack(method, out)
}

func (c *Caller) TaxBps(ctx context.Context) (*big.Int, error) {
	values, err := c.view(ctx, "taxBps")
	if err != nil {
		return nil, err
	}

	return values[0].(*big.Int), nil
}

func (c *Caller) Treasury(ctx context.Context) (common.Address, error) {
	values, err := c.view(ctx, "treasury")
	if err != nil {
		return common.Address{}, err
	}

	return values[0].(common.Address), nil
}

func (c *Caller) IsAllowedDistributor(ctx context.Context, distributor common.Address) (bool, error) {
	values, err := c.view(ctx, "allowedDistributors", distributor)
	if err != nil {
		return false, err
	}

	return values[0].(bool), nil
}

func (c *Caller) RebateReserve(ctx context.Context, token common.Address) (*big.Int, error) {
	values, err := c.view(ctx, "rebateReserve", token)
	if err != nil {
		return nil, err
	}

	return values[0].(*big.Int), nil
}
