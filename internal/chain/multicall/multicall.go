package multicall

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// batchSize caps how many calls go into a single aggregate3 request so one
// oversized batch cannot blow the node's gas or response limits.
const batchSize = 500

const aggregate3ABI = `[{
	"inputs": [{
		"components": [
			{"internalType": "address", "name": "target", "type": "address"},
			{"internalType": "bool", "name": "allowFailure", "type": "bool"},
			{"internalType": "bytes", "name": "callData", "type": "bytes"}
		],
		"internalType": "struct Multicall3.Call3[]",
		"name": "calls",
		"type": "tuple[]"
	}],
	"name": "aggregate3",
	"outputs": [{
		"components": [
			{"internalType": "bool", "name": "success", "type": "bool"},
			{"internalType": "bytes", "name": "returnData", "type": "bytes"}
		],
		"internalType": "struct Multicall3.Result[]",
		"name": "returnData",
		"type": "tuple[]"
	}],
	"stateMutability": "payable",
	"type": "function"
}]`

var parsedABI abi.ABI

func init() {
	var err error
	parsedABI, err = abi.JSON(strings.NewReader(aggregate3ABI))
	if err != nil {
		panic(err)
	}
}

// Call is one target invocation inside an aggregate3 batch. Failures are
// always allowed so one reverting token cannot poison the whole batch.
type Call struct {
	Target   common.Address
	CallData []byte
}

// Result mirrors the on-chain Result struct.
type Result struct {
	Success    bool
	ReturnData []byte
}

type aggregate3Call struct {
	Target       common.Address `abi:"target"`
	AllowFailure bool           `abi:"allowFailure"`
	CallData     []byte         `abi:"callData"`
}

type aggregate3Result struct {
	Success    bool   `abi:"success"`
	ReturnData []byte `abi:"returnData"`
}

// CallClient is the read-only contract call surface the caller needs.
type CallClient interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

type Caller struct {
	client   CallClient
	contract common.Address
}

func NewCaller(client CallClient, contract common.Address) *Caller {
	return &Caller{client: client, contract: contract}
}

// Aggregate runs every call through the multicall contract, chunked so no
// single request exceeds the batch cap. Results come back in call order; a
// failed inner call is reported through Result.Success, not an error.
func (c *Caller) Aggregate(ctx context.Context, calls []Call) ([]Result, error) {
	results := make([]Result, 0, len(calls))
	for start := 0; start < len(calls); start += batchSize {
		end := start + batchSize
		if end > len(calls) {
			end = len(calls)
		}

		chunk, err := c.aggregateChunk(ctx, calls[start:end])
		if err != nil {
			return nil, err
		}
		results = append(results, chunk...)
	}

	return results, nil
}

func (c *Caller) aggregateChunk(ctx context.Context, calls []Call) ([]Result, error) {
	packed := make([]aggregate3Call, len(calls))
	for i, call := range calls {
		packed[i] = aggregate3Call{
			Target:       call.Target,
			AllowFailure: true,
			CallData:     call.CallData,
		}
	}

	data, err := parsedABI.Pack("aggregate3", packed)
	if err != nil {
		return nil, err
	}

	out, err := c.client.CallContract(ctx, c.contract, data)
	if err != nil {
		return nil, err
	}

	return UnpackResults(out)
}

// UnpackResults decodes an aggregate3 return payload.
func UnpackResults(data []byte) ([]Result, error) {
	values, err := parsedABI.Unpack("aggregate3", data)
	if err != nil {
		return nil, err
	}

	raw := *abi.ConvertType(values[0], new([]aggregate3Result)).(*[]aggregate3Result)
	results := make([]Result, len(raw))
	for i, r := range raw {
		results[i] = Result{Success: r.Success, ReturnData: r.ReturnData}
	}

	return results, nil
}

// PackCalls exposes the request encoding for tests and custom clients.
func PackCalls(calls []Call) ([]byte, error) {
	packed := make([]aggregate3Call, len(calls))
	for i, call := range calls {
		packed[i] = aggregate3Call{Target: call.Target, AllowFailure: true, CallData: call.CallData}
	}

	return parsedABI.Pack("aggregate3", packed)
}
