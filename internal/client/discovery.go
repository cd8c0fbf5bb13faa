package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/slices"

	"github.com/launchfee/backend/pkg/xcontext"
)

// DiscoveryClient lists the tokens a wallet deployed through the launch
// protocol. The service is a collaborator: its output is only used as the
// candidate set for balance resolution, so a failed page degrades to
// whatever was collected so far.
type DiscoveryClient interface {
	DeployedTokens(ctx context.Context, wallet common.Address) ([]common.Address, error)
}

type discoveryPage struct {
	Tokens []struct {
		Address string `mapstructure:"address"`
	} `mapstructure:"tokens"`
	HasMore bool `mapstructure:"has_more"`
}

type discoveryClient struct {
	httpClient *http.Client
}

func NewDiscoveryClient() *discoveryClient {
	return &discoveryClient{httpClient: &http.Client{}}
}

func (c *discoveryClient) DeployedTokens(ctx context.Context, wallet common.Address) ([]common.Address, error) {
	cfg := xcontext.Configs(ctx).Discovery
	if cfg.URL == "" {
		return nil, nil
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 10
	}

	tokens := []common.Address{}
	for page := 0; page < maxPages; page++ {
		result, err := c.fetchPage(ctx, cfg.URL, wallet, page, pageSize)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot fetch discovery page %d for %s: %v", page, wallet, err)
			break
		}

		for _, token := range result.Tokens {
			if !common.IsHexAddress(token.Address) {
				continue
			}

			addr := common.HexToAddress(token.Address)
			if !slices.Contains(tokens, addr) {
				tokens = append(tokens, addr)
			}
		}

		if !result.HasMore {
			break
		}
	}

	return tokens, nil
}

func (c *discoveryClient) fetchPage(
	ctx context.Context, baseURL string, wallet common.Address, page, pageSize int,
) (*discoveryPage, error) {
	query := url.Values{}
	query.Set("deployer", strings.ToLower(wallet.Hex()))
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("limit", fmt.Sprintf("%d", pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// The service's payload shape drifts between versions; decode loosely
	// and map only the fields we use.
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	var result discoveryPage
	if err := mapstructure.Decode(raw, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
