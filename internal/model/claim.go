package model

type RewardAsset struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Amount   string `json:"amount"`
	Display  string `json:"display"`
}

type ResolveClaimableRequest struct {
	WalletAddress string `json:"wallet_address"`
	ForceRefresh  bool   `json:"force_refresh"`
}

type TokensResponse struct {
	Rewards            []RewardAsset `json:"rewards"`
	ClaimableAddresses []string      `json:"claimable_addresses"`
}

type CheckAllowanceRequest struct {
	WalletAddress string `json:"wallet_address"`
	TokenAddress  string `json:"token_address"`
	Amount        string `json:"amount"`
}

type CheckAllowanceResponse struct {
	Allowance     string `json:"allowance"`
	NeedsApproval bool   `json:"needs_approval"`
}

type InvalidateCacheRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type InvalidateCacheResponse struct{}

type ClaimRequest struct{}

type ClaimResponse struct {
	TxHash    string         `json:"tx_hash"`
	Rewards   []RewardAsset  `json:"rewards"`
	Remaining TokensResponse `json:"remaining"`
}

type ClaimHistoryEntry struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Tokens    []string `json:"tokens"`
	Symbols   []string `json:"symbols"`
	Amounts   []string `json:"amounts"`
	TxHash    string   `json:"tx_hash"`
	CreatedAt string   `json:"created_at"`
}

type GetHistoryRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetHistoryResponse struct {
	Total   int64               `json:"total"`
	History []ClaimHistoryEntry `json:"history"`
}

type WalletLoginRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type WalletLoginResponse struct {
	Nonce string `json:"nonce"`
}

type WalletVerifyRequest struct {
	WalletAddress string `json:"wallet_address"`
	Signature     string `json:"signature"`
}

type WalletVerifyResponse struct {
	AccessToken string `json:"access_token"`
}

type AccessToken struct {
	Address string `json:"address"`
}

type GetSessionRequest struct{}

type GetSessionResponse struct {
	Status        string `json:"status"`
	WalletAddress string `json:"wallet_address"`
}
