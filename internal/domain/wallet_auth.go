package domain

import (
	"bytes"
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/launchfee/backend/internal/model"
	"github.com/launchfee/backend/pkg/crypto"
	"github.com/launchfee/backend/pkg/errorx"
	"github.com/launchfee/backend/pkg/jwt"
	"github.com/launchfee/backend/pkg/xcontext"
	"github.com/launchfee/backend/pkg/xredis"
)

const loginNoncePrefix = "login_nonce:"

type WalletAuthDomain interface {
	Login(context.Context, *model.WalletLoginRequest) (*model.WalletLoginResponse, error)
	Verify(context.Context, *model.WalletVerifyRequest) (*model.WalletVerifyResponse, error)
}

type walletAuthDomain struct {
	redisClient xredis.Client
}

func NewWalletAuthDomain(redisClient xredis.Client) WalletAuthDomain {
	return &walletAuthDomain{redisClient: redisClient}
}

func nonceKey(wallet string) string {
	return loginNoncePrefix + strings.ToLower(wallet)
}

func (d *walletAuthDomain) Login(
	ctx context.Context, req *model.WalletLoginRequest,
) (*model.WalletLoginResponse, error) {
	if !common.IsHexAddress(req.WalletAddress) {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	nonce, err := crypto.GenerateRandomString()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate random string: %v", err)
		return nil, errorx.Unknown
	}

	expiration := xcontext.Configs(ctx).Auth.TokenExpiration
	if err := d.redisClient.Set(ctx, nonceKey(req.WalletAddress), nonce, expiration); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store login nonce: %v", err)
		return nil, errorx.Unknown
	}

	return &model.WalletLoginResponse{Nonce: nonce}, nil
}

func (d *walletAuthDomain) Verify(
	ctx context.Context, req *model.WalletVerifyRequest,
) (*model.WalletVerifyResponse, error) {
	if !common.IsHexAddress(req.WalletAddress) {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	nonce, err := d.redisClient.Get(ctx, nonceKey(req.WalletAddress))
	if err != nil {
		return nil, errorx.New(errorx.Unauthenticated, "No pending login for this wallet")
	}

	hash := accounts.TextHash([]byte(nonce))
	signature, err := hexutil.Decode(req.Signature)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot decode signature: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid signature encoding")
	}

	if len(signature) != ethcrypto.SignatureLength {
		return nil, errorx.New(errorx.BadRequest, "Invalid signature length")
	}

	if signature[ethcrypto.RecoveryIDOffset] == 27 || signature[ethcrypto.RecoveryIDOffset] == 28 {
		signature[ethcrypto.RecoveryIDOffset] -= 27 // Transform yellow paper V from 27/28 to 0/1
	}

	recovered, err := ethcrypto.SigToPub(hash, signature)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot recover signature to address: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid signature")
	}

	recoveredAddr := ethcrypto.PubkeyToAddress(*recovered)
	if !bytes.Equal(recoveredAddr.Bytes(), common.HexToAddress(req.WalletAddress).Bytes()) {
		return nil, errorx.New(errorx.BadRequest, "Mismatched address")
	}

	if err := d.redisClient.Del(ctx, nonceKey(req.WalletAddress)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot delete login nonce: %v", err)
	}

	cfg := xcontext.Configs(ctx).Auth
	engine := jwt.NewEngine[model.AccessToken](cfg.TokenSecret, cfg.TokenExpiration)
	token, err := engine.Generate(recoveredAddr.Hex(), model.AccessToken{Address: recoveredAddr.Hex()})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.WalletVerifyResponse{AccessToken: token}, nil
}
