package domain

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/launchfee/backend/internal/model"
	"github.com/launchfee/backend/internal/testutil"
	"github.com/launchfee/backend/pkg/jwt"
)

func Test_walletAuthDomain_LoginAndVerify(t *testing.T) {
	ctx := testutil.NewContext(t)
	redisClient := testutil.NewInMemoryRedisClient()
	authDomain := NewWalletAuthDomain(redisClient)

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	wallet := ethcrypto.PubkeyToAddress(key.PublicKey)

	loginResp, err := authDomain.Login(ctx, &model.WalletLoginRequest{WalletAddress: wallet.Hex()})
	require.NoError(t, err)
	require.NotEmpty(t, loginResp.Nonce)

	signature, err := ethcrypto.Sign(accounts.TextHash([]byte(loginResp.Nonce)), key)
	require.NoError(t, err)
	// Wallets return yellow paper V values.
	signature[ethcrypto.RecoveryIDOffset] += 27

	verifyResp, err := authDomain.Verify(ctx, &model.WalletVerifyRequest{
		WalletAddress: wallet.Hex(),
		Signature:     hexutil.Encode(signature),
	})
	require.NoError(t, err)
	require.NotEmpty(t, verifyResp.AccessToken)

	engine := jwt.NewEngine[model.AccessToken](testutil.NewConfigs().Auth.TokenSecret, testutil.NewConfigs().Auth.TokenExpiration)
	accessToken, err := engine.Verify(verifyResp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, wallet.Hex(), accessToken.Address)

	// The nonce is single use.
	_, err = authDomain.Verify(ctx, &model.WalletVerifyRequest{
		WalletAddress: wallet.Hex(),
		Signature:     hexutil.Encode(signature),
	})
	require.Error(t, err)
}

func Test_walletAuthDomain_VerifyRejectsWrongSigner(t *testing.T) {
	ctx := testutil.NewContext(t)
	redisClient := testutil.NewInMemoryRedisClient()
	authDomain := NewWalletAuthDomain(redisClient)

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	wallet := ethcrypto.PubkeyToAddress(key.PublicKey)

	otherKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	loginResp, err := authDomain.Login(ctx, &model.WalletLoginRequest{WalletAddress: wallet.Hex()})
	require.NoError(t, err)

	signature, err := ethcrypto.Sign(accounts.TextHash([]byte(loginResp.Nonce)), otherKey)
	require.NoError(t, err)

	_, err = authDomain.Verify(ctx, &model.WalletVerifyRequest{
		WalletAddress: wallet.Hex(),
		Signature:     hexutil.Encode(signature),
	})
	require.Error(t, err)
}

func Test_walletAuthDomain_LoginRejectsBadAddress(t *testing.T) {
	ctx := testutil.NewContext(t)
	authDomain := NewWalletAuthDomain(testutil.NewInMemoryRedisClient())

	_, err := authDomain.Login(ctx, &model.WalletLoginRequest{WalletAddress: "not-an-address"})
	require.Error(t, err)
}
