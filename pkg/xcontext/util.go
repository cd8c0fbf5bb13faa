package xcontext

import "context"

type (
	requestWalletKey struct{}
	responseKey      struct{}
	errorKey         struct{}
)

func SetError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorKey{}, err)
}

func GetError(ctx context.Context) error {
	err := ctx.Value(errorKey{})
	if err == nil {
		return nil
	}

	return err.(error)
}

func SetResponse(ctx context.Context, resp any) context.Context {
	return context.WithValue(ctx, responseKey{}, resp)
}

func GetResponse(ctx context.Context) any {
	return ctx.Value(responseKey{})
}

// WithRequestWallet stores the wallet address authenticated for this request.
func WithRequestWallet(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, requestWalletKey{}, address)
}

func RequestWallet(ctx context.Context) string {
	address := ctx.Value(requestWalletKey{})
	if address == nil {
		return ""
	}

	return address.(string)
}
