// Package client carries the identity of the shopper behind a request.
package client

import (
	"context"
	"errors"
)

type ctxKey int

const clientKey ctxKey = 1

func Set(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientKey, id)
}

func Get(ctx context.Context) (string, error) {
	v, ok := ctx.Value(clientKey).(string)
	if !ok || v == "" {
		return "", errors.New("client id missing from context")
	}
	return v, nil
}
