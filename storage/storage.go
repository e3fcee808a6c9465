// Package storage provides the durable key-value collaborator the cart
// mirrors itself into. Values are opaque bytes; keys are scoped per owner.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Backend interface {
	Namespace(owner string) KV
}
