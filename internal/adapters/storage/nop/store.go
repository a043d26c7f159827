// Package nop provides the KeyValueStore used where no durable storage
// exists. Every operation succeeds without effect and reads find nothing.
package nop

import (
	"context"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/ports"
)

type Store struct{}

var _ ports.KeyValueStore = Store{}

func (Store) Available() bool {
	return false
}

func (Store) Get(context.Context, string) (string, error) {
	return "", domain.ErrKeyNotFound
}

func (Store) Put(context.Context, string, string) error {
	return nil
}

func (Store) Delete(context.Context, string) error {
	return nil
}
