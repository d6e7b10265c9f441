package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/gstin-gateway/internal/adapters/secrets/file"
	passstore "github.com/bnema/gstin-gateway/internal/adapters/secrets/pass"
	"github.com/bnema/gstin-gateway/internal/ports"
)

var errNoStores = errors.New("secret store chain needs at least one store")

// Store resolves a secret reference against each backend in order and returns the
// first hit.
type Store struct {
	stores []ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(stores ...ports.SecretStore) (*Store, error) {
	if len(stores) == 0 {
		return nil, errNoStores
	}
	for i, store := range stores {
		if store == nil {
			return nil, fmt.Errorf("secret store %d is nil", i)
		}
	}

	return &Store{stores: stores}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStore(passstore.NewStore(), filestore.NewStore(fileRoot))
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for i, store := range s.stores {
		value, err := store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldStop(err) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("backend %d: %w", i+1, err))
	}

	return "", fmt.Errorf("resolve secret %q: %w", key, errors.Join(errs...))
}

func shouldStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
