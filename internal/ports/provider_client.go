package ports

import (
	"context"

	"github.com/bnema/gstin-gateway/internal/domain"
)

// ProviderClient performs exactly one lookup with one credential. It never retries
// and reports every failure as an Outcome instead of an error.
type ProviderClient interface {
	Call(ctx context.Context, credential domain.Credential, gstin string) domain.Outcome
}
