package ports

import (
	"context"
	"time"

	"github.com/bnema/gstin-gateway/internal/domain"
)

// ResultCache stores normalized results keyed by normalized GSTIN. Implementations
// degrade to a miss instead of failing the lookup.
type ResultCache interface {
	Get(ctx context.Context, gstin string) (domain.VerificationResult, bool)
	Set(ctx context.Context, gstin string, result domain.VerificationResult, ttl time.Duration)
}
