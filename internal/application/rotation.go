package application

import (
	"context"
	"time"

	"github.com/bnema/gstin-gateway/internal/domain"
	"github.com/bnema/gstin-gateway/internal/log"
	"github.com/bnema/gstin-gateway/internal/ports"
)

const DefaultCooldown = 300 * time.Second

// Rotator tries the pool's credentials one at a time, fresh ones first, until the
// provider answers successfully.
type Rotator struct {
	pool     *domain.CredentialPool
	client   ports.ProviderClient
	clock    ports.Clock
	cooldown time.Duration
	observer ports.VerificationObserver
}

func NewRotator(pool *domain.CredentialPool, client ports.ProviderClient, clock ports.Clock, cooldown time.Duration, observer ports.VerificationObserver) *Rotator {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}

	return &Rotator{pool: pool, client: client, clock: clock, cooldown: cooldown, observer: observer}
}

// AttemptOrder is fresh credentials followed by cooling ones, each group in load
// order. Cooling credentials stay in the list as a last resort.
func (r *Rotator) AttemptOrder(now time.Time) []domain.Credential {
	fresh, cooling := r.pool.Partition(now)
	return append(fresh, cooling...)
}

// Verify returns the first successful provider payload. Per-attempt failures are
// absorbed into cooldown state; only total exhaustion is returned as an error.
func (r *Rotator) Verify(ctx context.Context, gstin string) (domain.ProviderResponse, error) {
	if r.pool.Len() == 0 {
		return domain.ProviderResponse{}, domain.ErrNoCredentialsConfigured
	}

	ordered := r.AttemptOrder(r.clock.Now())

	var last domain.Outcome
	for _, credential := range ordered {
		outcome := r.client.Call(ctx, credential, gstin)
		r.observer.AttemptFinished(outcome)

		if outcome.IsSuccess() {
			return domain.ProviderResponse{Credential: credential, Payload: outcome.Payload}, nil
		}
		last = outcome

		decision := domain.DecideCooldown(outcome)
		if !decision.Cool {
			log.Info(ctx, "provider attempt failed", "prefix", credential.Prefix(), "reason", decision.Reason.Tag(), "outcome", outcome.String())
			continue
		}

		until := r.pool.MarkCooldown(credential, r.clock.Now(), decision.Reason, r.cooldown)
		r.observer.CooldownMarked(decision.Reason)
		log.Warn(ctx, "credential marked on cooldown",
			"prefix", credential.Prefix(),
			"until", until.UTC().Format(time.RFC3339),
			"reason", decision.Reason.Tag(),
			"outcome", outcome.String())
	}

	return domain.ProviderResponse{}, &domain.ExhaustedError{Attempts: len(ordered), Last: last}
}
