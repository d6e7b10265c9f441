package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/gstin-gateway/internal/domain"
	"github.com/bnema/gstin-gateway/internal/log"
	"github.com/bnema/gstin-gateway/internal/ports"
)

const DefaultCacheTTL = time.Hour

type providerVerifier interface {
	Verify(ctx context.Context, gstin string) (domain.ProviderResponse, error)
}

// VerificationService answers verify requests from the cache or, on a miss, from
// the provider through the rotator.
type VerificationService struct {
	cache    ports.ResultCache
	verifier providerVerifier
	pool     *domain.CredentialPool
	clock    ports.Clock
	ttl      time.Duration
	observer ports.VerificationObserver
}

func NewVerificationService(cache ports.ResultCache, verifier providerVerifier, pool *domain.CredentialPool, clock ports.Clock, ttl time.Duration, observer ports.VerificationObserver) *VerificationService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}

	return &VerificationService{
		cache:    cache,
		verifier: verifier,
		pool:     pool,
		clock:    clock,
		ttl:      ttl,
		observer: observer,
	}
}

// Verify normalizes the GSTIN, serves it from the cache when possible and otherwise
// runs a full credential rotation. Once the rotation starts it is not cancelled by ctx.
func (s *VerificationService) Verify(ctx context.Context, rawGSTIN string) (Verification, error) {
	gstin := domain.NormalizeGSTIN(rawGSTIN)
	if err := domain.ValidateGSTIN(gstin); err != nil {
		return Verification{}, err
	}

	cached, hit := s.cache.Get(ctx, gstin)
	s.observer.CacheLookup(hit)
	if hit {
		s.observer.VerificationFinished(domain.SourceCache, nil)
		return Verification{Source: domain.SourceCache, Result: cached}, nil
	}

	response, err := s.verifier.Verify(context.WithoutCancel(ctx), gstin)
	if err != nil {
		s.observer.VerificationFinished(domain.SourceProvider, err)
		log.Error(ctx, "gstin verification failed", err, "gstin", gstin)
		return Verification{}, fmt.Errorf("verify gstin %s: %w", gstin, err)
	}

	result := domain.NormalizeResult(gstin, response.Payload)
	s.cache.Set(ctx, gstin, result, s.ttl)
	s.observer.VerificationFinished(domain.SourceProvider, nil)

	credential := response.Credential
	return Verification{Source: domain.SourceProvider, Credential: &credential, Result: result}, nil
}

func (s *VerificationService) KeyStates() KeyStateReport {
	now := s.clock.Now()
	snapshot := s.pool.Snapshot()

	report := KeyStateReport{Now: now, Keys: make([]KeyState, 0, len(snapshot))}
	for _, state := range snapshot {
		key := KeyState{
			Prefix:        state.Credential.Prefix(),
			Label:         state.Credential.Label,
			Cooled:        state.IsCooling(now),
			CooldownUntil: state.CooldownUntil,
		}
		if state.LastFailure != nil {
			tag := state.LastFailure.Tag()
			key.LastError = &tag
		}
		report.Keys = append(report.Keys, key)
	}

	return report
}

func (s *VerificationService) CredentialCount() int {
	return s.pool.Len()
}
