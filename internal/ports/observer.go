package ports

import "github.com/bnema/gstin-gateway/internal/domain"

// VerificationObserver receives verification events, typically for metrics.
type VerificationObserver interface {
	AttemptFinished(outcome domain.Outcome)
	CooldownMarked(reason domain.FailureReason)
	CacheLookup(hit bool)
	VerificationFinished(source domain.VerificationSource, err error)
}

type NopObserver struct{}

func (NopObserver) AttemptFinished(domain.Outcome)                        {}
func (NopObserver) CooldownMarked(domain.FailureReason)                   {}
func (NopObserver) CacheLookup(bool)                                      {}
func (NopObserver) VerificationFinished(domain.VerificationSource, error) {}
