package application

import (
	"time"

	"github.com/bnema/gstin-gateway/internal/domain"
)

// Verification is the answer to one verify request. Credential is nil when the
// result came from the cache.
type Verification struct {
	Source     domain.VerificationSource
	Credential *domain.Credential
	Result     domain.VerificationResult
}

func (v Verification) FromCache() bool {
	return v.Source == domain.SourceCache
}

type KeyState struct {
	Prefix        string
	Label         string
	Cooled        bool
	CooldownUntil time.Time
	LastError     *string
}

type KeyStateReport struct {
	Now  time.Time
	Keys []KeyState
}

// ConfiguredCredential describes a credential without resolving secret references.
type ConfiguredCredential struct {
	Prefix    string
	Label     string
	Source    domain.CredentialSource
	SecretRef string
	Disabled  bool
}
