package domain

import (
	"strings"
	"sync"
	"time"
)

type CredentialSource string

const (
	CredentialSourceEnv  CredentialSource = "env"
	CredentialSourceFile CredentialSource = "file"
)

const (
	credentialPrefixLen  = 8
	credentialPrefixMask = "••"
)

// Credential is one provider API key. Token is secret and must only leave the
// process through Prefix.
type Credential struct {
	Token  string
	Label  string
	Source CredentialSource
}

// Prefix returns a short non-secret identifier for logs and diagnostics.
func (c Credential) Prefix() string {
	return MaskToken(c.Token)
}

func MaskToken(token string) string {
	n := credentialPrefixLen
	if len(token) <= credentialPrefixLen {
		n = len(token) / 2
	}
	return token[:n] + credentialPrefixMask
}

// CredentialState is a point-in-time copy of one credential's cooldown bookkeeping.
type CredentialState struct {
	Credential    Credential
	CooldownUntil time.Time
	LastFailure   *FailureReason
}

func (s CredentialState) IsCooling(now time.Time) bool {
	return s.CooldownUntil.After(now)
}

type credentialState struct {
	cooldownUntil time.Time
	lastFailure   *FailureReason
}

// CredentialPool holds the fixed, ordered credential set and its cooldown state.
// It is safe for concurrent use; no lock is held outside of a single state read or write.
type CredentialPool struct {
	mu          sync.RWMutex
	credentials []Credential
	states      map[string]*credentialState
}

// NewCredentialPool drops empty tokens and repeated tokens, keeping the first occurrence.
func NewCredentialPool(credentials []Credential) *CredentialPool {
	pool := &CredentialPool{
		credentials: make([]Credential, 0, len(credentials)),
		states:      make(map[string]*credentialState, len(credentials)),
	}

	for _, credential := range credentials {
		credential.Token = strings.TrimSpace(credential.Token)
		if credential.Token == "" {
			continue
		}
		if _, ok := pool.states[credential.Token]; ok {
			continue
		}
		pool.states[credential.Token] = &credentialState{}
		pool.credentials = append(pool.credentials, credential)
	}

	return pool
}

func (p *CredentialPool) Len() int {
	return len(p.credentials)
}

// List returns the credentials in load order.
func (p *CredentialPool) List() []Credential {
	out := make([]Credential, len(p.credentials))
	copy(out, p.credentials)
	return out
}

func (p *CredentialPool) IsCooling(credential Credential, now time.Time) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	state, ok := p.states[credential.Token]
	if !ok {
		return false
	}
	return state.cooldownUntil.After(now)
}

// MarkCooldown puts the credential into cooldown until now+duration, replacing any
// earlier window. Unknown credentials are ignored and report a zero time.
func (p *CredentialPool) MarkCooldown(credential Credential, now time.Time, reason FailureReason, duration time.Duration) time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, ok := p.states[credential.Token]
	if !ok {
		return time.Time{}
	}

	until := now.Add(duration)
	state.cooldownUntil = until
	state.lastFailure = &reason

	return until
}

// Partition splits the pool into fresh and cooling credentials, each in load order.
func (p *CredentialPool) Partition(now time.Time) (fresh []Credential, cooling []Credential) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	fresh = make([]Credential, 0, len(p.credentials))
	for _, credential := range p.credentials {
		if p.states[credential.Token].cooldownUntil.After(now) {
			cooling = append(cooling, credential)
			continue
		}
		fresh = append(fresh, credential)
	}

	return fresh, cooling
}

func (p *CredentialPool) Snapshot() []CredentialState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]CredentialState, 0, len(p.credentials))
	for _, credential := range p.credentials {
		state := p.states[credential.Token]
		snapshot := CredentialState{Credential: credential, CooldownUntil: state.cooldownUntil}
		if state.lastFailure != nil {
			reason := *state.lastFailure
			snapshot.LastFailure = &reason
		}
		out = append(out, snapshot)
	}

	return out
}
