package domain

import (
	"fmt"
	"strings"
	"time"
)

// CredentialEntry is one configured credential as stored in the credentials file.
// Exactly one of Token or SecretRef is set.
type CredentialEntry struct {
	Label     string
	Token     string
	SecretRef string
	Disabled  bool
	AddedAt   time.Time
}

func (e CredentialEntry) Validate() error {
	if strings.TrimSpace(e.Label) == "" {
		return fmt.Errorf("label is required")
	}
	hasToken := strings.TrimSpace(e.Token) != ""
	hasRef := strings.TrimSpace(e.SecretRef) != ""
	if !hasToken && !hasRef {
		return fmt.Errorf("credential %q: token or secret_ref is required", e.Label)
	}
	if hasToken && hasRef {
		return fmt.Errorf("credential %q: token and secret_ref are mutually exclusive", e.Label)
	}

	return nil
}
