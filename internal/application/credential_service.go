package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/gstin-gateway/internal/domain"
	"github.com/bnema/gstin-gateway/internal/ports"
)

var ErrCredentialsFileNotConfigured = errors.New("credentials file is not configured")

// CredentialService assembles the pool's credential list from the environment and
// the optional credentials file.
type CredentialService struct {
	repo    ports.CredentialRepository
	secrets ports.SecretStore
	clock   ports.Clock
}

// NewCredentialService accepts a nil repo (no credentials file) and a nil secret
// store (secret references cannot be resolved).
func NewCredentialService(repo ports.CredentialRepository, secrets ports.SecretStore, clock ports.Clock) *CredentialService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &CredentialService{repo: repo, secrets: secrets, clock: clock}
}

// Load returns environment credentials first, then enabled file entries in file
// order. Secret references are resolved through the secret store.
func (s *CredentialService) Load(ctx context.Context, envTokens []string) ([]domain.Credential, error) {
	credentials := make([]domain.Credential, 0, len(envTokens))
	for i, token := range envTokens {
		credentials = append(credentials, domain.Credential{
			Token:  token,
			Label:  fmt.Sprintf("env-%d", i+1),
			Source: domain.CredentialSourceEnv,
		})
	}

	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.Disabled {
			continue
		}

		token := strings.TrimSpace(entry.Token)
		if ref := strings.TrimSpace(entry.SecretRef); ref != "" {
			if s.secrets == nil {
				return nil, fmt.Errorf("credential %q: no secret store to resolve %q", entry.Label, ref)
			}
			token, err = s.secrets.Get(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("credential %q: resolve secret: %w", entry.Label, err)
			}
		}

		credentials = append(credentials, domain.Credential{
			Token:  strings.TrimSpace(token),
			Label:  entry.Label,
			Source: domain.CredentialSourceFile,
		})
	}

	return credentials, nil
}

func (s *CredentialService) List(ctx context.Context, envTokens []string) ([]ConfiguredCredential, error) {
	listed := make([]ConfiguredCredential, 0, len(envTokens))
	for i, token := range envTokens {
		listed = append(listed, ConfiguredCredential{
			Prefix: domain.MaskToken(token),
			Label:  fmt.Sprintf("env-%d", i+1),
			Source: domain.CredentialSourceEnv,
		})
	}

	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		item := ConfiguredCredential{
			Label:     entry.Label,
			Source:    domain.CredentialSourceFile,
			SecretRef: entry.SecretRef,
			Disabled:  entry.Disabled,
		}
		if entry.Token != "" {
			item.Prefix = domain.MaskToken(entry.Token)
		}
		listed = append(listed, item)
	}

	return listed, nil
}

func (s *CredentialService) Add(ctx context.Context, cmd AddCredentialCommand) (domain.CredentialEntry, error) {
	if s.repo == nil {
		return domain.CredentialEntry{}, ErrCredentialsFileNotConfigured
	}

	entry := domain.CredentialEntry{
		Label:     strings.TrimSpace(cmd.Label),
		Token:     strings.TrimSpace(cmd.Token),
		SecretRef: strings.TrimSpace(cmd.SecretRef),
		AddedAt:   s.clock.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return domain.CredentialEntry{}, err
	}

	existing, err := s.entries(ctx)
	if err != nil {
		return domain.CredentialEntry{}, err
	}
	for _, other := range existing {
		if other.Label == entry.Label {
			return domain.CredentialEntry{}, fmt.Errorf("%w: %q", domain.ErrDuplicateCredentialLabel, entry.Label)
		}
	}

	if err := s.repo.Save(ctx, entry); err != nil {
		return domain.CredentialEntry{}, fmt.Errorf("save credential: %w", err)
	}

	return entry, nil
}

func (s *CredentialService) entries(ctx context.Context) ([]domain.CredentialEntry, error) {
	if s.repo == nil {
		return nil, nil
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialsFileNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	return entries, nil
}
