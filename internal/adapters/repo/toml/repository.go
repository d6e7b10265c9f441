package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/gstin-gateway/internal/domain"
	"github.com/bnema/gstin-gateway/internal/ports"
)

const (
	CredentialsPathKey = "credentials.path"

	credentialsFileMode   = 0o600
	credentialsDirMode    = 0o700
	credentialsConfigDir  = ".config/gstgw"
	credentialsConfigFile = "credentials.toml"
	tempFilePattern       = ".credentials-*.toml.tmp"
)

// CredentialRepository stores provider credential entries in a versioned TOML file.
// Entries keep file order, which becomes the pool's attempt order.
type CredentialRepository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.CredentialRepository = (*CredentialRepository)(nil)

func NewCredentialRepository(cfg *viper.Viper) (*CredentialRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	if cfg.GetString(CredentialsPathKey) == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SetDefault(CredentialsPathKey, filepath.Join(homeDir, credentialsConfigDir, credentialsConfigFile))
	}

	path, err := normalizePath(cfg.GetString(CredentialsPathKey))
	if err != nil {
		return nil, err
	}

	return &CredentialRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *CredentialRepository) Path() string {
	return r.path
}

// List returns domain.ErrCredentialsFileNotFound when the file does not exist yet.
func (r *CredentialRepository) List(ctx context.Context) ([]domain.CredentialEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, found, err := r.readSchema()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrCredentialsFileNotFound, r.path)
	}

	entries := make([]domain.CredentialEntry, 0, len(file.Credentials))
	for _, entry := range file.Credentials {
		entries = append(entries, fromSchema(entry))
	}

	return entries, nil
}

// Save replaces the entry with the same label or appends a new one.
func (r *CredentialRepository) Save(ctx context.Context, entry domain.CredentialEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, _, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(entry)
	updated := false
	for i := range file.Credentials {
		if file.Credentials[i].Label == encoded.Label {
			file.Credentials[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Credentials = append(file.Credentials, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *CredentialRepository) readSchema() (fileSchema, bool, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, false, nil
		}
		return fileSchema{}, false, fmt.Errorf("read credentials file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, false, fmt.Errorf("decode credentials file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, false, err
	}
	file.applyDefaults()

	return file, true, nil
}

func (r *CredentialRepository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), credentialsDirMode); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode credentials file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp credentials file: %w", err)
	}
	if err := tempFile.Chmod(credentialsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp credentials file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp credentials file: %w", err)
	}
	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace credentials file: %w", err)
	}
	cleanup = false

	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve credentials path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

// lockForPath shares one lock between repositories opened on the same file.
func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(entry domain.CredentialEntry) credentialSchema {
	return credentialSchema{
		Label:     entry.Label,
		Token:     entry.Token,
		SecretRef: entry.SecretRef,
		Disabled:  entry.Disabled,
		AddedAt:   formatTime(entry.AddedAt),
	}
}

func fromSchema(entry credentialSchema) domain.CredentialEntry {
	return domain.CredentialEntry{
		Label:     entry.Label,
		Token:     entry.Token,
		SecretRef: entry.SecretRef,
		Disabled:  entry.Disabled,
		AddedAt:   parseTime(entry.AddedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
