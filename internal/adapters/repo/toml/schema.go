package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version     int                `toml:"version"`
	Credentials []credentialSchema `toml:"credentials"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported credentials schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type credentialSchema struct {
	Label     string `toml:"label"`
	Token     string `toml:"token,omitempty"`
	SecretRef string `toml:"secret_ref,omitempty"`
	Disabled  bool   `toml:"disabled,omitempty"`
	AddedAt   string `toml:"added_at,omitempty"`
}
