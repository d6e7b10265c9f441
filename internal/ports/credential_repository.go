package ports

import (
	"context"

	"github.com/bnema/gstin-gateway/internal/domain"
)

type CredentialRepository interface {
	List(ctx context.Context) ([]domain.CredentialEntry, error)
	Save(ctx context.Context, entry domain.CredentialEntry) error
}
