package store

import (
	"context"

	"certledger/internal/credential/models"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// ErrNotFound is returned when a credential record cannot be located.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// ErrDuplicateHash is returned when an issued credential hash already exists.
// The uniqueness constraint on the credential hash is the sole serialization
// point between racing issuance requests.
var ErrDuplicateHash = dErrors.New(dErrors.CodeDuplicateKey, "credential hash already exists")

// IssuedStore persists issued credentials.
type IssuedStore interface {
	Insert(ctx context.Context, cred *models.IssuedCredential) error
	FindByCredentialHash(ctx context.Context, hash domain.CredentialHash) (*models.IssuedCredential, error)
	FindByContentHash(ctx context.Context, hash domain.ContentHash) (*models.IssuedCredential, error)
	FindByStudent(ctx context.Context, wallet domain.WalletAddress) ([]*models.IssuedCredential, error)
	// MarkRevoked transitions status to revoked. Idempotent: revoking an
	// already revoked record succeeds without modification.
	MarkRevoked(ctx context.Context, hash domain.CredentialHash) error
}

// SubmittedStore persists student submissions.
type SubmittedStore interface {
	Insert(ctx context.Context, sub *models.SubmittedCredential) error
	FindByID(ctx context.Context, id domain.SubmissionID) (*models.SubmittedCredential, error)
	FindByVerifier(ctx context.Context, wallet domain.WalletAddress) ([]*models.SubmittedCredential, error)
	FindByStudent(ctx context.Context, wallet domain.WalletAddress) ([]*models.SubmittedCredential, error)
}
