package store

import (
	"context"

	"certledger/internal/party/models"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// ErrNotFound is returned when a party record cannot be located.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// ErrDuplicate is returned when a code or wallet address is already taken.
var ErrDuplicate = dErrors.New(dErrors.CodeDuplicateKey, "record already exists")

// StudentStore persists student reference records.
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	FindByWallet(ctx context.Context, wallet domain.WalletAddress) (*models.Student, error)
	FindByCode(ctx context.Context, code string) (*models.Student, error)
}

// InstituteStore persists issuing institutions.
type InstituteStore interface {
	Create(ctx context.Context, institute *models.Institute) error
	FindByWallet(ctx context.Context, wallet domain.WalletAddress) (*models.Institute, error)
}

// VerifierStore persists verifying organizations.
type VerifierStore interface {
	Create(ctx context.Context, verifier *models.Verifier) error
	FindByWallet(ctx context.Context, wallet domain.WalletAddress) (*models.Verifier, error)
}
