// Package service orchestrates issuance, revocation, and verification.
//
// The ordering invariant throughout: the chain write happens before the
// store insert, never the reverse. Reversing a store write is cheap and
// local; reversing a chain write costs gas and is not equivalent to "never
// happened".
package service

import (
	"context"
	"log/slog"
	"time"

	contracts "certledger/contracts/ledger"
	"certledger/internal/credential/metrics"
	"certledger/internal/credential/store"
	"certledger/internal/ledger"
	partymodels "certledger/internal/party/models"
	"certledger/internal/upload"
	"certledger/pkg/domain"
)

// Ledger is the slice of the ledger gateway the credential service needs.
type Ledger interface {
	IsInstitutionVerified(ctx context.Context, addr domain.WalletAddress) (bool, error)
	RegisterInstitution(ctx context.Context, addr domain.WalletAddress) (*contracts.Receipt, error)
	IsStudentRegistered(ctx context.Context, addr domain.WalletAddress) (bool, error)
	RegisterStudent(ctx context.Context, reg ledger.StudentRegistration) (*contracts.Receipt, error)
	IssueCertificate(ctx context.Context, student domain.WalletAddress, hash domain.CredentialHash) (*contracts.Receipt, error)
	RevokeCertificate(ctx context.Context, student domain.WalletAddress, hash domain.CredentialHash) (*contracts.Receipt, error)
	VerifyCertificate(ctx context.Context, student domain.WalletAddress, hash string) (*ledger.VerifyOutcome, error)
}

// StudentDirectory resolves student reference data by wallet.
type StudentDirectory interface {
	FindByWallet(ctx context.Context, wallet domain.WalletAddress) (*partymodels.Student, error)
}

// InstituteDirectory resolves institute reference data by wallet.
type InstituteDirectory interface {
	FindByWallet(ctx context.Context, wallet domain.WalletAddress) (*partymodels.Institute, error)
}

type Service struct {
	issued     store.IssuedStore
	submitted  store.SubmittedStore
	ledger     Ledger
	uploader   upload.Uploader
	students   StudentDirectory
	institutes InstituteDirectory
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the timestamp source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(issued store.IssuedStore, submitted store.SubmittedStore, chain Ledger, uploader upload.Uploader, students StudentDirectory, institutes InstituteDirectory, opts ...Option) *Service {
	s := &Service{
		issued:     issued,
		submitted:  submitted,
		ledger:     chain,
		uploader:   uploader,
		students:   students,
		institutes: institutes,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) logError(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, msg, args...)
	}
}

func (s *Service) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}
