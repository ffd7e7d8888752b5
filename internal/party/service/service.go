// Package service orchestrates party registration. Institutions and students
// exist both on-chain and in the reference store; the chain write happens
// first so the store never claims a registration the ledger does not have.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	contracts "certledger/contracts/ledger"
	"certledger/internal/ledger"
	"certledger/internal/party/models"
	"certledger/internal/party/store"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// Registrar is the slice of the ledger gateway party registration needs.
type Registrar interface {
	IsInstitutionVerified(ctx context.Context, addr domain.WalletAddress) (bool, error)
	RegisterInstitution(ctx context.Context, addr domain.WalletAddress) (*contracts.Receipt, error)
	IsStudentRegistered(ctx context.Context, addr domain.WalletAddress) (bool, error)
	RegisterStudent(ctx context.Context, reg ledger.StudentRegistration) (*contracts.Receipt, error)
}

type Service struct {
	students   store.StudentStore
	institutes store.InstituteStore
	verifiers  store.VerifierStore
	registrar  Registrar
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the timestamp source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(students store.StudentStore, institutes store.InstituteStore, verifiers store.VerifierStore, registrar Registrar, opts ...Option) *Service {
	s := &Service{
		students:   students,
		institutes: institutes,
		verifiers:  verifiers,
		registrar:  registrar,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterStudent records a student on-chain and in the reference store.
func (s *Service) RegisterStudent(ctx context.Context, req models.RegisterStudentRequest) (*models.Student, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.students.FindByWallet(ctx, req.WalletAddress); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "wallet address is already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "student lookup failed")
	}

	student := &models.Student{
		Code:          req.Code,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Handle:        req.Handle,
		Email:         req.Email,
		Course:        req.Course,
		WalletAddress: req.WalletAddress,
		CreatedAt:     s.now(),
	}

	registered, err := s.registrar.IsStudentRegistered(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}
	if !registered {
		if _, err := s.registrar.RegisterStudent(ctx, ledger.StudentRegistration{
			Name:   student.FullName(),
			Handle: student.Handle,
			Course: student.Course,
			Email:  student.Email,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.students.Create(ctx, student); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, dErrors.New(dErrors.CodeConflict, "student code or wallet already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store student")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "student registered",
			"code", student.Code,
			"wallet", student.WalletAddress,
		)
	}
	return student, nil
}

// RegisterInstitute verifies an institution on-chain and records it locally.
func (s *Service) RegisterInstitute(ctx context.Context, req models.RegisterInstituteRequest) (*models.Institute, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.institutes.FindByWallet(ctx, req.WalletAddress); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "wallet address is already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "institute lookup failed")
	}

	verified, err := s.registrar.IsInstitutionVerified(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}
	if !verified {
		if _, err := s.registrar.RegisterInstitution(ctx, req.WalletAddress); err != nil {
			return nil, err
		}
	}

	institute := &models.Institute{
		Code:          req.Code,
		Name:          req.Name,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		CreatedAt:     s.now(),
	}
	if err := s.institutes.Create(ctx, institute); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, dErrors.New(dErrors.CodeConflict, "institute code or wallet already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store institute")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "institute registered",
			"code", institute.Code,
			"wallet", institute.WalletAddress,
		)
	}
	return institute, nil
}

// RegisterVerifier records a verifying organization. Verifiers have no
// on-chain presence; only the reference store is written.
func (s *Service) RegisterVerifier(ctx context.Context, req models.RegisterVerifierRequest) (*models.Verifier, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	verifier := &models.Verifier{
		Code:          req.Code,
		Name:          req.Name,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		CreatedAt:     s.now(),
	}
	if err := s.verifiers.Create(ctx, verifier); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, dErrors.New(dErrors.CodeConflict, "verifier wallet already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verifier")
	}
	return verifier, nil
}

// GetStudent returns the student registered under the wallet address.
func (s *Service) GetStudent(ctx context.Context, wallet domain.WalletAddress) (*models.Student, error) {
	student, err := s.students.FindByWallet(ctx, wallet)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "student not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "student lookup failed")
	}
	return student, nil
}

// GetInstitute returns the institute registered under the wallet address.
func (s *Service) GetInstitute(ctx context.Context, wallet domain.WalletAddress) (*models.Institute, error) {
	institute, err := s.institutes.FindByWallet(ctx, wallet)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "institute not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "institute lookup failed")
	}
	return institute, nil
}

// GetVerifier returns the verifier registered under the wallet address.
func (s *Service) GetVerifier(ctx context.Context, wallet domain.WalletAddress) (*models.Verifier, error) {
	verifier, err := s.verifiers.FindByWallet(ctx, wallet)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verifier not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "verifier lookup failed")
	}
	return verifier, nil
}
