package store

import (
	"context"
	"sync"

	"certledger/internal/party/models"
	"certledger/pkg/domain"
)

// InMemoryStudentStore stores students in memory for tests and demos.
type InMemoryStudentStore struct {
	mu        sync.RWMutex
	byCode    map[string]*models.Student
	walletIdx map[domain.WalletAddress]string
}

func NewInMemoryStudentStore() *InMemoryStudentStore {
	return &InMemoryStudentStore{
		byCode:    make(map[string]*models.Student),
		walletIdx: make(map[domain.WalletAddress]string),
	}
}

func (s *InMemoryStudentStore) Create(_ context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCode[student.Code]; ok {
		return ErrDuplicate
	}
	if _, ok := s.walletIdx[student.WalletAddress]; ok {
		return ErrDuplicate
	}
	s.byCode[student.Code] = student
	s.walletIdx[student.WalletAddress] = student.Code
	return nil
}

func (s *InMemoryStudentStore) FindByWallet(_ context.Context, wallet domain.WalletAddress) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if code, ok := s.walletIdx[wallet]; ok {
		return s.byCode[code], nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryStudentStore) FindByCode(_ context.Context, code string) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if student, ok := s.byCode[code]; ok {
		return student, nil
	}
	return nil, ErrNotFound
}

// InMemoryInstituteStore stores institutes in memory for tests and demos.
type InMemoryInstituteStore struct {
	mu       sync.RWMutex
	byWallet map[domain.WalletAddress]*models.Institute
}

func NewInMemoryInstituteStore() *InMemoryInstituteStore {
	return &InMemoryInstituteStore{byWallet: make(map[domain.WalletAddress]*models.Institute)}
}

func (s *InMemoryInstituteStore) Create(_ context.Context, institute *models.Institute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byWallet[institute.WalletAddress]; ok {
		return ErrDuplicate
	}
	s.byWallet[institute.WalletAddress] = institute
	return nil
}

func (s *InMemoryInstituteStore) FindByWallet(_ context.Context, wallet domain.WalletAddress) (*models.Institute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if institute, ok := s.byWallet[wallet]; ok {
		return institute, nil
	}
	return nil, ErrNotFound
}

// InMemoryVerifierStore stores verifiers in memory for tests and demos.
type InMemoryVerifierStore struct {
	mu       sync.RWMutex
	byWallet map[domain.WalletAddress]*models.Verifier
}

func NewInMemoryVerifierStore() *InMemoryVerifierStore {
	return &InMemoryVerifierStore{byWallet: make(map[domain.WalletAddress]*models.Verifier)}
}

func (s *InMemoryVerifierStore) Create(_ context.Context, verifier *models.Verifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byWallet[verifier.WalletAddress]; ok {
		return ErrDuplicate
	}
	s.byWallet[verifier.WalletAddress] = verifier
	return nil
}

func (s *InMemoryVerifierStore) FindByWallet(_ context.Context, wallet domain.WalletAddress) (*models.Verifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if verifier, ok := s.byWallet[wallet]; ok {
		return verifier, nil
	}
	return nil, ErrNotFound
}
