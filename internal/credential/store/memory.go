package store

import (
	"context"
	"sort"
	"sync"

	"certledger/internal/credential/models"
	"certledger/pkg/domain"
)

// InMemoryIssuedStore stores issued credentials in memory for tests and demos.
type InMemoryIssuedStore struct {
	mu    sync.RWMutex
	byKey map[domain.CredentialHash]*models.IssuedCredential
}

func NewInMemoryIssuedStore() *InMemoryIssuedStore {
	return &InMemoryIssuedStore{byKey: make(map[domain.CredentialHash]*models.IssuedCredential)}
}

func (s *InMemoryIssuedStore) Insert(_ context.Context, cred *models.IssuedCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[cred.CredentialHash]; ok {
		return ErrDuplicateHash
	}
	cp := *cred
	s.byKey[cred.CredentialHash] = &cp
	return nil
}

func (s *InMemoryIssuedStore) FindByCredentialHash(_ context.Context, hash domain.CredentialHash) (*models.IssuedCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cred, ok := s.byKey[hash]; ok {
		cp := *cred
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryIssuedStore) FindByContentHash(_ context.Context, hash domain.ContentHash) (*models.IssuedCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cred := range s.byKey {
		if cred.ContentHash == hash {
			cp := *cred
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryIssuedStore) FindByStudent(_ context.Context, wallet domain.WalletAddress) ([]*models.IssuedCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.IssuedCredential
	for _, cred := range s.byKey {
		if cred.StudentWallet == wallet {
			cp := *cred
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.Before(out[j].IssueDate) })
	return out, nil
}

func (s *InMemoryIssuedStore) MarkRevoked(_ context.Context, hash domain.CredentialHash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.byKey[hash]
	if !ok {
		return ErrNotFound
	}
	cred.Status = models.StatusRevoked
	return nil
}

// InMemorySubmittedStore stores submissions in memory for tests and demos.
type InMemorySubmittedStore struct {
	mu   sync.RWMutex
	byID map[domain.SubmissionID]*models.SubmittedCredential
}

func NewInMemorySubmittedStore() *InMemorySubmittedStore {
	return &InMemorySubmittedStore{byID: make(map[domain.SubmissionID]*models.SubmittedCredential)}
}

func (s *InMemorySubmittedStore) Insert(_ context.Context, sub *models.SubmittedCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[sub.ID]; ok {
		return ErrDuplicateHash
	}
	cp := *sub
	s.byID[sub.ID] = &cp
	return nil
}

func (s *InMemorySubmittedStore) FindByID(_ context.Context, id domain.SubmissionID) (*models.SubmittedCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.byID[id]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *InMemorySubmittedStore) FindByVerifier(_ context.Context, wallet domain.WalletAddress) ([]*models.SubmittedCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.SubmittedCredential
	for _, sub := range s.byID {
		if sub.VerifierWallet == wallet {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sortSubmissions(out)
	return out, nil
}

func (s *InMemorySubmittedStore) FindByStudent(_ context.Context, wallet domain.WalletAddress) ([]*models.SubmittedCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.SubmittedCredential
	for _, sub := range s.byID {
		if sub.StudentWallet == wallet {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sortSubmissions(out)
	return out, nil
}

func sortSubmissions(subs []*models.SubmittedCredential) {
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].SubmissionDate.Before(subs[j].SubmissionDate)
	})
}
