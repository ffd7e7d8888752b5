package service

import (
	"context"
	"errors"
	"time"

	"certledger/internal/credential/models"
	"certledger/internal/credential/store"
	"certledger/internal/ledger"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/hashing"
)

// Issue validates a new-credential request, ensures both parties are
// chain-registered, records the credential hash on-chain, then mirrors it
// locally.
func (s *Service) Issue(ctx context.Context, req models.IssueRequest) (*models.IssuedCredential, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	student, err := s.students.FindByWallet(ctx, req.StudentWallet)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnregisteredStudent, "student wallet has no reference record")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "student lookup failed")
	}

	contentHash := hashing.ContentHash(req.Document)
	credentialHash, err := hashing.CredentialHash(req.Document, req.StudentWallet, req.IssuerWallet)
	if err != nil {
		return nil, err
	}

	if _, err := s.issued.FindByCredentialHash(ctx, credentialHash); err == nil {
		return nil, dErrors.New(dErrors.CodeDuplicateKey, "credential hash already issued")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credential lookup failed")
	}

	if err := s.ensureIssuerVerified(ctx, req); err != nil {
		return nil, err
	}
	if err := s.ensureStudentRegistered(ctx, req, student.FullName(), student.Handle, student.Course, student.Email); err != nil {
		return nil, err
	}

	stored, err := s.uploader.Upload(ctx, req.Document, "credentials", req.Filename)
	if err != nil {
		return nil, err
	}

	start := s.now()
	receipt, err := s.ledger.IssueCertificate(ctx, req.StudentWallet, credentialHash)
	s.observeChainCall(start)
	if err != nil {
		// Insufficient funds keeps its own code so operators can alert on
		// funding separately from contract faults.
		return nil, err
	}

	cred := &models.IssuedCredential{
		CredentialHash: credentialHash,
		ContentHash:    contentHash,
		Name:           req.Name,
		Type:           req.Type,
		IssuerWallet:   req.IssuerWallet,
		StudentWallet:  req.StudentWallet,
		IssueDate:      s.now(),
		ExpiryDate:     req.ExpiryDate,
		Signature:      req.Signature,
		StorageURL:     stored.URL,
		Score:          req.Score,
		Status:         models.StatusIssued,
		TxHash:         receipt.TxHash,
	}

	if err := s.issued.Insert(ctx, cred); err != nil {
		if errors.Is(err, store.ErrDuplicateHash) {
			// A concurrent issuance won the store race after this one already
			// mined a transaction. The extra on-chain issuance is the accepted
			// eventual-consistency gap; record it for the reconciliation job.
			s.logWarn(ctx, "duplicate credential hash after chain write",
				"tx_hash", receipt.TxHash,
				"credential_hash", hashing.Fingerprint(credentialHash),
			)
			return nil, dErrors.New(dErrors.CodeDuplicateKey, "credential hash already issued")
		}
		// The chain holds a record the store does not. Log everything the
		// offline reconciliation job needs to backfill it.
		s.logError(ctx, "chain write not mirrored locally",
			"tx_hash", receipt.TxHash,
			"student_wallet", req.StudentWallet,
			"issuer_wallet", req.IssuerWallet,
			"credential_hash", credentialHash,
			"content_hash", contentHash,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncrementChainDivergence()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeChainDiverged,
			"credential issued on-chain but local persistence failed")
	}

	s.logInfo(ctx, "credential issued",
		"credential_hash", hashing.Fingerprint(credentialHash),
		"student_wallet", req.StudentWallet,
		"tx_hash", receipt.TxHash,
	)
	if s.metrics != nil {
		s.metrics.IncrementIssued()
	}
	return cred, nil
}

// ensureIssuerVerified checks the issuer's on-chain verification and attempts
// admin-signed auto-registration when missing. An unverified issuer never
// proceeds to a credential write.
func (s *Service) ensureIssuerVerified(ctx context.Context, req models.IssueRequest) error {
	verified, err := s.ledger.IsInstitutionVerified(ctx, req.IssuerWallet)
	if err != nil {
		return err
	}
	if verified {
		return nil
	}
	if _, err := s.ledger.RegisterInstitution(ctx, req.IssuerWallet); err != nil {
		// Recode, not Wrap: the chain fault behind a failed registration still
		// means the issuer is unverified, and callers key off that code.
		return dErrors.Recode(err, dErrors.CodeUnverifiedIssuer,
			"issuer is not chain-verified and auto-registration failed")
	}
	s.logInfo(ctx, "issuer auto-registered on-chain", "issuer_wallet", req.IssuerWallet)
	return nil
}

// ensureStudentRegistered checks the student's on-chain registration and
// attempts auto-registration from reference data when missing.
func (s *Service) ensureStudentRegistered(ctx context.Context, req models.IssueRequest, name, handle, course, email string) error {
	registered, err := s.ledger.IsStudentRegistered(ctx, req.StudentWallet)
	if err != nil {
		return err
	}
	if registered {
		return nil
	}
	if _, err := s.ledger.RegisterStudent(ctx, ledger.StudentRegistration{
		Name:   name,
		Handle: handle,
		Course: course,
		Email:  email,
	}); err != nil {
		return dErrors.Recode(err, dErrors.CodeUnregisteredStudent,
			"student is not chain-registered and auto-registration failed")
	}
	s.logInfo(ctx, "student auto-registered on-chain", "student_wallet", req.StudentWallet)
	return nil
}

func (s *Service) observeChainCall(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveChainCall(start)
	}
}
