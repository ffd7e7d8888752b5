package service

import (
	"context"
	"errors"
	"time"

	contracts "certledger/contracts/ledger"
	"certledger/internal/credential/models"
	"certledger/internal/credential/store"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// Verify reconciles a submitted document against issued records.
//
// The issuer and the verifier compute different credential hashes for the
// same bytes, so the local match runs on the content hash; once an issued
// record is found, the chain is queried with the issuer-computed credential
// hash, which is the value actually registered on-chain. Without a local
// match a best-effort chain query keyed by the submitted record's own wallet
// and content hash covers credentials issued on-chain but never mirrored
// locally.
//
// "Never issued" is a terminal outcome, not an error. Chain faults are
// surfaced as infrastructure errors, never downgraded to "invalid".
func (s *Service) Verify(ctx context.Context, id domain.SubmissionID) (*models.VerificationResult, error) {
	sub, err := s.submitted.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "submitted credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "submission lookup failed")
	}
	result, err := s.verifySubmission(ctx, sub)
	if err != nil {
		return nil, err
	}
	// The single-submission response carries the full submission record;
	// history entries carry it at the entry level instead.
	result.Submission = sub
	return result, nil
}

func (s *Service) verifySubmission(ctx context.Context, sub *models.SubmittedCredential) (*models.VerificationResult, error) {
	issued, err := s.issued.FindByContentHash(ctx, sub.ContentHash)
	switch {
	case err == nil:
		return s.verifyAgainstIssued(ctx, sub, issued)
	case errors.Is(err, store.ErrNotFound):
		return s.verifyChainOnly(ctx, sub)
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "issued credential lookup failed")
	}
}

// verifyAgainstIssued queries the chain with the issued record's own wallet
// and credential hash, then merges the on-chain state with local metadata.
func (s *Service) verifyAgainstIssued(ctx context.Context, sub *models.SubmittedCredential, issued *models.IssuedCredential) (*models.VerificationResult, error) {
	start := s.now()
	out, err := s.ledger.VerifyCertificate(ctx, issued.StudentWallet, issued.CredentialHash.String())
	s.observeChainCall(start)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeContractCall, "could not verify against the chain")
	}

	// Sentinel check precedes trusting isValid: a zero-address issuer means
	// the chain never recorded this credential.
	if out.NeverIssued() {
		return s.notIssued(sub), nil
	}

	result := &models.VerificationResult{
		Source:        models.SourceLocal,
		IsValid:       out.IsValid && !out.IsRevoked,
		IsRevoked:     out.IsRevoked,
		IssuedBy:      out.IssuedBy,
		IssuedAt:      time.Unix(out.IssuedAtEpoch, 0).UTC(),
		StudentWallet: issued.StudentWallet,
		Credential:    issued,
		SubmissionID:  sub.ID,
		ContentHash:   sub.ContentHash,
		CheckedAt:     s.now(),
	}
	s.resolveNames(ctx, result, issued.IssuerWallet, issued.StudentWallet)
	s.observeVerification(result)
	return result, nil
}

// verifyChainOnly covers issuances that were mined but never mirrored
// locally. The only key available is the submitted record's own wallet and
// content hash.
func (s *Service) verifyChainOnly(ctx context.Context, sub *models.SubmittedCredential) (*models.VerificationResult, error) {
	start := s.now()
	out, err := s.ledger.VerifyCertificate(ctx, sub.StudentWallet, sub.ContentHash.String())
	s.observeChainCall(start)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeContractCall, "could not verify against the chain")
	}

	if out.NeverIssued() || (!out.IsValid && !out.IsRevoked) {
		return s.notIssued(sub), nil
	}

	result := &models.VerificationResult{
		Source:        models.SourceChainOnly,
		IsValid:       out.IsValid && !out.IsRevoked,
		IsRevoked:     out.IsRevoked,
		IssuedBy:      out.IssuedBy,
		IssuedAt:      time.Unix(out.IssuedAtEpoch, 0).UTC(),
		StudentWallet: sub.StudentWallet,
		SubmissionID:  sub.ID,
		ContentHash:   sub.ContentHash,
		CheckedAt:     s.now(),
	}
	s.resolveNames(ctx, result, out.IssuedBy, sub.StudentWallet)
	s.observeVerification(result)
	return result, nil
}

func (s *Service) notIssued(sub *models.SubmittedCredential) *models.VerificationResult {
	result := &models.VerificationResult{
		Source:       models.SourceNotFound,
		SubmissionID: sub.ID,
		ContentHash:  sub.ContentHash,
		CheckedAt:    s.now(),
	}
	s.observeVerification(result)
	return result
}

// resolveNames decorates a result with display names. Lookups are
// best-effort; a missing reference record never fails a verification.
func (s *Service) resolveNames(ctx context.Context, result *models.VerificationResult, issuer, student domain.WalletAddress) {
	if !issuer.IsNil() && issuer != domain.WalletAddress(contracts.ZeroAddress) {
		if inst, err := s.institutes.FindByWallet(ctx, issuer); err == nil {
			result.IssuerName = inst.Name
		}
	}
	if !student.IsNil() {
		if st, err := s.students.FindByWallet(ctx, student); err == nil {
			result.StudentName = st.FullName()
		}
	}
}

func (s *Service) observeVerification(result *models.VerificationResult) {
	if s.metrics != nil {
		s.metrics.ObserveVerification(string(result.Source), result.IsValid)
	}
}
