package service

import (
	"context"

	"certledger/internal/credential/models"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// VerificationHistory re-verifies every submission addressed to the verifier.
// Entries degrade individually: a chain fault on one submission records an
// error on that entry and the rest of the history still comes back.
func (s *Service) VerificationHistory(ctx context.Context, verifier domain.WalletAddress) ([]models.HistoryEntry, error) {
	subs, err := s.submitted.FindByVerifier(ctx, verifier)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "submission history lookup failed")
	}

	entries := make([]models.HistoryEntry, 0, len(subs))
	for _, sub := range subs {
		entry := models.HistoryEntry{Submission: sub}
		result, err := s.verifySubmission(ctx, sub)
		if err != nil {
			s.logWarn(ctx, "history entry could not be verified",
				"submission_id", sub.ID,
				"error", err,
			)
			entry.Error = "could not verify"
		} else {
			entry.Result = result
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// StudentCredentials lists issued credentials for a student wallet.
func (s *Service) StudentCredentials(ctx context.Context, student domain.WalletAddress) ([]*models.IssuedCredential, error) {
	creds, err := s.issued.FindByStudent(ctx, student)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credential listing failed")
	}
	return creds, nil
}

// StudentSubmissions lists a student's own submissions.
func (s *Service) StudentSubmissions(ctx context.Context, student domain.WalletAddress) ([]*models.SubmittedCredential, error) {
	subs, err := s.submitted.FindByStudent(ctx, student)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "submission listing failed")
	}
	return subs, nil
}

// VerifierSubmissions lists submissions addressed to a verifier.
func (s *Service) VerifierSubmissions(ctx context.Context, verifier domain.WalletAddress) ([]*models.SubmittedCredential, error) {
	subs, err := s.submitted.FindByVerifier(ctx, verifier)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "submission listing failed")
	}
	return subs, nil
}
