package service

import (
	"context"

	"certledger/internal/credential/models"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/hashing"
)

// Submit stores a student's document for a verifier's review. The credential
// hash recorded here binds the verifier's identity, not the issuer's, so it
// never matches the issued record's hash; the content hash carries the link.
func (s *Service) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmittedCredential, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	contentHash := hashing.ContentHash(req.Document)
	credentialHash, err := hashing.CredentialHash(req.Document, req.StudentWallet, req.VerifierWallet)
	if err != nil {
		return nil, err
	}

	stored, err := s.uploader.Upload(ctx, req.Document, "submissions", req.Filename)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub := &models.SubmittedCredential{
		ID:              hashing.OpaqueID(req.StudentWallet.String()+req.VerifierWallet.String()+contentHash.String(), now),
		StudentWallet:   req.StudentWallet,
		VerifierWallet:  req.VerifierWallet,
		CredentialHash:  credentialHash,
		ContentHash:     contentHash,
		SubmissionDate:  now,
		StorageURL:      stored.URL,
		StoragePublicID: stored.PublicID,
		FileSize:        int64(len(req.Document)),
		MimeType:        req.MimeType,
	}

	if err := s.submitted.Insert(ctx, sub); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store submission")
	}

	s.logInfo(ctx, "credential submitted",
		"submission_id", sub.ID,
		"student_wallet", sub.StudentWallet,
		"verifier_wallet", sub.VerifierWallet,
		"content_hash", hashing.Fingerprint(contentHash),
	)
	return sub, nil
}
