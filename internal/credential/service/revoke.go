package service

import (
	"context"
	"errors"

	"certledger/internal/credential/models"
	"certledger/internal/credential/store"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/hashing"
)

// Revoke revokes an issued credential on-chain then marks the local record.
// Revoking an already revoked credential succeeds without a second chain
// transaction.
func (s *Service) Revoke(ctx context.Context, hash domain.CredentialHash) (*models.IssuedCredential, error) {
	cred, err := s.issued.FindByCredentialHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credential lookup failed")
	}

	if cred.Revoked() {
		return cred, nil
	}

	start := s.now()
	receipt, err := s.ledger.RevokeCertificate(ctx, cred.StudentWallet, cred.CredentialHash)
	s.observeChainCall(start)
	if err != nil {
		// The local record stays issued; no partial-revoked state.
		return nil, err
	}

	if err := s.issued.MarkRevoked(ctx, cred.CredentialHash); err != nil {
		s.logError(ctx, "chain revocation not mirrored locally",
			"tx_hash", receipt.TxHash,
			"credential_hash", cred.CredentialHash,
			"student_wallet", cred.StudentWallet,
			"issuer_wallet", cred.IssuerWallet,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncrementChainDivergence()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeChainDiverged,
			"credential revoked on-chain but local update failed")
	}

	cred.Status = models.StatusRevoked
	s.logInfo(ctx, "credential revoked",
		"credential_hash", hashing.Fingerprint(cred.CredentialHash),
		"tx_hash", receipt.TxHash,
	)
	if s.metrics != nil {
		s.metrics.IncrementRevoked()
	}
	return cred, nil
}
