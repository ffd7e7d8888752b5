// Package models holds the credential records and commands.
//
// An issued credential is keyed by the issuer-computed credential hash; a
// submitted credential carries a verifier-computed credential hash for the
// same bytes. The two values differ for the same document, so the content
// hash is the only reliable cross-party join key.
package models

import (
	"time"

	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// Status of an issued credential. Revocation is terminal.
const (
	StatusIssued  = "issued"
	StatusRevoked = "revoked"
)

// IssuedCredential mirrors an on-chain issuance locally.
type IssuedCredential struct {
	CredentialHash domain.CredentialHash `bson:"_id"`
	ContentHash    domain.ContentHash    `bson:"contentHash"`
	Name           string                `bson:"name"`
	Type           string                `bson:"type"`
	IssuerWallet   domain.WalletAddress  `bson:"issuerWallet"`
	StudentWallet  domain.WalletAddress  `bson:"studentWallet"`
	IssueDate      time.Time             `bson:"issueDate"`
	ExpiryDate     *time.Time            `bson:"expiryDate,omitempty"`
	Signature      string                `bson:"signature,omitempty"`
	StorageURL     string                `bson:"storageUrl"`
	Score          float64               `bson:"score"`
	Status         string                `bson:"status"`
	TxHash         string                `bson:"txHash,omitempty"`
}

// Revoked reports whether the credential has been revoked.
func (c *IssuedCredential) Revoked() bool {
	return c.Status == StatusRevoked
}

// SubmittedCredential is a student's upload awaiting a verifier's review.
type SubmittedCredential struct {
	ID              domain.SubmissionID   `bson:"_id"`
	StudentWallet   domain.WalletAddress  `bson:"studentWallet"`
	VerifierWallet  domain.WalletAddress  `bson:"verifierWallet"`
	CredentialHash  domain.CredentialHash `bson:"credentialHash"`
	ContentHash     domain.ContentHash    `bson:"contentHash"`
	SubmissionDate  time.Time             `bson:"submissionDate"`
	StorageURL      string                `bson:"storageUrl"`
	StoragePublicID string                `bson:"storagePublicId"`
	FileSize        int64                 `bson:"fileSize"`
	MimeType        string                `bson:"mimeType"`
}

// IssueRequest is the validated command for credential issuance. Document
// bytes arrive alongside, not inside, the metadata.
type IssueRequest struct {
	Name          string
	Type          string
	IssuerWallet  domain.WalletAddress
	StudentWallet domain.WalletAddress
	ExpiryDate    *time.Time
	Signature     string
	Score         float64
	Document      []byte
	Filename      string
}

// Validate enforces required fields and the document payload.
func (r IssueRequest) Validate() error {
	if r.Name == "" || r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "credential name and type are required")
	}
	if r.IssuerWallet.IsNil() || r.StudentWallet.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "issuer and student wallet addresses are required")
	}
	if len(r.Document) == 0 {
		return dErrors.New(dErrors.CodeValidation, "document bytes are required")
	}
	return nil
}

// SubmitRequest is the validated command for a student submission.
type SubmitRequest struct {
	StudentWallet  domain.WalletAddress
	VerifierWallet domain.WalletAddress
	Document       []byte
	Filename       string
	MimeType       string
}

// Validate enforces required fields and the document payload.
func (r SubmitRequest) Validate() error {
	if r.StudentWallet.IsNil() || r.VerifierWallet.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "student and verifier wallet addresses are required")
	}
	if len(r.Document) == 0 {
		return dErrors.New(dErrors.CodeValidation, "document bytes are required")
	}
	return nil
}

// VerificationSource tags where a verdict's evidence came from.
type VerificationSource string

const (
	// SourceLocal means a local issuance record matched and the chain
	// confirmed it.
	SourceLocal VerificationSource = "local"
	// SourceChainOnly means the chain knows the credential but no local
	// issuance record exists.
	SourceChainOnly VerificationSource = "chain-only"
	// SourceNotFound means neither the store nor the chain knows the
	// document; a terminal outcome, not an error.
	SourceNotFound VerificationSource = "not-found"
)

// VerificationResult merges on-chain state with local metadata.
type VerificationResult struct {
	Source        VerificationSource    `json:"source"`
	IsValid       bool                  `json:"is_valid"`
	IsRevoked     bool                  `json:"is_revoked"`
	IssuedBy      domain.WalletAddress  `json:"issued_by,omitempty"`
	IssuerName    string                `json:"issuer_name,omitempty"`
	IssuedAt      time.Time             `json:"issued_at,omitzero"`
	StudentWallet domain.WalletAddress  `json:"student_wallet,omitempty"`
	StudentName   string                `json:"student_name,omitempty"`
	Credential    *IssuedCredential     `json:"credential,omitempty"`
	Submission    *SubmittedCredential  `json:"submission,omitempty"`
	SubmissionID  domain.SubmissionID   `json:"submission_id,omitempty"`
	ContentHash   domain.ContentHash    `json:"content_hash,omitempty"`
	CheckedAt     time.Time             `json:"checked_at"`
}

// NotIssued reports whether the document was never issued.
func (r *VerificationResult) NotIssued() bool {
	return r.Source == SourceNotFound
}

// HistoryEntry pairs a submission with its verification outcome. Result is
// nil when the chain could not be consulted for that entry.
type HistoryEntry struct {
	Submission *SubmittedCredential `json:"submission"`
	Result     *VerificationResult  `json:"result,omitempty"`
	Error      string               `json:"error,omitempty"`
}
