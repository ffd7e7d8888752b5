package handler

import (
	"time"

	"certledger/internal/credential/models"
)

type IssuedResponse struct {
	CredentialHash string     `json:"credential_hash"`
	ContentHash    string     `json:"content_hash"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	IssuerWallet   string     `json:"issuer_wallet"`
	StudentWallet  string     `json:"student_wallet"`
	IssueDate      time.Time  `json:"issue_date"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	StorageURL     string     `json:"storage_url"`
	Score          float64    `json:"score"`
	Status         string     `json:"status"`
	TxHash         string     `json:"tx_hash,omitempty"`
}

func toIssuedResponse(c *models.IssuedCredential) IssuedResponse {
	return IssuedResponse{
		CredentialHash: c.CredentialHash.String(),
		ContentHash:    c.ContentHash.String(),
		Name:           c.Name,
		Type:           c.Type,
		IssuerWallet:   c.IssuerWallet.String(),
		StudentWallet:  c.StudentWallet.String(),
		IssueDate:      c.IssueDate,
		ExpiryDate:     c.ExpiryDate,
		StorageURL:     c.StorageURL,
		Score:          c.Score,
		Status:         c.Status,
		TxHash:         c.TxHash,
	}
}

type SubmittedResponse struct {
	ID             string    `json:"id"`
	StudentWallet  string    `json:"student_wallet"`
	VerifierWallet string    `json:"verifier_wallet"`
	ContentHash    string    `json:"content_hash"`
	SubmissionDate time.Time `json:"submission_date"`
	StorageURL     string    `json:"storage_url"`
	FileSize       int64     `json:"file_size"`
	MimeType       string    `json:"mime_type,omitempty"`
}

func toSubmittedResponse(s *models.SubmittedCredential) SubmittedResponse {
	return SubmittedResponse{
		ID:             s.ID.String(),
		StudentWallet:  s.StudentWallet.String(),
		VerifierWallet: s.VerifierWallet.String(),
		ContentHash:    s.ContentHash.String(),
		SubmissionDate: s.SubmissionDate,
		StorageURL:     s.StorageURL,
		FileSize:       s.FileSize,
		MimeType:       s.MimeType,
	}
}
