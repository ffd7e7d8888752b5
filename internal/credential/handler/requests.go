package handler

import (
	"strings"

	dErrors "certledger/pkg/domain-errors"
)

// VerifyRequest asks for verification of a previously submitted credential.
type VerifyRequest struct {
	SubmissionID string `json:"submission_id"`
}

func (r *VerifyRequest) Normalize() {
	r.SubmissionID = strings.TrimSpace(strings.ToLower(r.SubmissionID))
}

func (r *VerifyRequest) Validate() error {
	if r.SubmissionID == "" {
		return dErrors.New(dErrors.CodeValidation, "submission_id is required")
	}
	return nil
}
