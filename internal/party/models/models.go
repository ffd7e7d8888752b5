// Package models defines the read-mostly party reference data: students,
// institutes, and verifiers, each anchored by a unique wallet address.
package models

import (
	"strings"
	"time"

	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// Student is the reference record auto-registration draws on during issuance.
type Student struct {
	Code          string               `bson:"_id"`
	FirstName     string               `bson:"firstName"`
	LastName      string               `bson:"lastName"`
	Handle        string               `bson:"handle"`
	Email         string               `bson:"email"`
	Course        string               `bson:"course,omitempty"`
	WalletAddress domain.WalletAddress `bson:"walletAddress"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

// FullName renders the student's display name for verification responses.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Institute is an issuing institution.
type Institute struct {
	Code          string               `bson:"_id"`
	Name          string               `bson:"name"`
	Email         string               `bson:"email"`
	WalletAddress domain.WalletAddress `bson:"walletAddress"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

// Verifier is an organization that reviews submitted documents.
type Verifier struct {
	Code          string               `bson:"_id"`
	Name          string               `bson:"name"`
	Email         string               `bson:"email"`
	WalletAddress domain.WalletAddress `bson:"walletAddress"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

// RegisterStudentRequest is the validated input for student registration.
type RegisterStudentRequest struct {
	Code          string
	FirstName     string
	LastName      string
	Handle        string
	Email         string
	Course        string
	WalletAddress domain.WalletAddress
}

// Validate enforces required fields.
func (r RegisterStudentRequest) Validate() error {
	if r.Code == "" || r.FirstName == "" || r.LastName == "" || r.Handle == "" || r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "code, first name, last name, handle, and email are required")
	}
	if r.WalletAddress.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "wallet address is required")
	}
	return nil
}

// RegisterInstituteRequest is the validated input for institute registration.
type RegisterInstituteRequest struct {
	Code          string
	Name          string
	Email         string
	WalletAddress domain.WalletAddress
}

// Validate enforces required fields.
func (r RegisterInstituteRequest) Validate() error {
	if r.Code == "" || r.Name == "" || r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "code, name, and email are required")
	}
	if r.WalletAddress.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "wallet address is required")
	}
	return nil
}

// RegisterVerifierRequest is the validated input for verifier registration.
type RegisterVerifierRequest struct {
	Code          string
	Name          string
	Email         string
	WalletAddress domain.WalletAddress
}

// Validate enforces required fields.
func (r RegisterVerifierRequest) Validate() error {
	if r.Code == "" || r.Name == "" || r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "code, name, and email are required")
	}
	if r.WalletAddress.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "wallet address is required")
	}
	return nil
}
