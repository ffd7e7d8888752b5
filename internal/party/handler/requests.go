package handler

import (
	"strings"

	"certledger/internal/party/models"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// RegisterStudentRequest is the JSON body for student registration.
type RegisterStudentRequest struct {
	Code          string `json:"code"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Handle        string `json:"handle"`
	Email         string `json:"email"`
	Course        string `json:"course"`
	WalletAddress string `json:"wallet_address"`
}

func (r *RegisterStudentRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Handle = strings.TrimSpace(r.Handle)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Course = strings.TrimSpace(r.Course)
	r.WalletAddress = strings.TrimSpace(r.WalletAddress)
}

func (r *RegisterStudentRequest) toModel() (models.RegisterStudentRequest, error) {
	wallet, err := domain.ParseWalletAddress(r.WalletAddress)
	if err != nil {
		return models.RegisterStudentRequest{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid wallet address")
	}
	return models.RegisterStudentRequest{
		Code:          r.Code,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Handle:        r.Handle,
		Email:         r.Email,
		Course:        r.Course,
		WalletAddress: wallet,
	}, nil
}

// RegisterInstituteRequest is the JSON body for institute registration.
type RegisterInstituteRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
}

func (r *RegisterInstituteRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.WalletAddress = strings.TrimSpace(r.WalletAddress)
}

func (r *RegisterInstituteRequest) toModel() (models.RegisterInstituteRequest, error) {
	wallet, err := domain.ParseWalletAddress(r.WalletAddress)
	if err != nil {
		return models.RegisterInstituteRequest{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid wallet address")
	}
	return models.RegisterInstituteRequest{
		Code:          r.Code,
		Name:          r.Name,
		Email:         r.Email,
		WalletAddress: wallet,
	}, nil
}

// RegisterVerifierRequest is the JSON body for verifier registration.
type RegisterVerifierRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
}

func (r *RegisterVerifierRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.WalletAddress = strings.TrimSpace(r.WalletAddress)
}

func (r *RegisterVerifierRequest) toModel() (models.RegisterVerifierRequest, error) {
	wallet, err := domain.ParseWalletAddress(r.WalletAddress)
	if err != nil {
		return models.RegisterVerifierRequest{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid wallet address")
	}
	return models.RegisterVerifierRequest{
		Code:          r.Code,
		Name:          r.Name,
		Email:         r.Email,
		WalletAddress: wallet,
	}, nil
}
