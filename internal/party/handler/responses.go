package handler

import (
	"time"

	"certledger/internal/party/models"
)

type StudentResponse struct {
	Code          string    `json:"code"`
	FullName      string    `json:"full_name"`
	Handle        string    `json:"handle"`
	Email         string    `json:"email"`
	Course        string    `json:"course,omitempty"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

func toStudentResponse(s *models.Student) StudentResponse {
	return StudentResponse{
		Code:          s.Code,
		FullName:      s.FullName(),
		Handle:        s.Handle,
		Email:         s.Email,
		Course:        s.Course,
		WalletAddress: s.WalletAddress.String(),
		CreatedAt:     s.CreatedAt,
	}
}

type InstituteResponse struct {
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

func toInstituteResponse(i *models.Institute) InstituteResponse {
	return InstituteResponse{
		Code:          i.Code,
		Name:          i.Name,
		Email:         i.Email,
		WalletAddress: i.WalletAddress.String(),
		CreatedAt:     i.CreatedAt,
	}
}

type VerifierResponse struct {
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}

func toVerifierResponse(v *models.Verifier) VerifierResponse {
	return VerifierResponse{
		Code:          v.Code,
		Name:          v.Name,
		Email:         v.Email,
		WalletAddress: v.WalletAddress.String(),
		CreatedAt:     v.CreatedAt,
	}
}
