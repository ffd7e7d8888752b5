package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"certledger/internal/credential/models"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

type stubService struct {
	issued     *models.IssuedCredential
	issueErr   error
	revoked    *models.IssuedCredential
	revokeErr  error
	verifyRes  *models.VerificationResult
	verifyErr  error
	submitted  *models.SubmittedCredential
	submitErr  error
	lastIssue  models.IssueRequest
	lastVerify domain.SubmissionID
}

func (s *stubService) Issue(_ context.Context, req models.IssueRequest) (*models.IssuedCredential, error) {
	s.lastIssue = req
	return s.issued, s.issueErr
}

func (s *stubService) Revoke(_ context.Context, _ domain.CredentialHash) (*models.IssuedCredential, error) {
	return s.revoked, s.revokeErr
}

func (s *stubService) Verify(_ context.Context, id domain.SubmissionID) (*models.VerificationResult, error) {
	s.lastVerify = id
	return s.verifyRes, s.verifyErr
}

func (s *stubService) Submit(_ context.Context, _ models.SubmitRequest) (*models.SubmittedCredential, error) {
	return s.submitted, s.submitErr
}

func (s *stubService) VerificationHistory(_ context.Context, _ domain.WalletAddress) ([]models.HistoryEntry, error) {
	return nil, nil
}

func (s *stubService) StudentCredentials(_ context.Context, _ domain.WalletAddress) ([]*models.IssuedCredential, error) {
	return nil, nil
}

func (s *stubService) StudentSubmissions(_ context.Context, _ domain.WalletAddress) ([]*models.SubmittedCredential, error) {
	return nil, nil
}

func (s *stubService) VerifierSubmissions(_ context.Context, _ domain.WalletAddress) ([]*models.SubmittedCredential, error) {
	return nil, nil
}

type HandlerSuite struct {
	suite.Suite

	service *stubService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.service = &stubService{}
	s.router = chi.NewRouter()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	New(s.service, logger).Register(s.router)
}

func (s *HandlerSuite) issueForm(fields map[string]string) (*bytes.Buffer, string) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		s.Require().NoError(mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", "diploma.pdf")
	s.Require().NoError(err)
	_, _ = part.Write([]byte("document bytes"))
	s.Require().NoError(mw.Close())
	return &body, mw.FormDataContentType()
}

func (s *HandlerSuite) TestIssue() {
	s.Run("issues from a multipart form", func() {
		s.service.issued = &models.IssuedCredential{
			CredentialHash: "1111111111111111111111111111111111111111111111111111111111111111",
			Status:         models.StatusIssued,
		}
		body, contentType := s.issueForm(map[string]string{
			"name":           "BSc Computer Science",
			"type":           "degree",
			"issuer_wallet":  "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
			"student_wallet": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"score":          "87.5",
		})

		req := httptest.NewRequest(http.MethodPost, "/credentials", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusCreated, rec.Code)
		s.Equal("BSc Computer Science", s.service.lastIssue.Name)
		s.Equal(87.5, s.service.lastIssue.Score)
		s.Equal(domain.WalletAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), s.service.lastIssue.IssuerWallet,
			"wallets are lowercased on parse")
		s.Equal([]byte("document bytes"), s.service.lastIssue.Document)
	})

	s.Run("duplicate hash maps to 409", func() {
		s.service.issueErr = dErrors.New(dErrors.CodeDuplicateKey, "credential hash already issued")
		body, contentType := s.issueForm(map[string]string{
			"name":           "BSc",
			"type":           "degree",
			"issuer_wallet":  "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			"student_wallet": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		})

		req := httptest.NewRequest(http.MethodPost, "/credentials", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("missing file is a validation error", func() {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		s.Require().NoError(mw.WriteField("name", "BSc"))
		s.Require().NoError(mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/credentials", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestRevoke() {
	s.Run("revokes by credential hash", func() {
		s.service.revoked = &models.IssuedCredential{
			CredentialHash: "1111111111111111111111111111111111111111111111111111111111111111",
			Status:         models.StatusRevoked,
		}
		req := httptest.NewRequest(http.MethodPatch,
			"/credentials/1111111111111111111111111111111111111111111111111111111111111111", nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("rejects malformed hashes", func() {
		req := httptest.NewRequest(http.MethodPatch, "/credentials/nothex", nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestVerify() {
	s.Run("returns the verdict for an issued credential", func() {
		s.service.verifyRes = &models.VerificationResult{Source: models.SourceLocal, IsValid: true}
		body := bytes.NewBufferString(`{"submission_id":"ABCDEF0123456789abcdef0123456789"}`)
		req := httptest.NewRequest(http.MethodPost, "/verifications", body)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusOK, rec.Code)
		s.Equal(domain.SubmissionID("abcdef0123456789abcdef0123456789"), s.service.lastVerify)

		var env struct {
			Success bool `json:"success"`
			Data    struct {
				IsValid bool `json:"is_valid"`
			} `json:"data"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
		s.True(env.Success)
		s.True(env.Data.IsValid)
	})

	s.Run("not issued is a 404 result, not a bare error", func() {
		s.service.verifyRes = &models.VerificationResult{Source: models.SourceNotFound}
		body := bytes.NewBufferString(`{"submission_id":"abcdef0123456789abcdef0123456789"}`)
		req := httptest.NewRequest(http.MethodPost, "/verifications", body)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusNotFound, rec.Code)

		var env struct {
			Success bool `json:"success"`
			Data    struct {
				Source string `json:"source"`
			} `json:"data"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
		s.False(env.Success)
		s.Equal("not-found", env.Data.Source, "the outcome is carried in the envelope")
	})

	s.Run("infrastructure faults map to 502", func() {
		s.service.verifyRes = nil
		s.service.verifyErr = dErrors.New(dErrors.CodeContractCall, "rpc down")
		body := bytes.NewBufferString(`{"submission_id":"abcdef0123456789abcdef0123456789"}`)
		req := httptest.NewRequest(http.MethodPost, "/verifications", body)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusBadGateway, rec.Code)
	})
}
