package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"certledger/internal/credential/models"
	"certledger/internal/platform/middleware"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/platform/httputil"
)

// maxUploadBytes bounds multipart parsing; documents beyond this are rejected.
const maxUploadBytes = 16 << 20

// Service defines the credential operations the handler exposes.
type Service interface {
	Issue(ctx context.Context, req models.IssueRequest) (*models.IssuedCredential, error)
	Revoke(ctx context.Context, hash domain.CredentialHash) (*models.IssuedCredential, error)
	Verify(ctx context.Context, id domain.SubmissionID) (*models.VerificationResult, error)
	Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmittedCredential, error)
	VerificationHistory(ctx context.Context, verifier domain.WalletAddress) ([]models.HistoryEntry, error)
	StudentCredentials(ctx context.Context, student domain.WalletAddress) ([]*models.IssuedCredential, error)
	StudentSubmissions(ctx context.Context, student domain.WalletAddress) ([]*models.SubmittedCredential, error)
	VerifierSubmissions(ctx context.Context, verifier domain.WalletAddress) ([]*models.SubmittedCredential, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/credentials", h.HandleIssue)
	r.Patch("/credentials/{credentialHash}", h.HandleRevoke)
	r.Get("/credentials/students/{wallet}", h.HandleStudentCredentials)
	r.Post("/verifications", h.HandleVerify)
	r.Get("/verifications/history/{wallet}", h.HandleVerificationHistory)
	r.Post("/submissions", h.HandleSubmit)
	r.Get("/submissions/students/{wallet}", h.HandleStudentSubmissions)
	r.Get("/submissions/verifiers/{wallet}", h.HandleVerifierSubmissions)
}

// HandleIssue accepts a multipart form carrying the document under "file"
// plus the credential metadata fields, and issues the credential.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, err := parseIssueForm(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred, err := h.service.Issue(ctx, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "issuance failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, "credential issued", toIssuedResponse(cred))
}

// HandleRevoke revokes an issued credential by its credential hash.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	hash, err := domain.ParseCredentialHash(chi.URLParam(r, "credentialHash"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid credential hash"))
		return
	}

	cred, err := h.service.Revoke(ctx, hash)
	if err != nil {
		h.logger.ErrorContext(ctx, "revocation failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "credential revoked", toIssuedResponse(cred))
}

// HandleVerify verifies a previously submitted credential by its id. A
// document that was never issued returns 404 with an explicit envelope; the
// caller must be able to tell that apart from "determined invalid".
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	id, err := domain.ParseSubmissionID(req.SubmissionID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid submission id"))
		return
	}

	result, err := h.service.Verify(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	if result.NotIssued() {
		httputil.WriteResult(w, http.StatusNotFound, httputil.Envelope{
			Success: false,
			Message: "credential not issued",
			Data:    result,
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "verification complete", result)
}

// HandleSubmit accepts a student's multipart document submission for a
// verifier's review.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, err := parseSubmitForm(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.service.Submit(ctx, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "submission failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, "credential submitted", toSubmittedResponse(sub))
}

// HandleVerificationHistory re-verifies every submission addressed to the
// verifier and returns per-entry outcomes.
func (h *Handler) HandleVerificationHistory(w http.ResponseWriter, r *http.Request) {
	wallet, err := domain.ParseWalletAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}

	entries, err := h.service.VerificationHistory(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "", entries)
}

func (h *Handler) HandleStudentCredentials(w http.ResponseWriter, r *http.Request) {
	wallet, err := domain.ParseWalletAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}
	creds, err := h.service.StudentCredentials(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]IssuedResponse, 0, len(creds))
	for _, cred := range creds {
		out = append(out, toIssuedResponse(cred))
	}
	httputil.WriteJSON(w, http.StatusOK, "", out)
}

func (h *Handler) HandleStudentSubmissions(w http.ResponseWriter, r *http.Request) {
	h.listSubmissions(w, r, h.service.StudentSubmissions)
}

func (h *Handler) HandleVerifierSubmissions(w http.ResponseWriter, r *http.Request) {
	h.listSubmissions(w, r, h.service.VerifierSubmissions)
}

func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request, list func(context.Context, domain.WalletAddress) ([]*models.SubmittedCredential, error)) {
	wallet, err := domain.ParseWalletAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}
	subs, err := list(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]SubmittedResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubmittedResponse(sub))
	}
	httputil.WriteJSON(w, http.StatusOK, "", out)
}

func parseIssueForm(r *http.Request) (*models.IssueRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "expected a multipart form with a document")
	}

	doc, filename, _, err := readFormFile(r)
	if err != nil {
		return nil, err
	}
	issuer, err := domain.ParseWalletAddress(r.FormValue("issuer_wallet"))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid issuer wallet address")
	}
	student, err := domain.ParseWalletAddress(r.FormValue("student_wallet"))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid student wallet address")
	}

	req := models.IssueRequest{
		Name:          r.FormValue("name"),
		Type:          r.FormValue("type"),
		IssuerWallet:  issuer,
		StudentWallet: student,
		Signature:     r.FormValue("signature"),
		Document:      doc,
		Filename:      filename,
	}
	if v := r.FormValue("score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "score must be numeric")
		}
		req.Score = score
	}
	if v := r.FormValue("expiry_date"); v != "" {
		expiry, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "expiry_date must be RFC 3339")
		}
		req.ExpiryDate = &expiry
	}
	return &req, nil
}

func parseSubmitForm(r *http.Request) (*models.SubmitRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "expected a multipart form with a document")
	}

	doc, filename, mimeType, err := readFormFile(r)
	if err != nil {
		return nil, err
	}
	student, err := domain.ParseWalletAddress(r.FormValue("student_wallet"))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid student wallet address")
	}
	verifier, err := domain.ParseWalletAddress(r.FormValue("verifier_wallet"))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid verifier wallet address")
	}

	return &models.SubmitRequest{
		StudentWallet:  student,
		VerifierWallet: verifier,
		Document:       doc,
		Filename:       filename,
		MimeType:       mimeType,
	}, nil
}

func readFormFile(r *http.Request) (doc []byte, filename, mimeType string, err error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", "", dErrors.New(dErrors.CodeValidation, "document file is required")
	}
	defer file.Close()

	doc, err = io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", "", dErrors.Wrap(err, dErrors.CodeInternal, "reading uploaded document")
	}
	return doc, header.Filename, header.Header.Get("Content-Type"), nil
}
