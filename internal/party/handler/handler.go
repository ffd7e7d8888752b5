package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certledger/internal/party/models"
	"certledger/internal/platform/middleware"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/platform/httputil"
)

// Service defines the party operations the handler exposes.
type Service interface {
	RegisterStudent(ctx context.Context, req models.RegisterStudentRequest) (*models.Student, error)
	RegisterInstitute(ctx context.Context, req models.RegisterInstituteRequest) (*models.Institute, error)
	RegisterVerifier(ctx context.Context, req models.RegisterVerifierRequest) (*models.Verifier, error)
	GetStudent(ctx context.Context, wallet domain.WalletAddress) (*models.Student, error)
	GetInstitute(ctx context.Context, wallet domain.WalletAddress) (*models.Institute, error)
	GetVerifier(ctx context.Context, wallet domain.WalletAddress) (*models.Verifier, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/register/students", h.HandleRegisterStudent)
	r.Post("/register/institutes", h.HandleRegisterInstitute)
	r.Post("/register/verifiers", h.HandleRegisterVerifier)
	r.Get("/students/{wallet}", h.HandleGetStudent)
	r.Get("/institutes/{wallet}", h.HandleGetInstitute)
	r.Get("/verifiers/{wallet}", h.HandleGetVerifier)
}

// HandleRegisterStudent registers a student on-chain and locally.
func (h *Handler) HandleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterStudentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	cmd, err := req.toModel()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	student, err := h.service.RegisterStudent(ctx, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "student registration failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, "student registered", toStudentResponse(student))
}

// HandleRegisterInstitute registers an issuing institution.
func (h *Handler) HandleRegisterInstitute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterInstituteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	cmd, err := req.toModel()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	institute, err := h.service.RegisterInstitute(ctx, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "institute registration failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, "institute registered", toInstituteResponse(institute))
}

// HandleRegisterVerifier registers a verifying organization.
func (h *Handler) HandleRegisterVerifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterVerifierRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	cmd, err := req.toModel()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	verifier, err := h.service.RegisterVerifier(ctx, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "verifier registration failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, "verifier registered", toVerifierResponse(verifier))
}

func (h *Handler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	wallet, err := domain.ParseWalletAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}
	student, err := h.service.GetStudent(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "", toStudentResponse(student))
}

func (h *Handler) HandleGetInstitute(w http.ResponseWriter, r *http.Request) {
	wallet, err := domain.ParseWalletAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}
	institute, err := h.service.GetInstitute(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "", toInstituteResponse(institute))
}

func (h *Handler) HandleGetVerifier(w http.ResponseWriter, r *http.Request) {
	wallet, err := domain.ParseWalletAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid wallet address"))
		return
	}
	verifier, err := h.service.GetVerifier(r.Context(), wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, "", toVerifierResponse(verifier))
}
