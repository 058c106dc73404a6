// Package http provides the dev backend's HTTP handlers for the
// verification API: submission, status queries, and account creation.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"regexp"

	"github.com/atinyakov/VeriFlow/internal/models"
	"github.com/atinyakov/VeriFlow/internal/repository"
	"github.com/atinyakov/VeriFlow/internal/service"
	"github.com/go-chi/chi/v5"
)

// maxUploadBytes is the per-file limit re-enforced server-side.
const maxUploadBytes = 10 << 20

// maxFormMemory bounds multipart parsing.
const maxFormMemory = 32 << 20

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/jpg":  true,
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// VerificationService defines the operations required by the handlers.
type VerificationService interface {
	// Initiate creates a job for the submitted files and returns its id.
	Initiate(ctx context.Context, front service.Upload, back *service.Upload, selfieSize int64) (string, error)
	// JobStatus returns the job's current status.
	JobStatus(ctx context.Context, id string) (models.Status, error)
	// CreateAccount stores credentials and returns the account record.
	CreateAccount(ctx context.Context, email, password string) (models.AccountRecord, error)
}

// VerificationHandler handles the /api/verify endpoints.
type VerificationHandler struct {
	Service VerificationService
}

// Initiate handles POST /api/verify/initiate: a multipart body with
// documentFront (required), documentBack (optional), and selfie
// (required). Responds 201 with {"verificationId": "..."}.
func (h *VerificationHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	front, err := requireUpload(r, "documentFront")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	back, err := optionalUpload(r, "documentBack")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	selfie, err := requireUpload(r, "selfie")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.Service.Initiate(r.Context(), *front, back, selfie.Size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create verification")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"verificationId": id})
}

// Status handles GET /api/verify/status/{verificationID}.
func (h *VerificationHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "verificationID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "verification id is required")
		return
	}

	status, err := h.Service.JobStatus(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "verification not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]models.Status{"status": status})
}

// CreateAccountRequest is the JSON payload for account creation.
type CreateAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAccount handles POST /api/verify/create-account.
func (h *VerificationHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters long")
		return
	}

	account, err := h.Service.CreateAccount(r.Context(), req.Email, req.Password)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully",
		"account": account,
	})
}

func requireUpload(r *http.Request, field string) (*service.Upload, error) {
	up, err := optionalUpload(r, field)
	if err != nil {
		return nil, err
	}
	if up == nil {
		return nil, fmt.Errorf("%s is required", field)
	}
	return up, nil
}

func optionalUpload(r *http.Request, field string) (*service.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s could not be read", field)
	}
	defer file.Close()

	return validateUpload(field, header)
}

func validateUpload(field string, header *multipart.FileHeader) (*service.Upload, error) {
	mime := header.Header.Get("Content-Type")
	if !allowedUploadTypes[mime] {
		return nil, fmt.Errorf("invalid file type for %s (%s): only JPG and PNG are accepted", field, mime)
	}
	if header.Size > maxUploadBytes {
		return nil, fmt.Errorf("%s exceeds the 10MB limit", field)
	}
	return &service.Upload{Name: header.Filename, MIME: mime, Size: header.Size}, nil
}

// writeError responds with the {"message": "..."} error shape every
// endpoint uses.
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
