package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/service"
	"github.com/vedran77/campusconnect/internal/transport/http/middleware"
	"github.com/vedran77/campusconnect/pkg/logger"
	"github.com/vedran77/campusconnect/pkg/validator"
)

type AccountHandler struct {
	accountService *service.AccountService
	log            logger.Logger
}

func NewAccountHandler(accountService *service.AccountService, log logger.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, log: log}
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	account, err := h.accountService.GetProfile(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, h.log, "get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var input service.ProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}

	account, err := h.accountService.UpdateProfile(r.Context(), accountID, input)
	if err != nil {
		writeServiceError(w, r, h.log, "update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid account ID")
		return
	}

	account, err := h.accountService.GetProfile(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, "get account", err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	filename, contentType, data, ok := readUpload(w, r, validator.MaxResumeSize)
	if !ok {
		return
	}

	account, err := h.accountService.UploadResume(r.Context(), accountID, filename, contentType, data)
	if err != nil {
		writeServiceError(w, r, h.log, "upload resume", err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	_, contentType, data, ok := readUpload(w, r, validator.MaxAvatarSize)
	if !ok {
		return
	}

	account, err := h.accountService.UploadAvatar(r.Context(), accountID, contentType, data)
	if err != nil {
		writeServiceError(w, r, h.log, "upload avatar", err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	obj, err := h.accountService.GetObject(r.Context(), r.PathValue("path"))
	if err != nil {
		writeServiceError(w, r, h.log, "get object", err)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.WriteHeader(http.StatusOK)
	w.Write(obj.Data)
}

// readUpload reads the multipart field "file". One byte past maxSize is read
// so the service can tell an oversized file from one exactly at the limit.
func readUpload(w http.ResponseWriter, r *http.Request, maxSize int64) (string, string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeValidationErrors(w, validator.ValidationErrors{"file": "A file is required"})
		return "", "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		writeValidationErrors(w, validator.ValidationErrors{"file": "File could not be read"})
		return "", "", nil, false
	}

	return header.Filename, header.Header.Get("Content-Type"), data, true
}
