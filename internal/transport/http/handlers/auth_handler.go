package handlers

import (
	"net/http"

	"github.com/vedran77/campusconnect/internal/service"
	"github.com/vedran77/campusconnect/pkg/logger"
	"github.com/vedran77/campusconnect/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
	log         logger.Logger
}

func NewAuthHandler(authService *service.AuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	resp, err := h.authService.Register(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, h.log, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateLogin(input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Login(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, h.log, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
