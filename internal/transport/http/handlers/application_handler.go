package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/service"
	"github.com/vedran77/campusconnect/internal/transport/http/middleware"
	"github.com/vedran77/campusconnect/pkg/logger"
)

type ApplicationHandler struct {
	applicationService *service.ApplicationService
	log                logger.Logger
}

func NewApplicationHandler(applicationService *service.ApplicationService, log logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService, log: log}
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	listingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid listing ID")
		return
	}

	var input service.SubmitInput
	if !decodeJSON(w, r, &input) {
		return
	}

	app, err := h.applicationService.Submit(r.Context(), accountID, listingID, input.Message)
	if err != nil {
		writeServiceError(w, r, h.log, "submit application", err)
		return
	}

	writeJSON(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	q := r.URL.Query()

	views, err := h.applicationService.List(r.Context(), accountID, q.Get("status"), q.Get("q"))
	if err != nil {
		writeServiceError(w, r, h.log, "list applications", err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *ApplicationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid application ID")
		return
	}

	var input service.DecideInput
	if !decodeJSON(w, r, &input) {
		return
	}

	app, err := h.applicationService.Decide(r.Context(), accountID, applicationID, input.Status)
	if err != nil {
		writeServiceError(w, r, h.log, "decide application", err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}
