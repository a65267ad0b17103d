package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/service"
	"github.com/vedran77/campusconnect/internal/transport/http/middleware"
	"github.com/vedran77/campusconnect/pkg/logger"
	"github.com/vedran77/campusconnect/pkg/validator"
)

const maxListingBody = 64 << 10

type ListingHandler struct {
	listingService *service.ListingService
	log            logger.Logger
}

func NewListingHandler(listingService *service.ListingService, log logger.Logger) *ListingHandler {
	return &ListingHandler{listingService: listingService, log: log}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxListingBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	errs, err := validator.ValidateListingDocument(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	var input service.CreateListingInput
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	listing, err := h.listingService.Create(r.Context(), accountID, input)
	if err != nil {
		writeServiceError(w, r, h.log, "create listing", err)
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler) Browse(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	q := r.URL.Query()

	listings, err := h.listingService.Browse(r.Context(), accountID, service.BrowseQuery{
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		writeServiceError(w, r, h.log, "browse listings", err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) Matches(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	listings, err := h.listingService.Matches(r.Context(), accountID, r.URL.Query().Get("sort"))
	if err != nil {
		writeServiceError(w, r, h.log, "match listings", err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) View(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	listingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid listing ID")
		return
	}

	detail, err := h.listingService.View(r.Context(), accountID, listingID)
	if err != nil {
		writeServiceError(w, r, h.log, "view listing", err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	listingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid listing ID")
		return
	}

	if err := h.listingService.Delete(r.Context(), accountID, listingID); err != nil {
		writeServiceError(w, r, h.log, "delete listing", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
