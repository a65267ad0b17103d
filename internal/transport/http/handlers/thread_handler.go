package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/campusconnect/internal/service"
	"github.com/vedran77/campusconnect/internal/transport/http/middleware"
	"github.com/vedran77/campusconnect/pkg/logger"
)

type ThreadHandler struct {
	threadService *service.ThreadService
	log           logger.Logger
}

func NewThreadHandler(threadService *service.ThreadService, log logger.Logger) *ThreadHandler {
	return &ThreadHandler{threadService: threadService, log: log}
}

func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	threads, err := h.threadService.Threads(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, h.log, "list threads", err)
		return
	}

	writeJSON(w, http.StatusOK, threads)
}

func (h *ThreadHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	contacts, err := h.threadService.Contacts(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, h.log, "list contacts", err)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// Send posts to the thread with the account in the path, starting it if needed.
func (h *ThreadHandler) Send(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	otherID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid account ID")
		return
	}

	var input service.SendMessageInput
	if !decodeJSON(w, r, &input) {
		return
	}

	msg, err := h.threadService.Send(r.Context(), accountID, otherID, input.Text)
	if err != nil {
		writeServiceError(w, r, h.log, "send message", err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *ThreadHandler) Messages(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	msgs, err := h.threadService.Messages(r.Context(), accountID, r.PathValue("threadId"))
	if err != nil {
		writeServiceError(w, r, h.log, "list messages", err)
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}
