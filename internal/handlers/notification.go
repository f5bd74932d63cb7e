package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/formflow/formflow-api/internal/authz"
	"github.com/formflow/formflow-api/internal/notification"
)

type NotificationHandler struct {
	service notification.Service
	logger  zerolog.Logger
}

func NewNotificationHandler(service notification.Service, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("handler", "notification").Logger(),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "Missing principal", http.StatusUnauthorized)
		return
	}

	notifications, err := h.service.ListFor(r.Context(), p.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list notifications")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

// MarkRead is idempotent; repeating it (or targeting a missing id) still
// returns success.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFromRequest(r)
	if !ok {
		http.Error(w, "Missing principal", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "notificationID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.MarkRead(r.Context(), p.ID, id); err != nil {
		h.logger.Error().Err(err).Int64("notification_id", id).Msg("failed to mark notification as read")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
