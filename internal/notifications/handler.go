package notifications

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-crm/atelier-crm/internal/platform/httpx"
	"github.com/atelier-crm/atelier-crm/internal/shared"
)

// Handler manages notification endpoints. A manual sweep trigger is
// exposed for staff next to the scheduled runs.
type Handler struct {
	logger  *slog.Logger
	service *Service
	sweeper *Sweeper
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sweeper *Sweeper) *Handler {
	return &Handler{logger: logger, service: service, sweeper: sweeper}
}

// MountRoutes registers notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/{id}/read", h.markRead)
	r.Post("/read-all", h.markAllRead)
}

// MountSweepRoutes registers the manual batch triggers.
func (h *Handler) MountSweepRoutes(r chi.Router) {
	r.Post("/overdue-sweep", h.runOverdueSweep)
	r.Post("/due-soon-check", h.runDueSoonCheck)
}

type listNotificationsResponse struct {
	Notifications []Notification    `json:"notifications"`
	Pagination    shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	items, total, err := h.service.List(r.Context(), ListNotificationsRequest{
		UserID:     identity.UserID,
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Notification{}
	}
	httpx.JSON(w, http.StatusOK, listNotificationsResponse{
		Notifications: items,
		Pagination:    shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	count, err := h.service.CountUnread(r.Context(), identity.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "notification id must be an integer")
		return
	}
	if err := h.service.MarkRead(r.Context(), identity.UserID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	updated, err := h.service.MarkAllRead(r.Context(), identity.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (h *Handler) runOverdueSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.sweeper.SweepOverdue(r.Context())
	if err != nil {
		h.logger.Error("manual overdue sweep", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) runDueSoonCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.sweeper.CheckDueSoon(r.Context())
	if err != nil {
		h.logger.Error("manual due-soon check", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
