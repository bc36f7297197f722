package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/atelier-crm/atelier-crm/internal/platform/httpx"
	"github.com/atelier-crm/atelier-crm/internal/shared"
)

const dateLayout = "2006-01-02"

// DocumentRenderer produces a printable PDF for an invoice.
type DocumentRenderer interface {
	InvoicePDF(ctx context.Context, inv *WithRelations) ([]byte, error)
}

// Handler manages invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer DocumentRenderer
	clock    shared.Clock
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, renderer DocumentRenderer, clock shared.Clock) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		renderer: renderer,
		clock:    clock,
		validate: validator.New(),
	}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/export", h.exportCSV)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Post("/{id}/status", h.changeStatus)
	r.Get("/{id}/pdf", h.downloadPDF)
}

type createInvoiceRequest struct {
	ClientID  int64   `json:"client_id" validate:"required,gt=0"`
	ProjectID int64   `json:"project_id" validate:"required,gt=0"`
	Amount    string  `json:"amount" validate:"required"`
	DueDate   *string `json:"due_date,omitempty"`
	Status    string  `json:"status" validate:"omitempty,oneof=draft sent"`
	Notes     string  `json:"notes"`
}

type updateInvoiceRequest struct {
	Amount  *string `json:"amount,omitempty"`
	DueDate *string `json:"due_date,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid overdue cancelled"`
}

type listInvoicesResponse struct {
	Invoices   []WithRelations   `json:"invoices"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req, err := listRequestFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	invoices, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if invoices == nil {
		invoices = []WithRelations{}
	}
	httpx.JSON(w, http.StatusOK, listInvoicesResponse{
		Invoices:   invoices,
		Pagination: shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func listRequestFromQuery(r *http.Request) (ListInvoicesRequest, error) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	clientID, _ := strconv.ParseInt(q.Get("client_id"), 10, 64)

	req := ListInvoicesRequest{
		Search:   q.Get("q"),
		ClientID: clientID,
		Status:   Status(q.Get("status")),
		Page:     page,
		PerPage:  perPage,
	}
	if req.Status != "" && !req.Status.Valid() {
		return req, fmt.Errorf("unknown status %q", req.Status)
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return req, fmt.Errorf("from must be YYYY-MM-DD")
		}
		req.FromDate = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return req, fmt.Errorf("to must be YYYY-MM-DD")
		}
		req.ToDate = t
	}
	return req, nil
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be an integer")
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount must be a decimal number")
		return
	}
	var dueDate *time.Time
	if req.DueDate != nil {
		t, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "due_date must be YYYY-MM-DD")
			return
		}
		dueDate = &t
	}

	inv, err := h.service.Create(r.Context(), CreateInvoiceInput{
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		Amount:    amount,
		DueDate:   dueDate,
		Status:    Status(req.Status),
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be an integer")
		return
	}
	var req updateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	input := UpdateInvoiceInput{Notes: req.Notes}
	if req.Amount != nil {
		d, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount must be a decimal number")
			return
		}
		input.Amount = &d
	}
	if req.DueDate != nil {
		t, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "due_date must be YYYY-MM-DD")
			return
		}
		input.DueDate = &t
	}

	inv, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.logger.Error("update invoice", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be an integer")
		return
	}
	var req changeStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	inv, err := h.service.ChangeStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		h.logger.Error("change invoice status", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be an integer")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	req, err := listRequestFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	req.Page = 1
	req.PerPage = 10000

	invoices, _, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("export invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename(h.clock.Now())))
	if err := WriteCSV(w, invoices); err != nil {
		h.logger.Error("write invoice csv", slog.Any("error", err))
	}
}

func (h *Handler) downloadPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "invoice id must be an integer")
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.renderer.InvoicePDF(r.Context(), inv)
	if err != nil {
		h.logger.Error("render invoice pdf", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusBadGateway, "Rendering Failed", "document service is unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "facture_"+inv.Number+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
