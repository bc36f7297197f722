package company

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atelier-crm/atelier-crm/internal/platform/httpx"
)

// Handler manages company profile endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers company routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Patch("/", h.update)
}

type updateProfileRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Address    *string `json:"address,omitempty"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,max=10"`
	City       *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	SIRET      *string `json:"siret,omitempty" validate:"omitempty,len=14"`
	VATNumber  *string `json:"vat_number,omitempty" validate:"omitempty,max=20"`
	IBAN       *string `json:"iban,omitempty" validate:"omitempty,max=34"`
	BIC        *string `json:"bic,omitempty" validate:"omitempty,max=11"`
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("get company profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	profile, err := h.service.Update(r.Context(), UpdateProfileInput{
		Name:       req.Name,
		Address:    req.Address,
		PostalCode: req.PostalCode,
		City:       req.City,
		Email:      req.Email,
		Phone:      req.Phone,
		SIRET:      req.SIRET,
		VATNumber:  req.VATNumber,
		IBAN:       req.IBAN,
		BIC:        req.BIC,
	})
	if err != nil {
		h.logger.Error("update company profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}
