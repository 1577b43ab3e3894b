// Package handler exposes the marketplace over HTTP. The caller's account
// comes from the auth middleware; every route below runs behind it.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentflow/internal/ledger"
	"rentflow/internal/marketplace/models"
	"rentflow/internal/marketplace/service"
	"rentflow/pkg/domain"
	dErrors "rentflow/pkg/domain-errors"
	"rentflow/pkg/platform/httputil"
	"rentflow/pkg/requestcontext"
)

// Service is the marketplace surface the handlers call.
type Service interface {
	RegisterApplicant(ctx context.Context, caller, account domain.AccountID) error
	RegisterLandlord(ctx context.Context, caller, account domain.AccountID) error
	RegisterProperty(ctx context.Context, caller domain.AccountID, cmd service.RegisterPropertyCommand) (*models.Property, error)
	CreateListing(ctx context.Context, caller domain.AccountID, cmd service.CreateListingCommand) (*models.Listing, error)
	SubmitOffer(ctx context.Context, caller domain.AccountID, cmd service.SubmitOfferCommand) (*models.Offer, error)
	SignOffer(ctx context.Context, caller domain.AccountID, id domain.OfferID) (*models.Offer, error)
	AcceptOffer(ctx context.Context, caller domain.AccountID, id domain.OfferID) (*service.AcceptResult, error)
	Deposit(ctx context.Context, caller, account domain.AccountID, amount domain.Amount) error
	AdvanceClock(ctx context.Context, caller domain.AccountID, ticks uint64) (domain.Tick, error)

	GetProperty(ctx context.Context, id domain.PropertyID) (*models.Property, error)
	GetListing(ctx context.Context, id domain.ListingID) (*models.Listing, error)
	ListListingOffers(ctx context.Context, id domain.ListingID) ([]*models.Offer, error)
	GetOffer(ctx context.Context, id domain.OfferID) (*models.Offer, error)
	ListApplicantOffers(ctx context.Context, account domain.AccountID) ([]*models.Offer, error)
	GetTenancy(ctx context.Context, property domain.PropertyID) (*models.Tenancy, error)
	Account(ctx context.Context, account domain.AccountID) (ledger.Account, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the applicant and landlord routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/listings", h.HandleCreateListing)
	r.Get("/listings/{id}", h.HandleGetListing)
	r.Get("/listings/{id}/offers", h.HandleListListingOffers)

	r.Post("/offers", h.HandleSubmitOffer)
	r.Get("/offers/{id}", h.HandleGetOffer)
	r.Post("/offers/{id}/sign", h.HandleSignOffer)
	r.Post("/offers/{id}/accept", h.HandleAcceptOffer)

	r.Get("/properties/{id}", h.HandleGetProperty)
	r.Get("/properties/{id}/tenancy", h.HandleGetTenancy)

	r.Get("/me/offers", h.HandleMyOffers)
	r.Get("/me/account", h.HandleMyAccount)
}

// RegisterAdmin mounts the authority routes. The service checks the
// caller's privilege on every one of them.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/applicants", h.HandleRegisterApplicant)
	r.Post("/admin/landlords", h.HandleRegisterLandlord)
	r.Post("/admin/properties", h.HandleRegisterProperty)
	r.Post("/admin/ledger/deposits", h.HandleDeposit)
	r.Post("/admin/clock/advance", h.HandleAdvanceClock)
}

func (h *Handler) HandleRegisterApplicant(w http.ResponseWriter, r *http.Request) {
	h.registerIdentity(w, r, "applicant", h.service.RegisterApplicant)
}

func (h *Handler) HandleRegisterLandlord(w http.ResponseWriter, r *http.Request) {
	h.registerIdentity(w, r, "landlord", h.service.RegisterLandlord)
}

func (h *Handler) registerIdentity(w http.ResponseWriter, r *http.Request, role string,
	register func(ctx context.Context, caller, account domain.AccountID) error) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AccountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := register(ctx, caller, req.parsedAccount); err != nil {
		h.fail(ctx, w, "failed to register "+role, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRegisterProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterPropertyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	property, err := h.service.RegisterProperty(ctx, caller, service.RegisterPropertyCommand{
		AddressHash:    domain.HashOf(req.Address),
		PostalCodeHash: domain.HashOf(req.PostalCode),
		Landlord:       req.parsedLandlord,
	})
	if err != nil {
		h.fail(ctx, w, "failed to register property", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, property)
}

func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DepositRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.Deposit(ctx, caller, req.parsedAccount, domain.Amount(req.Amount)); err != nil {
		h.fail(ctx, w, "failed to deposit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClockResponse reports the logical time after an advance.
type ClockResponse struct {
	Now domain.Tick `json:"now"`
}

func (h *Handler) HandleAdvanceClock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AdvanceClockRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	now, err := h.service.AdvanceClock(ctx, caller, req.Ticks)
	if err != nil {
		h.fail(ctx, w, "failed to advance clock", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ClockResponse{Now: now})
}

func (h *Handler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateListingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	listing, err := h.service.CreateListing(ctx, caller, service.CreateListingCommand{
		PropertyID:    domain.PropertyID(req.PropertyID),
		Price:         domain.Amount(req.RentalPrice),
		AvailableFrom: domain.Tick(req.AvailabilityDate),
	})
	if err != nil {
		h.fail(ctx, w, "failed to create listing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, listing)
}

func (h *Handler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "invalid listing id", err)
		return
	}
	listing, err := h.service.GetListing(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get listing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) HandleListListingOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseListingID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "invalid listing id", err)
		return
	}
	offers, err := h.service.ListListingOffers(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to list listing offers", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, offers)
}

func (h *Handler) HandleSubmitOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitOfferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	offer, err := h.service.SubmitOffer(ctx, caller, service.SubmitOfferCommand{
		ListingID:  domain.ListingID(req.ListingID),
		Price:      domain.Amount(req.OfferPrice),
		StartDate:  domain.Tick(req.StartDate),
		EndDate:    domain.Tick(req.EndDate),
		TenantIDs:  req.parsedTenants,
		ValidUntil: domain.Tick(req.ValidUntil),
	})
	if err != nil {
		h.fail(ctx, w, "failed to submit offer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, offer)
}

func (h *Handler) HandleGetOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseOfferID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "invalid offer id", err)
		return
	}
	offer, err := h.service.GetOffer(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get offer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, offer)
}

func (h *Handler) HandleSignOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	id, err := domain.ParseOfferID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "invalid offer id", err)
		return
	}
	offer, err := h.service.SignOffer(ctx, caller, id)
	if err != nil {
		h.fail(ctx, w, "failed to sign offer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, offer)
}

func (h *Handler) HandleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	id, err := domain.ParseOfferID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "invalid offer id", err)
		return
	}
	result, err := h.service.AcceptOffer(ctx, caller, id)
	if err != nil {
		h.fail(ctx, w, "failed to accept offer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleGetProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParsePropertyID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "invalid property id", err)
		return
	}
	property, err := h.service.GetProperty(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get property", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, property)
}

func (h *Handler) HandleGetTenancy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParsePropertyID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "invalid property id", err)
		return
	}
	tenancy, err := h.service.GetTenancy(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get tenancy", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tenancy)
}

func (h *Handler) HandleMyOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	offers, err := h.service.ListApplicantOffers(ctx, caller)
	if err != nil {
		h.fail(ctx, w, "failed to list offers", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, offers)
}

func (h *Handler) HandleMyAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	account, err := h.service.Account(ctx, caller)
	if err != nil {
		h.fail(ctx, w, "failed to load account", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}

// caller returns the authenticated account or writes a 401.
func (h *Handler) caller(ctx context.Context, w http.ResponseWriter) (domain.AccountID, bool) {
	account := requestcontext.AccountID(ctx)
	if account.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.AccountID{}, false
	}
	return account, true
}

// fail logs err at a level matching its code and writes the envelope.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"account_id", requestcontext.AccountID(ctx).String(),
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
