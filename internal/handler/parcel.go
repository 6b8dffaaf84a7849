package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/parcelbox/parcel-service/internal/errors"
	"github.com/parcelbox/parcel-service/internal/httputil"
	"github.com/parcelbox/parcel-service/internal/middleware"
	"github.com/parcelbox/parcel-service/internal/service"
)

type ParcelHandler struct {
	parcelService *service.ParcelService
	createLimit   func(http.Handler) http.Handler
}

// NewParcelHandler builds the parcel routes. createLimit, when non-nil,
// wraps parcel creation only.
func NewParcelHandler(parcelService *service.ParcelService, createLimit func(http.Handler) http.Handler) *ParcelHandler {
	return &ParcelHandler{
		parcelService: parcelService,
		createLimit:   createLimit,
	}
}

func (h *ParcelHandler) Routes() chi.Router {
	r := chi.NewRouter()

	create := http.Handler(http.HandlerFunc(h.CreateParcel))
	if h.createLimit != nil {
		create = h.createLimit(create)
	}

	r.Method(http.MethodPost, "/parcels/", create)
	r.Get("/parcel-types/", h.ListParcelTypes)
	r.Get("/parcels/", h.ListParcels)
	r.Get("/parcels/{id}/", h.GetParcel)

	r.Handle("/parcels", http.HandlerFunc(addTrailingSlash))
	r.Handle("/parcel-types", http.HandlerFunc(addTrailingSlash))
	r.Handle("/parcels/{id}", http.HandlerFunc(addTrailingSlash))

	return r
}

// addTrailingSlash sends slashless paths to their canonical form. 307 keeps
// the method and body, so a POST is replayed against the redirect target.
func addTrailingSlash(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

type createParcelRequest struct {
	Title        *string  `json:"title"`
	Weight       *float64 `json:"weight"`
	ContentValue *float64 `json:"content_value"`
	TypeID       *int64   `json:"type_id"`
}

func (req createParcelRequest) validate() error {
	switch {
	case req.Title == nil:
		return missingField("title")
	case req.Weight == nil:
		return missingField("weight")
	case req.ContentValue == nil:
		return missingField("content_value")
	case req.TypeID == nil:
		return missingField("type_id")
	}
	return nil
}

func missingField(field string) error {
	return apperrors.InvalidInput(field, "field required").
		WithDetails(map[string]string{"field": field})
}

// POST /parcel/parcels/
// Responds with the new parcel id as a bare JSON string.
func (h *ParcelHandler) CreateParcel(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.SessionNotFound())
		return
	}

	var req createParcelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteErrorWithStatus(w, http.StatusRequestEntityTooLarge,
				apperrors.ValidationError("Request body too large").WithCause(err))
			return
		}
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body").WithCause(err))
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	id, err := h.parcelService.Create(r.Context(), sessionID, service.CreateParcelParams{
		Title:        *req.Title,
		Weight:       *req.Weight,
		ContentValue: *req.ContentValue,
		TypeID:       *req.TypeID,
	})
	if err != nil {
		writeServiceError(w, err, "failed to create parcel")
		return
	}

	writeJSON(w, http.StatusOK, id)
}

// GET /parcel/parcel-types/
func (h *ParcelHandler) ListParcelTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.parcelService.ListTypes(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list parcel types")
		return
	}

	writeJSON(w, http.StatusOK, types)
}

// GET /parcel/parcels/?type_id=&has_delivery_cost=&page=&page_size=
func (h *ParcelHandler) ListParcels(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.SessionNotFound())
		return
	}

	params, err := parseListParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.parcelService.List(r.Context(), sessionID, params)
	if err != nil {
		writeServiceError(w, err, "failed to list parcels")
		return
	}

	writeJSON(w, http.StatusOK, parcelList{
		Items: formatParcels(page.Items),
		Total: page.Total,
	})
}

// GET /parcel/parcels/{id}/
func (h *ParcelHandler) GetParcel(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.SessionNotFound())
		return
	}

	row, err := h.parcelService.Get(r.Context(), sessionID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "failed to get parcel")
		return
	}

	writeJSON(w, http.StatusOK, formatParcel(*row))
}

// writeServiceError logs backend failures before writing the error response.
// Client errors are written without logging.
func writeServiceError(w http.ResponseWriter, err error, msg string) {
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.IsInfrastructure() {
		log.Error().Err(err).Str("code", string(apperrors.GetCode(err))).Msg(msg)
	}
	httputil.WriteError(w, err)
}
