package parcels_api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/metrics"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
)

type Service interface {
	ListCarriers() []models.CarrierDescriptor
	AcceptsFormat(carrierID, trackingID string) bool
	RankCarriers(trackingID string) []models.CarrierDescriptor
	GetParcel(ctx context.Context, carrierID, trackingID, postalCode string) (models.Parcel, error)

	CreateParcelRef(ctx context.Context, in models.ParcelRefCreateInput) (*models.ParcelRef, error)
	ListParcelRefs(ctx context.Context, includeArchived bool) ([]*models.ParcelRef, error)
	GetParcelDetail(ctx context.Context, id uint64) (*parcels.Detail, error)
	SetArchived(ctx context.Context, id uint64, archived bool) error
	DismissArchivePrompt(ctx context.Context, id uint64) error
	DeleteParcel(ctx context.Context, id uint64) error
}

type ParcelsAPI struct {
	svc     Service
	metrics *metrics.Metrics
}

func New(svc Service, m *metrics.Metrics) *ParcelsAPI {
	return &ParcelsAPI{svc: svc, metrics: m}
}

func (a *ParcelsAPI) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", a.metrics.Handler())

	r.Get("/carriers", a.listCarriers)
	r.Get("/carriers/rank", a.rankCarriers)
	r.Get("/carriers/{carrierId}/accepts", a.acceptsFormat)
	r.Get("/track/{carrierId}/{trackingId}", a.track)

	r.Route("/parcels", func(r chi.Router) {
		r.Post("/", a.createParcel)
		r.Get("/", a.listParcels)
		r.Get("/{id}", a.getParcel)
		r.Delete("/{id}", a.deleteParcel)
		r.Post("/{id}/archive", a.archive(true))
		r.Post("/{id}/unarchive", a.archive(false))
		r.Post("/{id}/dismiss-archive-prompt", a.dismissArchivePrompt)
	})
	return r
}

func (a *ParcelsAPI) listCarriers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.ListCarriers())
}

func (a *ParcelsAPI) rankCarriers(w http.ResponseWriter, r *http.Request) {
	out := a.svc.RankCarriers(r.URL.Query().Get("trackingId"))
	if out == nil {
		out = []models.CarrierDescriptor{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *ParcelsAPI) acceptsFormat(w http.ResponseWriter, r *http.Request) {
	ok := a.svc.AcceptsFormat(chi.URLParam(r, "carrierId"), r.URL.Query().Get("trackingId"))
	writeJSON(w, http.StatusOK, map[string]bool{"accepts": ok})
}

func (a *ParcelsAPI) track(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.GetParcel(r.Context(), chi.URLParam(r, "carrierId"), chi.URLParam(r, "trackingId"), r.URL.Query().Get("postalCode"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type createParcelRequest struct {
	HumanName  string  `json:"humanName"`
	TrackingID string  `json:"trackingId"`
	CarrierID  string  `json:"carrierId"`
	PostalCode *string `json:"postalCode"`
}

func (a *ParcelsAPI) createParcel(w http.ResponseWriter, r *http.Request) {
	var req createParcelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, carrier.NewError(carrier.KindValidation, "", errors.Wrap(err, "decode body")))
		return
	}
	ref, err := a.svc.CreateParcelRef(r.Context(), models.ParcelRefCreateInput{
		HumanName:  req.HumanName,
		TrackingID: req.TrackingID,
		CarrierID:  req.CarrierID,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}

func (a *ParcelsAPI) listParcels(w http.ResponseWriter, r *http.Request) {
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("includeArchived"))
	refs, err := a.svc.ListParcelRefs(r.Context(), includeArchived)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

func (a *ParcelsAPI) getParcel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	d, err := a.svc.GetParcelDetail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *ParcelsAPI) deleteParcel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := a.svc.DeleteParcel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *ParcelsAPI) archive(archived bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := a.svc.SetArchived(r.Context(), id, archived); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *ParcelsAPI) dismissArchivePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := a.svc.DismissArchivePrompt(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Kind: carrier.KindValidation.String(), Message: "invalid parcel id"})
		return 0, false
	}
	return id, true
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrParcelNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Kind: "parcel_not_found", Message: err.Error()})
		return
	}
	kind, ok := carrier.KindOf(err)
	if !ok {
		slog.Error("request failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorBody{Kind: "internal", Message: "internal error"})
		return
	}

	code := http.StatusBadGateway
	switch kind {
	case carrier.KindValidation:
		code = http.StatusBadRequest
	case carrier.KindNotFound:
		code = http.StatusNotFound
	case carrier.KindAPIKeyMissing, carrier.KindNetworkFailure:
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, errorBody{Kind: kind.String(), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
