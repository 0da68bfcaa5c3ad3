package service

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/crosschain-issuer/pkg/app/errors"
	apphttp "github.com/chainsafe/crosschain-issuer/pkg/app/http"
)

type handler struct {
	svc    Service
	logger *zap.Logger
}

// StartResponse acknowledges an accepted run.
type StartResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// RegisterRoutes mounts the issuance endpoints. protect wraps endpoints that
// start or cancel runs; nil leaves them open.
func RegisterRoutes(r chi.Router, svc Service, protect func(http.Handler) http.Handler, logger *zap.Logger) {
	h := &handler{svc: svc, logger: logger}

	r.Route("/issuances", func(r chi.Router) {
		r.Get("/", h.wrap(h.list))
		r.Get("/{id}", h.wrap(h.get))
		r.Group(func(r chi.Router) {
			if protect != nil {
				r.Use(protect)
			}
			r.Post("/", h.wrap(h.start))
			r.Post("/{id}/cancel", h.wrap(h.cancel))
		})
	})
}

func (h *handler) wrap(fn apphttp.HandlerFunc) http.HandlerFunc {
	return apphttp.HandleErrorWithLogger(fn, h.logger)
}

func (h *handler) start(w http.ResponseWriter, r *http.Request) error {
	var req StartRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	run, err := h.svc.StartIssuance(r.Context(), &req)
	if err != nil {
		return err
	}
	w.Header().Set("Location", "/api/v1/issuances/"+run.ID)
	apphttp.WriteJSON(w, http.StatusAccepted, StartResponse{ID: run.ID, Status: string(run.Status)})
	return nil
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	req := &ListRequest{Symbol: q.Get("symbol"), Status: q.Get("status")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return apperrors.BadRequestError(err, "limit must be a positive integer")
		}
		req.Limit = n
	}
	runs, err := h.svc.ListIssuances(r.Context(), req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, runs)
	return nil
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) error {
	details, err := h.svc.GetIssuance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, details)
	return nil
}

func (h *handler) cancel(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.CancelIssuance(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusAccepted)
	return nil
}
