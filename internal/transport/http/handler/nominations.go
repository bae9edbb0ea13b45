package handler

import (
	"net/http"

	"github.com/entrepreneur-award/award-api/internal/application/nomination"
	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/entrepreneur-award/award-api/internal/transport/http/middleware"
)

type NominationHandler struct {
	svc nomination.Service
}

func NewNominationHandler(svc nomination.Service) *NominationHandler {
	return &NominationHandler{svc: svc}
}

func (h *NominationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateNominationRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.svc.Create(r.Context(), claims.UserID(), req)
	if err != nil {
		httpError(w, r, "nominations.create", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NominationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.svc.ListByNominator(r.Context(), claims.UserID())
	if err != nil {
		httpError(w, r, "nominations.list", err)
		return
	}
	if list == nil {
		list = []domain.Nomination{}
	}
	writeJSON(w, http.StatusOK, NominationsEnvelope{Data: list})
}
