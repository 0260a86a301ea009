// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strixun/edge-core/internal/integrity"
	"github.com/strixun/edge-core/internal/service"
	"github.com/strixun/edge-core/internal/utils"
	"github.com/strixun/edge-core/models"
)

type createDataRequestBody struct {
	TargetCustomerID string `json:"targetCustomerId"`
	DataType         string `json:"dataType"`
}

type collectDataRequestResponse struct {
	Request models.DataRequest `json:"request"`

	// Payload is the sealed two-stage envelope, base64url. Opening it
	// takes both the grant key and the owner's token.
	Payload string `json:"payload"`
}

// CreateDataRequest handles POST /admin/data-requests (super-admin only;
// gated by middleware).
func (h *Handler) CreateDataRequest(w http.ResponseWriter, r *http.Request) {
	var body createDataRequestBody
	if err := readJSONBody(r, &body); err != nil || body.TargetCustomerID == "" {
		utils.WriteAPIError(w, models.APIError{Kind: models.KindValidation, Message: "targetCustomerId and dataType are required"}, http.StatusBadRequest)
		return
	}

	requesterID, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		// Service-key callers must name the requesting customer explicitly.
		requesterID = r.Header.Get(integrity.HeaderCustomerID)
	}
	if requesterID == "" {
		utils.WriteAPIError(w, models.APIError{Kind: models.KindValidation, Message: "requester customer id is required"}, http.StatusBadRequest)
		return
	}

	request, err := h.services.DataRequests.Create(r.Context(), requesterID, body.TargetCustomerID, body.DataType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_, _ = utils.WriteJSON(w, request, http.StatusCreated)
}

// ListDataRequests handles GET /data-requests: the requests aimed at the
// calling customer.
func (h *Handler) ListDataRequests(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	requests, err := h.services.DataRequests.ListForTarget(r.Context(), customerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_, _ = utils.WriteJSON(w, requests, http.StatusOK)
}

// ApproveDataRequest handles POST /data-requests/{requestID}/approve. The
// caller must be the target; their bearer token keys the inner stage of
// the sealed payload.
func (h *Handler) ApproveDataRequest(w http.ResponseWriter, r *http.Request) {
	token, ok := requestToken(r)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	request, err := h.services.DataRequests.Approve(r.Context(), chi.URLParam(r, "requestID"), token.CustomerID(), token.SignedString)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_, _ = utils.WriteJSON(w, request, http.StatusOK)
}

// RejectDataRequest handles POST /data-requests/{requestID}/reject.
func (h *Handler) RejectDataRequest(w http.ResponseWriter, r *http.Request) {
	token, ok := requestToken(r)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	request, err := h.services.DataRequests.Reject(r.Context(), chi.URLParam(r, "requestID"), token.CustomerID())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_, _ = utils.WriteJSON(w, request, http.StatusOK)
}

// CollectDataRequest handles GET /data-requests/{requestID}/collect: the
// requester picks up the grant key (sealed to their token) and the
// two-stage payload.
func (h *Handler) CollectDataRequest(w http.ResponseWriter, r *http.Request) {
	token, ok := requestToken(r)
	if !ok {
		h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
		return
	}

	request, payload, err := h.services.DataRequests.Collect(r.Context(), chi.URLParam(r, "requestID"), token.CustomerID(), token.SignedString)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_, _ = utils.WriteJSON(w, collectDataRequestResponse{Request: request, Payload: payload}, http.StatusOK)
}
