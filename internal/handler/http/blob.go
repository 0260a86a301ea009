// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"encoding/hex"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strixun/edge-core/internal/crypto"
	"github.com/strixun/edge-core/internal/service"
	"github.com/strixun/edge-core/internal/store"
	"github.com/strixun/edge-core/internal/utils"
	"github.com/strixun/edge-core/models"
)

type uploadObjectResponse struct {
	ID               string `json:"id"`
	Size             int64  `json:"size"`
	SHA256           string `json:"sha256"`
	EncryptionFormat string `json:"encryptionFormat"`
}

// UploadObject handles POST /objects/{objectID}. The first byte of the
// body picks the pipeline: 5 and 4 are client-encrypted envelopes that are
// validated against the caller's token and stored raw; anything else must
// be the legacy JSON-encrypted format. The server never keeps plaintext
// at rest.
func (h *Handler) UploadObject(w http.ResponseWriter, r *http.Request) {
	objectID := chi.URLParam(r, "objectID")

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		utils.WriteAPIError(w, models.APIError{Kind: models.KindValidation, Message: "cannot read upload body"}, http.StatusBadRequest)
		return
	}

	contentType := r.Header.Get("Content-Type")
	format, err := store.DetectBlobFormat(data, contentType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	customerID, _ := utils.GetCustomerIDFromContext(r.Context())

	// Envelope uploads are decrypted once, to prove the caller holds the
	// binding token and to hash the plaintext; the stored bytes stay
	// sealed.
	digest := crypto.SHA256Sum(data)
	if format == models.EncryptionFormatV5 || format == models.EncryptionFormatV4 {
		if token, ok := requestToken(r); ok {
			plaintext, err := crypto.DecryptEnvelope(token.SignedString, data)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			digest = crypto.SHA256Sum(plaintext)
		}
	}

	meta := models.StoredObjectMeta{
		EncryptionFormat:    format,
		SHA256:              hex.EncodeToString(digest),
		OriginalContentType: contentType,
		CustomerID:          customerID,
	}

	if err := h.services.Blobs.Put(r.Context(), objectID, data, meta); err != nil {
		h.writeError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, uploadObjectResponse{
		ID:               objectID,
		Size:             int64(len(data)),
		SHA256:           meta.SHA256,
		EncryptionFormat: format,
	}, http.StatusCreated)
}

// DownloadObject handles GET /objects/{objectID}. The stored encryption
// format selects the decoder: envelope formats are opened with the
// caller's token and streamed as octet-stream; legacy objects come back
// verbatim.
func (h *Handler) DownloadObject(w http.ResponseWriter, r *http.Request) {
	objectID := chi.URLParam(r, "objectID")

	data, meta, err := h.services.Blobs.Get(r.Context(), objectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	access := store.AccessContext{IsAdmin: isPrivileged(r)}
	if id, ok := utils.GetCustomerIDFromContext(r.Context()); ok {
		access.CustomerID = id
	}
	if !store.CanAccessOwned(meta, access) {
		h.writeError(w, r, store.ErrForbidden)
		return
	}

	switch meta.EncryptionFormat {
	case models.EncryptionFormatV5, models.EncryptionFormatV4:
		token, ok := requestToken(r)
		if !ok {
			h.writeError(w, r, service.ErrTokenIsExpiredOrInvalid)
			return
		}
		plaintext, err := crypto.DecryptEnvelope(token.SignedString, data)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(plaintext)

	default:
		contentType := meta.OriginalContentType
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// isPrivileged reports whether the caller is a cooperating service or a
// super-admin customer.
func isPrivileged(r *http.Request) bool {
	if at, ok := utils.GetAuthTypeFromContext(r.Context()); ok && at == utils.AuthTypeService {
		return true
	}
	if token, ok := requestToken(r); ok {
		return token.Claims.IsSuperAdmin
	}
	return false
}
