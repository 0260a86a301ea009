// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/strixun/edge-core/internal/store"
	"github.com/strixun/edge-core/internal/utils"
	"github.com/strixun/edge-core/models"
)

type migrateBody struct {
	Service    string `json:"service"`
	Prefix     string `json:"prefix"`
	EntityType string `json:"entityType"`
	DryRun     bool   `json:"dryRun"`
	DeleteOld  bool   `json:"deleteOld"`

	// IndexRelationship/IndexField, when set, merge a single-valued index
	// idx:{service}:{relationship}:{value-of-field} for every migrated
	// entity.
	IndexRelationship string `json:"indexRelationship,omitempty"`
	IndexField        string `json:"indexField,omitempty"`
}

// Migrate handles POST /admin/migrate: rewrites legacy keys under a prefix
// into canonical entity keys, optionally merging one secondary index. The
// finished migration record is returned.
func (h *Handler) Migrate(w http.ResponseWriter, r *http.Request) {
	var body migrateBody
	if err := readJSONBody(r, &body); err != nil {
		utils.WriteAPIError(w, models.APIError{Kind: models.KindValidation, Message: "malformed migration request"}, http.StatusBadRequest)
		return
	}
	if body.Service == "" || body.Prefix == "" || body.EntityType == "" {
		utils.WriteAPIError(w, models.APIError{Kind: models.KindValidation, Message: "service, prefix and entityType are required"}, http.StatusBadRequest)
		return
	}

	transform := func(oldKey string, oldValue []byte) (*store.TransformResult, error) {
		id := strings.Trim(strings.TrimPrefix(oldKey, body.Prefix), ":")
		if id == "" {
			return nil, nil
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(oldValue, &fields); err != nil {
			return nil, fmt.Errorf("legacy value is not a JSON object: %w", err)
		}

		result := &store.TransformResult{EntityType: body.EntityType, ID: id, Data: fields}

		if body.IndexRelationship != "" && body.IndexField != "" {
			var parent string
			if raw, ok := fields[body.IndexField]; ok {
				_ = json.Unmarshal(raw, &parent)
			}
			if parent == "" {
				return nil, fmt.Errorf("index field %q missing or empty", body.IndexField)
			}
			result.Indexes = []store.IndexMerge{{Relationship: body.IndexRelationship, Parent: parent, Single: true}}
		}

		return result, nil
	}

	record, err := h.services.Migrations.Run(r.Context(), store.MigrationOptions{
		Service:   body.Service,
		Prefix:    body.Prefix,
		DryRun:    body.DryRun,
		DeleteOld: body.DeleteOld,
	}, transform)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_, _ = utils.WriteJSON(w, record, http.StatusOK)
}

// GetMigration handles GET /admin/migrations/{migrationID}.
func (h *Handler) GetMigration(w http.ResponseWriter, r *http.Request) {
	record, err := h.services.Migrations.GetMigrationRecord(r.Context(), chi.URLParam(r, "migrationID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_, _ = utils.WriteJSON(w, record, http.StatusOK)
}
