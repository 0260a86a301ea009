// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/strixun/edge-core/models"
)

// WriteJSON serializes the given data to JSON and writes it to the HTTP
// response.
//
// It sets the "Content-Type" header to "application/json" and writes the
// provided HTTP status code before sending the response body. If marshaling
// fails, it responds with 500 Internal Server Error and returns a wrapped
// error.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// WriteAPIError writes a models.APIError body with the given status code.
// RateLimited errors also receive a Retry-After header.
func WriteAPIError(w http.ResponseWriter, apiErr models.APIError, statusCode int) {
	if apiErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(apiErr.RetryAfter))
	}
	_, _ = WriteJSON(w, apiErr, statusCode)
}
