// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package http

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Root fields that survive every filter. Identity must stay addressable
// even on a heavily filtered response.
var alwaysKept = map[string]bool{
	"id":         true,
	"customerId": true,
}

// fieldTags maps a ?tags= selector to the root fields of its projection.
// Tags ride the include list: requesting a tag behaves exactly like
// listing its fields in ?include=. Unknown tags expand to nothing.
var fieldTags = map[string][]string{
	"summary": {"displayName", "plan", "tier", "status"},
	"public":  {"displayName", "flairs", "createdAt"},
	"contact": {"email", "preferences"},
	"audit":   {"createdAt", "updatedAt"},
}

// responseFilter is the field selection parsed from the query string
// (?include=a,b&exclude=c&tags=summary,public).
type responseFilter struct {
	include map[string]bool
	exclude map[string]bool
}

func parseResponseFilter(query url.Values) responseFilter {
	include := splitFields(query.Get("include"))
	for tag := range splitFields(query.Get("tags")) {
		for _, field := range fieldTags[tag] {
			if include == nil {
				include = make(map[string]bool)
			}
			include[field] = true
		}
	}
	return responseFilter{
		include: include,
		exclude: splitFields(query.Get("exclude")),
	}
}

func splitFields(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	fields := make(map[string]bool)
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields[f] = true
		}
	}
	return fields
}

func (f responseFilter) empty() bool {
	return f.include == nil && f.exclude == nil
}

// apply filters the root fields of a JSON object body, preserving
// structure. Non-object bodies pass through untouched.
func (f responseFilter) apply(body []byte) []byte {
	if f.empty() {
		return body
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}

	for name := range fields {
		if alwaysKept[name] {
			continue
		}
		if f.include != nil && !f.include[name] {
			delete(fields, name)
			continue
		}
		if f.exclude[name] {
			delete(fields, name)
		}
	}

	filtered, err := json.Marshal(fields)
	if err != nil {
		return body
	}
	return filtered
}
