package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal/domain"
)

// maxBodyBytes caps JSON request bodies; avatar uploads have their own
// limit in the imaging package.
const maxBodyBytes = 1 << 20

// DecodeJSON decodes a JSON request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// ErrInvalidFieldInclusion is the base error for allowlist violations on
// partial updates. It wraps domain.ErrValidation so the standard mapping
// turns it into a 400.
var ErrInvalidFieldInclusion = fmt.Errorf("%w: invalid field inclusion", domain.ErrValidation)

// DecodeAllowlisted decodes a partial-update body into raw fields and
// rejects the whole request if any key falls outside the allowlist. The
// check is all-or-nothing and runs before any mutation.
func DecodeAllowlisted(r *http.Request, allowed []string) (map[string]json.RawMessage, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	fields := map[string]json.RawMessage{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode request body: %w", err)
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, key := range allowed {
		allowedSet[key] = true
	}

	var invalid []string
	for key := range fields {
		if !allowedSet[key] {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, domain.NewValidationError(
			"",
			fmt.Sprintf("Invalid field inclusion. Allowed field(s) are: %s",
				strings.Join(allowed, ", ")),
			ErrInvalidFieldInclusion,
		)
	}

	return fields, nil
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}
