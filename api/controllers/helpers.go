// Package controllers holds the HTTP handlers. Each handler decodes and
// validates the request, calls one service operation, and writes the shared
// response envelope.
package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarashraf/kasher-backend/api/middleware"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func shopSlug(r *http.Request) string {
	return chi.URLParam(r, "slug")
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.NewValidation(map[string]string{field: "must be a decimal number"})
	}
	return value, nil
}

func parseOptionalAmount(field string, raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := parseAmount(field, *raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
