package controllers

import (
	"net/http"

	"github.com/omarashraf/kasher-backend/api/responses"
	"github.com/omarashraf/kasher-backend/api/validators"
	"github.com/omarashraf/kasher-backend/internal/shops"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
	"github.com/omarashraf/kasher-backend/pkg/logger"
)

type createShopRequest struct {
	Name               string  `json:"name" validate:"required,min=1"`
	CurrencyCode       string  `json:"currency_code" validate:"required,len=3"`
	DiscountPercentage *string `json:"discount_percentage,omitempty"`
	TaxPercentage      *string `json:"tax_percentage,omitempty"`
}

type updateShopRequest struct {
	Name               *string `json:"name,omitempty" validate:"omitempty,min=1"`
	CurrencyCode       *string `json:"currency_code,omitempty" validate:"omitempty,len=3"`
	DiscountPercentage *string `json:"discount_percentage,omitempty"`
	TaxPercentage      *string `json:"tax_percentage,omitempty"`
}

// ShopCreate registers a new shop owned by the caller.
func ShopCreate(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createShopRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := shops.CreateShopInput{Name: payload.Name, CurrencyCode: payload.CurrencyCode}
		if payload.DiscountPercentage != nil {
			if input.DiscountPercentage, err = parseAmount("discount_percentage", *payload.DiscountPercentage); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if payload.TaxPercentage != nil {
			if input.TaxPercentage, err = parseAmount("tax_percentage", *payload.TaxPercentage); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		shop, err := svc.Create(r.Context(), uid, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shop)
	}
}

// ShopList returns every shop the caller owns or manages.
func ShopList(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ShopGet returns one shop by slug, for members only.
func ShopGet(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.Get(r.Context(), uid, shopSlug(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}

// ShopUpdate adjusts the shop settings. The slug never changes.
func ShopUpdate(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateShopRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := shops.UpdateShopInput{Name: payload.Name, CurrencyCode: payload.CurrencyCode}
		if input.DiscountPercentage, err = parseOptionalAmount("discount_percentage", payload.DiscountPercentage); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.TaxPercentage, err = parseOptionalAmount("tax_percentage", payload.TaxPercentage); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shop, err := svc.Update(r.Context(), uid, shopSlug(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}

// ShopDelete removes a shop and everything under it. Owner only.
func ShopDelete(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), uid, shopSlug(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
