package controllers

import (
	"net/http"

	"github.com/omarashraf/kasher-backend/api/responses"
	"github.com/omarashraf/kasher-backend/api/validators"
	"github.com/omarashraf/kasher-backend/pkg/barcode"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
	"github.com/omarashraf/kasher-backend/pkg/logger"
)

type completeBarcodeRequest struct {
	Payload string `json:"payload" validate:"required,len=12,numeric"`
}

type validateBarcodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// BarcodeComplete appends the EAN-13 check digit to a 12 digit payload.
func BarcodeComplete(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload completeBarcodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := barcode.Complete(payload.Payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.NewValidation(map[string]string{"payload": err.Error()}))
			return
		}
		responses.WriteSuccess(w, map[string]string{"barcode": code})
	}
}

// BarcodeValidate checks an EAN-13 code against its check digit.
func BarcodeValidate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload validateBarcodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"code":  payload.Code,
			"valid": barcode.IsValid(payload.Code),
		})
	}
}
