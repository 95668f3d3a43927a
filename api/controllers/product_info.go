package controllers

import (
	"net/http"

	"github.com/keepsake-app/keepsake-backend/api/responses"
	"github.com/keepsake-app/keepsake-backend/api/validators"
	"github.com/keepsake-app/keepsake-backend/internal/productinfo"
	"github.com/keepsake-app/keepsake-backend/pkg/logger"
)

type productInfoRequest struct {
	URL string `json:"url"`
}

type productInfoError struct {
	Error string `json:"error"`
}

// ProductInfo classifies a product link by retailer. A missing url is
// answered with 200 and an error field.
func ProductInfo(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req productInfoRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if req.URL == "" {
			responses.WriteSuccess(w, productInfoError{Error: "URL is required"})
			return
		}
		responses.WriteSuccess(w, productinfo.Classify(req.URL))
	}
}
