package controllers

import (
	"net/http"

	"github.com/keepsake-app/keepsake-backend/api/responses"
	"github.com/keepsake-app/keepsake-backend/api/validators"
	"github.com/keepsake-app/keepsake-backend/pkg/logger"
)

// passwordGate is the shared-secret check every mutating handler calls before
// touching storage.
type passwordGate interface {
	Verify(supplied string) bool
	Authorize(supplied string) error
}

type adminVerifyRequest struct {
	Password string `json:"password"`
}

type adminVerifyResponse struct {
	Valid bool `json:"valid"`
}

// AdminVerify reports whether the supplied password is the admin password.
// A wrong password is not an error here.
func AdminVerify(gate passwordGate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req adminVerifyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, adminVerifyResponse{Valid: gate.Verify(req.Password)})
	}
}
