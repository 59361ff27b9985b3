package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
)

type contextKey string

const customerIDKey contextKey = "customer_id"

// tokenVerifier resolves a bearer token to the authenticated customer id.
type tokenVerifier interface {
	VerifyToken(token string) (uuid.UUID, error)
}

// Auth requires a valid bearer token and stores the customer id in the
// request context. Downstream handlers trust it as the acting principal.
func Auth(verifier tokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			customerID, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), customerIDKey, customerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CustomerIDFromContext returns the authenticated customer id, if any.
func CustomerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(customerIDKey).(uuid.UUID)
	return id, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"code":"` + string(domain.CodeUnauthorized) + `","message":"` + message + `"}`))
}
