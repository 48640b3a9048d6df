package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/handler/http/response"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/jwt"
)

// AuthRequired turns the token verified by jwtauth.Verifier into an auth.Session.
func AuthRequired(tokens jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			sess, err := tokens.SessionFromClaims(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		}
		return http.HandlerFunc(hfn)
	}
}

// SSETokenAuth authenticates EventSource requests, which carry a short-lived token in
// the "token" query parameter instead of a header.
func SSETokenAuth(tokens jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.URL.Query().Get("token")
			if raw == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			sess, err := tokens.ValidateSSEToken(raw)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}
