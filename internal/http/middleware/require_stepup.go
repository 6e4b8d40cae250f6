package middleware

import (
	"context"
	"net/http"

	"github.com/valumind/auth/internal/httputil"
	"github.com/valumind/auth/pkg/auth"
)

// RequireStepUp creates middleware that admits only freshly-elevated
// sessions. The guard chain is evaluated in order and every rejection
// terminates the request before the downstream handler runs:
//
//  1. Absent or malformed Authorization header: 401.
//  2. Bad signature, malformed token, or past expiry: 401.
//  3. Valid token without the stepped_up claim: 403, distinct from 401 so
//     clients trigger the step-up flow instead of re-logging-in.
//
// On success the subject is attached to the request context.
func RequireStepUp(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := BearerToken(r)
			if !ok {
				httputil.Error(w, http.StatusUnauthorized, "missing authorization")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if !claims.SteppedUp {
				httputil.Error(w, http.StatusForbidden, "Step-up authentication required")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid token subject")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
