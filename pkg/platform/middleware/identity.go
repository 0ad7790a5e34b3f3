package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	id "github.com/genesisbarrios/senfiltro/pkg/domain"
	"github.com/genesisbarrios/senfiltro/pkg/requestcontext"
)

// IdentityHeader carries the pre-verified caller identity. Verification
// happens upstream (signature checks at the edge); the registry trusts the
// header and only validates its shape.
const IdentityHeader = "X-Actor-Identity"

// RequireIdentity rejects requests without a well-formed caller identity and
// injects the parsed identity into the request context.
func RequireIdentity(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(IdentityHeader)
			if raw == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing_identity", "caller identity header is required")
				return
			}
			actor, err := id.ParseIdentity(raw)
			if err != nil || actor.IsZero() {
				logger.WarnContext(r.Context(), "rejected malformed caller identity",
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "invalid_identity", "caller identity is malformed")
				return
			}
			ctx := requestcontext.WithIdentity(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}
