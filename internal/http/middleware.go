package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openride/rideapi/internal/identity"
)

type contextKey int

const actorContextKey contextKey = iota

// requireActor resolves the bearer token into a verified identity and makes
// it available to downstream handlers.
func (s *Server) requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}

		actor, err := s.resolver.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrUnknownToken) {
				s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
				return
			}
			s.logger.WithError(err).Error("identity resolution failed")
			s.respondError(w, http.StatusServiceUnavailable, "IDENTITY_UNAVAILABLE", "Could not verify identity")
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFrom(r *http.Request) (identity.Identity, bool) {
	actor, ok := r.Context().Value(actorContextKey).(identity.Identity)
	return actor, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}
