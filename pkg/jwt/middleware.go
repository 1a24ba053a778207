package jwt

import (
	"errors"
	"net/http"
	"strings"
)

// TokenExtractor pulls the raw token out of a request.
type TokenExtractor func(r *http.Request) (string, error)

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	Extractor TokenExtractor
	// Optional lets requests without a token through unauthenticated.
	// A token that is present must still be valid.
	Optional     bool
	Skip         func(r *http.Request) bool
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// Middleware verifies the request token and stores its claims in the context.
func Middleware(s *Service, cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.Extractor == nil {
		cfg.Extractor = BearerTokenExtractor
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := cfg.Extractor(r)
			if errors.Is(err, ErrMissingToken) && cfg.Optional {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}

			claims, err := s.Parse(raw)
			if err != nil {
				cfg.ErrorHandler(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerTokenExtractor reads "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}
