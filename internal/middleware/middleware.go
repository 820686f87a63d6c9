package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"menuely/internal/model"
	"menuely/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Identity and tracing headers.
const (
	HeaderAPIKey        = "X-API-Key"
	HeaderRestaurantID  = "X-Restaurant-ID"
	HeaderUserID        = "X-User-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

type contextKey int

const (
	correlationIDKey contextKey = iota
	principalKey
)

// CORS adds CORS headers to the response.
func CORS() func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type",
			HeaderAPIKey,
			HeaderRestaurantID,
			HeaderUserID,
			HeaderCorrelationID,
		},
		ExposedHeaders: []string{HeaderCorrelationID},
	})
	return c.Handler
}

// CorrelationID tags every request with an id, taken from the
// X-Correlation-ID header or generated.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderCorrelationID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), correlationIDKey, id)))
	})
}

// CorrelationIDFromContext returns the request's correlation id, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// WithPrincipal stores the authenticated caller in ctx.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(model.Principal)
	return p, ok && p != nil
}

// public reports whether path skips authentication.
func public(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/static/")
}

// APIKeyAuth validates the API key from the X-API-Key header.
func APIKeyAuth(apiKey string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(HeaderAPIKey)
			if providedKey == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing API key")
				writeUnauthorised(w, r, "missing API key")
				return
			}

			if providedKey != apiKey {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("provided_key", providedKey[:min(8, len(providedKey))]).
					Msg("invalid API key")
				writeUnauthorised(w, r, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate resolves the X-Restaurant-ID or X-User-ID header to a
// model.Principal. Requests carrying neither continue anonymously; handlers
// decide whether they need a caller.
func Authenticate(
	restaurants repository.RestaurantRepository,
	users repository.UserRepository,
	q repository.Querier,
	logger zerolog.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			restaurantHeader := r.Header.Get(HeaderRestaurantID)
			userHeader := r.Header.Get(HeaderUserID)

			var principal model.Principal
			switch {
			case restaurantHeader != "" && userHeader != "":
				writeUnauthorised(w, r, "only one of X-Restaurant-ID and X-User-ID may be set")
				return

			case restaurantHeader != "":
				id, err := strconv.ParseInt(restaurantHeader, 10, 64)
				if err != nil || id <= 0 {
					writeUnauthorised(w, r, "invalid restaurant id")
					return
				}
				restaurant, err := restaurants.GetByID(r.Context(), q, id)
				if err != nil {
					logger.Error().Err(err).Int64("restaurant_id", id).Msg("failed to resolve restaurant")
					writeErrorJSON(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
					return
				}
				if restaurant == nil {
					logger.Warn().Int64("restaurant_id", id).Msg("unknown restaurant")
					writeUnauthorised(w, r, "unknown restaurant")
					return
				}
				principal = model.RestaurantPrincipal{Restaurant: *restaurant}

			case userHeader != "":
				id, err := strconv.ParseInt(userHeader, 10, 64)
				if err != nil || id <= 0 {
					writeUnauthorised(w, r, "invalid user id")
					return
				}
				user, err := users.GetByID(r.Context(), q, id)
				if err != nil {
					logger.Error().Err(err).Int64("user_id", id).Msg("failed to resolve user")
					writeErrorJSON(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
					return
				}
				if user == nil {
					logger.Warn().Int64("user_id", id).Msg("unknown user")
					writeUnauthorised(w, r, "unknown user")
					return
				}
				principal = model.UserPrincipal{User: *user}
			}

			if principal != nil {
				r = r.WithContext(WithPrincipal(r.Context(), principal))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Str("correlation_id", CorrelationIDFromContext(r.Context())).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					writeErrorJSON(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorised(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorJSON(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "unauthorised: "+message)
}

func writeErrorJSON(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: CorrelationIDFromContext(r.Context()),
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
