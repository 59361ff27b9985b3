package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/orders-service/internal/cache"
	"github.com/vasiliy-maslov/orders-service/internal/port"
)

const (
	idempotencyKeyHeader = "X-Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour
)

// storedResponse is the full response replayed for a repeated key.
type storedResponse struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Idempotency deduplicates state-changing requests carrying an
// X-Idempotency-Key header. The first request executes normally; its response
// is stored only on a success status, so failed attempts can be retried.
// Repeats within the expiry window are served verbatim from the store without
// re-executing side effects. Store failures degrade to a cache miss.
func Idempotency(store port.Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			cacheKey := cache.IdempotencyKey(token)

			var cached storedResponse
			if hit, _ := store.Get(r.Context(), cacheKey, &cached); hit {
				log.Info().Str("idempotency_key", token).Msg("idempotency: serving cached response")

				for name, value := range cached.Headers {
					w.Header().Set(name, value)
				}
				w.WriteHeader(cached.StatusCode)
				_, _ = w.Write([]byte(cached.Body))
				return
			}

			recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			if recorder.status >= 200 && recorder.status < 300 {
				headers := make(map[string]string)
				for name := range w.Header() {
					if strings.HasPrefix(name, "Transfer-") || name == "Content-Length" {
						continue
					}
					headers[name] = w.Header().Get(name)
				}

				_ = store.Set(r.Context(), cacheKey, storedResponse{
					StatusCode: recorder.status,
					Headers:    headers,
					Body:       recorder.body.String(),
				}, idempotencyTTL)

				log.Debug().Str("idempotency_key", token).Msg("idempotency: cached response")
			}
		})
	}
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// responseRecorder tees the response body so it can be stored while still
// streaming to the client.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
