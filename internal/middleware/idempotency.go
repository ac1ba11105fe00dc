package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	headerIdempotencyKey   = "Idempotency-Key"
	headerIdempotentReplay = "Idempotent-Replay"
	maxReplayableBody      = 1 << 20 // 1 MB
)

// storedResponse is a completed response cached for replay.
type storedResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       []byte              `json:"body"`
}

// Idempotency returns middleware that deduplicates POST requests carrying an
// Idempotency-Key header, backed by a NATS JetStream KV bucket. A replayed
// request returns the stored response with an Idempotent-Replay marker
// instead of re-running the handler, so a client retrying a cart merge
// cannot apply it twice. Only completed responses below 500 are stored;
// a server error leaves the key unused and the retry runs the handler.
func Idempotency(kv jetstream.KeyValue) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(headerIdempotencyKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			// Keys are scoped per path so the same client key on two
			// endpoints cannot replay across them.
			key = strings.Trim(r.URL.Path, "/") + "/" + key

			entry, err := kv.Get(r.Context(), key)
			if err == nil {
				var cached storedResponse
				if err := json.Unmarshal(entry.Value(), &cached); err == nil {
					for k, vals := range cached.Headers {
						for _, v := range vals {
							w.Header().Add(k, v)
						}
					}
					w.Header().Set(headerIdempotentReplay, "true")
					w.WriteHeader(cached.StatusCode)
					_, _ = w.Write(cached.Body)
					return
				}
				slog.Warn("idempotency: corrupt cache entry", "key", key)
			}

			rec := &replayRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(rec, r)

			if rec.statusCode >= http.StatusInternalServerError {
				return
			}
			if rec.body.Len() > maxReplayableBody {
				return
			}
			cached := storedResponse{
				StatusCode: rec.statusCode,
				Headers:    w.Header().Clone(),
				Body:       rec.body.Bytes(),
			}
			data, marshalErr := json.Marshal(cached)
			if marshalErr == nil {
				if _, putErr := kv.Put(r.Context(), key, data); putErr != nil {
					slog.Warn("idempotency: failed to store response", "key", key, "error", putErr)
				}
			}
		})
	}
}

// replayRecorder wraps http.ResponseWriter to capture the response for replay.
type replayRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *replayRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *replayRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
