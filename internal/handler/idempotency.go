package handler

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/installment-ledger/pkg/response"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	// How long a request may hold the in-progress lock before another
	// attempt with the same key is let through.
	provisionalLockTTL = 60 * time.Second
	maxKeyLength       = 128
)

var errCorruptEntry = errors.New("corrupt idempotency entry")

type idempEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

type idempRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *idempRecorder) Header() http.Header { return r.w.Header() }
func (r *idempRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *idempRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

// IdempotencyMiddleware makes mutating requests carrying an Idempotency-Key
// safe to retry. The key is scoped by actor, method and path. A completed
// response is replayed as is; reusing a key with another body, or while the
// first request is still running, is a 409. Requests without the header pass
// through.
//
// It must run after ActorMiddleware.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			idemKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if idemKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(idemKey) > maxKeyLength {
				response.BadRequest(w, "invalid "+IdempotencyHeader, nil)
				return
			}

			var body []byte
			if r.Body != nil {
				var err error
				body, err = io.ReadAll(r.Body)
				if err != nil {
					response.BadRequest(w, "could not read request body", err)
					return
				}
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			bhash := bodyHash(body)

			key := idempotencyKey(ActorFromContext(r.Context()), r.Method, r.URL.Path, idemKey)
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			ok, err := provisionalSet(ctx, rdb, key, idempEntry{InProgress: true, BodySHA256: bhash, CreatedAt: time.Now().UTC()})
			if err != nil {
				log.Printf("idempotency: store unavailable for %s: %v", key, err)
				response.Error(w, http.StatusServiceUnavailable, "idempotency store unavailable", nil)
				return
			}
			if !ok {
				cur, err := loadEntry(ctx, rdb, key)
				switch {
				case errors.Is(err, redis.Nil):
					// released between the two calls, the first attempt failed
				case errors.Is(err, errCorruptEntry):
					log.Printf("idempotency: dropping unreadable entry %s: %v", key, err)
					if err := rdb.Del(ctx, key).Err(); err != nil {
						log.Printf("idempotency: could not release %s: %v", key, err)
					}
					response.Error(w, http.StatusServiceUnavailable, "idempotency entry unreadable, retry the request", nil)
					return
				case err != nil:
					log.Printf("idempotency: could not load %s: %v", key, err)
					response.Error(w, http.StatusServiceUnavailable, "idempotency store unavailable", nil)
					return
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					response.Conflict(w, IdempotencyHeader+" reused with a different body")
					return
				}
				if !cur.InProgress && cur.Code != 0 {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("Idempotent-Replayed", "true")
					w.WriteHeader(cur.Code)
					_, _ = w.Write(cur.Body)
					return
				}
				response.Conflict(w, "request is already in progress")
				return
			}

			rec := &idempRecorder{w: w, buf: &bytes.Buffer{}, code: http.StatusOK}
			next.ServeHTTP(rec, r)

			// server errors are not cached so the client can retry them
			if rec.code >= http.StatusInternalServerError {
				if err := rdb.Del(context.Background(), key).Err(); err != nil {
					log.Printf("idempotency: could not release %s: %v", key, err)
				}
				return
			}

			final := idempEntry{Code: rec.code, Body: rec.buf.Bytes(), BodySHA256: bhash, CreatedAt: time.Now().UTC()}
			if err := saveFinal(context.Background(), rdb, key, final, ttl); err != nil {
				log.Printf("idempotency: could not save %s: %v", key, err)
			}
		})
	}
}

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func idempotencyKey(actorID, method, path, idemKey string) string {
	return "idemp:" + actorID + ":" + strings.ToLower(method) + ":" + path + ":" + idemKey
}

func provisionalSet(ctx context.Context, rdb *redis.Client, key string, entry idempEntry) (bool, error) {
	payload, _ := json.Marshal(entry)
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func loadEntry(ctx context.Context, rdb *redis.Client, key string) (idempEntry, error) {
	var e idempEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return idempEntry{}, fmt.Errorf("%w: %v", errCorruptEntry, err)
	}
	return e, nil
}

func saveFinal(ctx context.Context, rdb *redis.Client, key string, entry idempEntry, ttl time.Duration) error {
	payload, _ := json.Marshal(entry)
	return rdb.Set(ctx, key, payload, ttl).Err()
}
