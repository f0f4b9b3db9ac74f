package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuseats/campuseats-backend/api/responses"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	pkgredis "github.com/campuseats/campuseats-backend/pkg/redis"
)

const (
	IdempotencyHeader      = "Idempotency-Key"
	ReplayedHeader         = "Idempotent-Replayed"
	defaultIdempotencyTTL  = 24 * time.Hour
	inFlightIdempotencyTTL = time.Minute
	maxIdempotencyKeyLen   = 200
)

// replayableRoutes are "METHOD pattern" pairs that honor Idempotency-Key.
var replayableRoutes = map[string]bool{
	http.MethodPost + " /orders/create": true,
}

// idempotencyRecord is what the store holds per key: an in-flight marker
// first, then the finished response.
type idempotencyRecord struct {
	InFlight    bool   `json:"in_flight,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

type replayGuard struct {
	store pkgredis.IdempotencyStore
	ttl   time.Duration
	logg  *logger.Logger
}

// Idempotency makes order submission safe to retry. The first request with a
// given Idempotency-Key runs; later ones with the same body get the stored
// response back, with Idempotent-Replayed set. While the first is still
// running, repeats get 409 CONFLICT. A different body under the same key gets
// IDEMPOTENCY_KEY_REUSED. Only successes and partial writes are kept; every
// other failure releases the key so the caller can retry once it is fixed.
// Requests without the header, and routes outside replayableRoutes, pass
// through untouched.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	g := &replayGuard{store: store, ttl: ttl, logg: logg}
	if g.ttl <= 0 {
		g.ttl = defaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if g.store == nil || key == "" || !replayableRoutes[r.Method+" "+routePattern(r)] {
				next.ServeHTTP(w, r)
				return
			}
			if err := g.serve(w, r, key, next); err != nil {
				responses.WriteError(r.Context(), g.logg, w, err)
			}
		})
	}
}

func (g *replayGuard) serve(w http.ResponseWriter, r *http.Request, key string, next http.Handler) error {
	ctx := r.Context()
	if len(key) > maxIdempotencyKeyLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key too long").
			WithDetails(map[string]any{"field": IdempotencyHeader})
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	hash := hashBody(body)
	storeKey := g.store.IdempotencyKey(r.Method+" "+r.URL.Path, key)

	marker, _ := json.Marshal(idempotencyRecord{InFlight: true, RequestHash: hash})
	claimed, err := g.store.SetNX(ctx, storeKey, string(marker), inFlightIdempotencyTTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key")
	}
	if !claimed {
		return g.replay(ctx, w, storeKey, hash)
	}

	capture := &responseCapture{ResponseWriter: w}
	next.ServeHTTP(capture, r)
	g.remember(context.WithoutCancel(ctx), storeKey, hash, capture)
	return nil
}

func (g *replayGuard) remember(ctx context.Context, storeKey, hash string, capture *responseCapture) {
	status := capture.statusCode()
	if !leftServerState(status, capture.body.Bytes()) {
		if err := g.store.Del(ctx, storeKey); err != nil {
			g.logg.Error(ctx, "idempotency.release_failed", err)
		}
		return
	}
	payload, err := json.Marshal(idempotencyRecord{
		RequestHash: hash,
		Status:      status,
		ContentType: capture.Header().Get("Content-Type"),
		Body:        capture.body.Bytes(),
	})
	if err == nil {
		err = g.store.Set(ctx, storeKey, string(payload), g.ttl)
	}
	if err != nil {
		g.logg.Error(ctx, "idempotency.store_failed", err)
	}
}

// leftServerState reports whether a response is worth replaying: a created
// order or a PARTIAL_WRITE whose order row exists. Any other failure wrote
// nothing, so the key is released and a retry runs again.
func leftServerState(status int, body []byte) bool {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return true
	}
	var envelope struct {
		Code string `json:"code"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return false
	}
	return envelope.Code == string(pkgerrors.CodePartialWrite)
}

func (g *replayGuard) replay(ctx context.Context, w http.ResponseWriter, storeKey, hash string) error {
	inProgress := pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is in progress")

	stored, err := g.store.Get(ctx, storeKey)
	switch {
	case errors.Is(err, pkgredis.Nil):
		// the marker expired between SetNX and Get
		return inProgress
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	if record.RequestHash != hash {
		return pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key reused with a different request body")
	}
	if record.InFlight {
		return inProgress
	}

	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(record.Body)
	return nil
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// responseCapture tees the downstream response so it can be stored.
type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
