package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderRequestAt = "X-Request-At"
	// HeaderReplayed is set on responses served from the store.
	HeaderReplayed = "Idempotent-Replayed"

	// in-progress lock; released or overwritten when the handler finishes
	provisionalLockTTL = 60 * time.Second
	maxClockSkew       = 10 * time.Minute
	storeTimeout       = 2 * time.Second
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// teeWriter copies everything the handler writes so it can be stored.
type teeWriter struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Idempotency makes submit/review calls safe to retry. It must run after Auth.
// The key is method + route + actor id + X-Request-Id; a finished response is
// replayed for the TTL, a running one yields 409. 5xx responses release the key.
func Idempotency(rdb redis.Cmdable, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			caller := identity.FromContext(req.Context())
			if !caller.Authenticated() {
				return c.JSON(http.StatusUnauthorized, errBody(identity.ErrUnauthenticated.Error()))
			}
			reqID, reqAt, err := readRequestHeaders(req.Header, nowUTC())
			if err != nil {
				return c.JSON(http.StatusBadRequest, errBody(err.Error()))
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := buildKey(req.Method, c.Path(), caller.ActorID, reqID)
			entry := idempEntry{
				InProgress:  true,
				BodySHA256:  bodyHash(body),
				RequestID:   reqID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			acquired, err := provisionalSet(ctx, rdb, key, entry)
			if err != nil {
				cancel()
				log.Error("idempotency lock", zap.String("key", key), zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, errBody("idempotency store unavailable"))
			}
			if !acquired {
				defer cancel()
				return replay(ctx, c, rdb, key, entry.BodySHA256, log)
			}
			cancel()

			tee := &teeWriter{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = tee
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may be gone by now
			ctx, cancel = context.WithTimeout(context.Background(), storeTimeout)
			defer cancel()
			if tee.code >= http.StatusInternalServerError {
				if err := rdb.Del(ctx, key).Err(); err != nil {
					log.Warn("idempotency release", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			entry.InProgress = false
			entry.Code = tee.code
			entry.ContentType = tee.Header().Get(echo.HeaderContentType)
			entry.Body = tee.buf.Bytes()
			entry.CreatedAt = nowUTC()
			if err := saveFinal(ctx, rdb, key, entry, ttl); err != nil {
				log.Warn("idempotency save", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

// replay answers a request whose key is already taken.
func replay(ctx context.Context, c echo.Context, rdb redis.Cmdable, key, bodySHA string, log *zap.Logger) error {
	cur, err := loadEntry(ctx, rdb, key)
	if err != nil {
		log.Warn("idempotency load", zap.String("key", key), zap.Error(err))
	}
	if cur.BodySHA256 != "" && cur.BodySHA256 != bodySHA {
		return c.JSON(http.StatusConflict, errBody(HeaderRequestID+" reused with different body"))
	}
	if cur.InProgress || cur.Code == 0 {
		return c.JSON(http.StatusConflict, errBody("request is already in progress"))
	}

	log.Info("idempotent replay", zap.String("key", key), zap.Int("code", cur.Code))
	c.Response().Header().Set(HeaderReplayed, "true")
	if len(cur.Body) == 0 {
		return c.NoContent(cur.Code)
	}
	ct := cur.ContentType
	if ct == "" {
		ct = echo.MIMEApplicationJSON
	}
	return c.Blob(cur.Code, ct, cur.Body)
}

func errBody(msg string) map[string]string { return map[string]string{"error": msg} }
