package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader carries the client-chosen key (a UUID) of a mutating request.
	IdempotencyKeyHeader = "Idempotency-Key"

	// How long the in-progress lock lives if the handler never finishes.
	provisionalLockTTL = 60 * time.Second
	storeTimeout       = 2 * time.Second
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	CreatedAt   time.Time `json:"created_at"`
}

// bodyRecorder tees the response body so it can be stored for replay.
type bodyRecorder struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.buf.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware makes a mutating route safe to resend. The key is
// scoped to method, request path, authenticated user and Idempotency-Key,
// so it must run after AuthMiddleware. Two transactions confirmed under one
// key therefore do not share a stored response.
//
// A first request takes a provisional lock and runs the handler; its final
// response is stored for ttl. A repeat with the same body replays it, a repeat
// with a different body or one that arrives while the first is still running
// gets 409. Server errors release the key so the client may retry.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		idemKey := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if idemKey == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + IdempotencyKeyHeader + " header"})
			return
		}
		if _, err := uuid.Parse(idemKey); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + IdempotencyKeyHeader + " format, expected a UUID"})
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		bhash := bodyHash(body)

		key := buildIdempotencyKey(c.Request.Method, c.Request.URL.Path, userID, idemKey)
		ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
		defer cancel()

		acquired, err := provisionalSet(ctx, rdb, key, idempEntry{InProgress: true, BodySHA256: bhash, CreatedAt: nowUTC()})
		if err != nil {
			logger.Error("Idempotency store unavailable", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "idempotency store unavailable"})
			return
		}
		if !acquired {
			cur, errLoad := loadEntry(ctx, rdb, key)
			if errLoad != nil {
				logger.Warn("Failed to load idempotency entry", slog.String("key", key), slog.String("error", errLoad.Error()))
			}
			if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": IdempotencyKeyHeader + " reused with different body"})
				return
			}
			if !cur.InProgress && cur.Code != 0 {
				logger.Info("Replaying stored response", slog.String("idempotency_key", idemKey))
				c.Header("Idempotent-Replayed", "true")
				c.Data(cur.Code, cur.ContentType, cur.Body)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request is already in progress"})
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		storeCtx, storeCancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), storeTimeout)
		defer storeCancel()

		code := rec.Status()
		if code >= http.StatusInternalServerError {
			if err := rdb.Del(storeCtx, key).Err(); err != nil {
				logger.Warn("Failed to release idempotency key", slog.String("key", key), slog.String("error", err.Error()))
			}
			return
		}
		final := idempEntry{
			Code:        code,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.buf.Bytes(),
			BodySHA256:  bhash,
			CreatedAt:   nowUTC(),
		}
		if err := saveFinal(storeCtx, rdb, key, final, ttl); err != nil {
			logger.Warn("Failed to store idempotent response", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

func buildIdempotencyKey(method, path, userID, idemKey string) string {
	return "idemp:" + strings.ToLower(method) + ":" + path + ":" + userID + ":" + strings.ToLower(idemKey)
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
	err = json.Unmarshal(v, &e)
	return e, err
}

func saveFinal(ctx context.Context, rdb *redis.Client, key string, entry idempEntry, ttl time.Duration) error {
	payload, _ := json.Marshal(entry)
	return rdb.Set(ctx, key, payload, ttl).Err()
}
