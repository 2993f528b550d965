package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// fakeAuth stands in for AuthMiddleware.
func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), domain.Principal{UserID: userID, Role: domain.RoleInvestor}))
		c.Next()
	}
}

func setupIdempotentRouter(rdb *redis.Client, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payments/intents", fakeAuth("user-1"), IdempotencyMiddleware(rdb, time.Minute), handler)
	return r
}

func doIdempotentReq(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/intents", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_HeaderValidation(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	r := setupIdempotentRouter(rdb, func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"ok": true}) })

	assert.Equal(t, http.StatusBadRequest, doIdempotentReq(r, "", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, doIdempotentReq(r, "not-a-uuid", `{}`).Code)
}

func TestIdempotency_ReplaysFinalResponse(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	var calls int32
	r := setupIdempotentRouter(rdb, func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(http.StatusCreated, gin.H{"call": n})
	})
	key := uuid.NewString()

	first := doIdempotentReq(r, key, `{"dealID":"d1","amount":"150000"}`)
	second := doIdempotentReq(r, key, `{"dealID":"d1","amount":"150000"}`)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "handler must run once")
}

func TestIdempotency_DifferentBodyConflicts(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	r := setupIdempotentRouter(rdb, func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"ok": true}) })
	key := uuid.NewString()

	require.Equal(t, http.StatusCreated, doIdempotentReq(r, key, `{"amount":"1"}`).Code)
	w := doIdempotentReq(r, key, `{"amount":"2"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "different body")
}

func TestIdempotency_InProgressConflicts(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	r := setupIdempotentRouter(rdb, func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"ok": true}) })
	key := uuid.NewString()
	body := `{"amount":"1"}`

	redisKey := buildIdempotencyKey(http.MethodPost, "/payments/intents", "user-1", key)
	ok, err := provisionalSet(context.Background(), rdb, redisKey, idempEntry{InProgress: true, BodySHA256: bodyHash([]byte(body)), CreatedAt: nowUTC()})
	require.NoError(t, err)
	require.True(t, ok)

	w := doIdempotentReq(r, key, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "in progress")
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	var calls int32
	r := setupIdempotentRouter(rdb, func(c *gin.Context) {
		if atomic.AddInt32(&calls, 1) == 1 {
			c.JSON(http.StatusBadGateway, gin.H{"error": "upstream"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	key := uuid.NewString()

	assert.Equal(t, http.StatusBadGateway, doIdempotentReq(r, key, `{}`).Code)
	assert.Equal(t, http.StatusOK, doIdempotentReq(r, key, `{}`).Code)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIdempotency_StoreUnavailable(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	r := setupIdempotentRouter(rdb, func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"ok": true}) })
	mr.Close()

	assert.Equal(t, http.StatusServiceUnavailable, doIdempotentReq(r, uuid.NewString(), `{}`).Code)
}

func TestIdempotency_KeyScopedToConcretePath(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payments/:id/confirm", fakeAuth("user-1"), IdempotencyMiddleware(rdb, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"transactionID": c.Param("id")})
	})
	key := uuid.NewString()
	body := `{"paymentIntentID":"pi_1"}`

	confirm := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(IdempotencyKeyHeader, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := confirm("/payments/txn-1/confirm")
	second := confirm("/payments/txn-2/confirm")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, `{"transactionID":"txn-1"}`, first.Body.String())
	assert.JSONEq(t, `{"transactionID":"txn-2"}`, second.Body.String())
	assert.Empty(t, second.Header().Get("Idempotent-Replayed"))

	replay := confirm("/payments/txn-1/confirm")
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, `{"transactionID":"txn-1"}`, replay.Body.String())
}

func TestBuildIdempotencyKey(t *testing.T) {
	k := buildIdempotencyKey("POST", "/api/v1/payments/intents", "u1", "ABC")
	assert.Equal(t, "idemp:post:/api/v1/payments/intents:u1:abc", k)
}
