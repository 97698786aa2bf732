package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	failAll bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case []byte:
		return string(s)
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = toString(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return redis.NewBoolResult(false, errors.New("connection refused"))
	}
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = toString(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func newIdempotentRouter(client RedisClient, status int, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/trips", IdempotencyMiddleware(client, time.Hour, zap.NewNop()), func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"call": *calls})
	})
	return r
}

func post(r http.Handler, key string) *httptest.ResponseRecorder {
	return postBody(r, key, `{}`)
}

func postBody(r http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newFakeRedis(), http.StatusCreated, &calls)

	first := post(r, "k1")
	second := post(r, "k1")

	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1, calls)
}

func TestIdempotency_WithoutKeyAlwaysRuns(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newFakeRedis(), http.StatusCreated, &calls)

	post(r, "")
	post(r, "")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_InProgressIsConflict(t *testing.T) {
	client := newFakeRedis()
	client.data[idempotencyKeyPrefix+"POST:/trips:k2"] = `{"status":"processing"}`
	calls := 0
	r := newIdempotentRouter(client, http.StatusCreated, &calls)

	w := post(r, "k2")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_IN_PROGRESS")
	assert.Equal(t, 0, calls)
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newFakeRedis(), http.StatusServiceUnavailable, &calls)

	post(r, "k3")
	post(r, "k3")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_FailsOpenWhenRedisDown(t *testing.T) {
	client := newFakeRedis()
	client.failAll = true
	calls := 0
	r := newIdempotentRouter(client, http.StatusCreated, &calls)

	w := post(r, "k4")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_KeyReusedWithDifferentBodyIsRejected(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(newFakeRedis(), http.StatusCreated, &calls)

	first := postBody(r, "k5", `{"hotelId":3}`)
	second := postBody(r, "k5", `{"hotelId":4}`)

	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, second.Code)
	assert.Contains(t, second.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	assert.Equal(t, 1, calls)
}

func TestIdempotency_HandlerSeesFullBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got string
	r.POST("/trips", IdempotencyMiddleware(newFakeRedis(), time.Hour, zap.NewNop()), func(c *gin.Context) {
		raw, _ := c.GetRawData()
		got = string(raw)
		c.Status(http.StatusCreated)
	})

	w := postBody(r, "k6", `{"taxiId":"abc"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{"taxiId":"abc"}`, got)
}

func TestIdempotency_PanicReleasesKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := newFakeRedis()
	r := gin.New()
	r.Use(gin.Recovery())
	calls := 0
	r.POST("/trips", IdempotencyMiddleware(client, time.Hour, zap.NewNop()), func(c *gin.Context) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	first := post(r, "k7")
	assert.Equal(t, http.StatusInternalServerError, first.Code)

	second := post(r, "k7")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, 2, calls)
}
