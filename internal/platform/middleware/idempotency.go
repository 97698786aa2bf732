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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyKeyPrefix = "idempotency:"

	DefaultIdempotencyTTL = 24 * time.Hour
	processingTTL         = 2 * time.Minute
)

type idempotencyStatus string

const (
	statusProcessing idempotencyStatus = "processing"
	statusCompleted  idempotencyStatus = "completed"
)

type idempotencyRecord struct {
	Status       idempotencyStatus `json:"status"`
	Path         string            `json:"path"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code,omitempty"`
	ResponseBody string            `json:"response_body,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// RedisClient is the subset of go-redis used for idempotency records.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key so a client retry never starts a second saga. Requests
// without the header pass through. Redis failures fail open.
// Responses with status 5xx are not stored, so the client may retry them.
// A key reused with a different request body is rejected with 422.
func IdempotencyMiddleware(client RedisClient, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		redisKey := idempotencyKeyPrefix + c.Request.Method + ":" + c.FullPath() + ":" + key

		hash, err := fingerprint(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "BAD_REQUEST", "message": "failed to read request body"},
			})
			return
		}

		marker, _ := json.Marshal(idempotencyRecord{Status: statusProcessing, Path: c.FullPath(), RequestHash: hash, CreatedAt: time.Now().UTC()})
		acquired, err := client.SetNX(ctx, redisKey, marker, processingTTL).Result()
		if err != nil {
			log.Warn("idempotency store unavailable, continuing", zap.Error(err))
			c.Next()
			return
		}

		if !acquired {
			replay(c, client, redisKey, hash, log)
			return
		}

		// context may be cancelled once the handler returns
		storeCtx := context.WithoutCancel(ctx)
		defer func() {
			if p := recover(); p != nil {
				if err := client.Del(storeCtx, redisKey).Err(); err != nil {
					log.Warn("failed to release idempotency key", zap.Error(err))
				}
				panic(p)
			}
		}()

		rec := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			if err := client.Del(storeCtx, redisKey).Err(); err != nil {
				log.Warn("failed to release idempotency key", zap.Error(err))
			}
			return
		}

		done, _ := json.Marshal(idempotencyRecord{
			Status:       statusCompleted,
			Path:         c.FullPath(),
			RequestHash:  hash,
			ResponseCode: status,
			ResponseBody: rec.body.String(),
			CreatedAt:    time.Now().UTC(),
		})
		if err := client.Set(storeCtx, redisKey, done, ttl).Err(); err != nil {
			log.Warn("failed to store idempotent response", zap.Error(err))
		}
	}
}

// fingerprint hashes the request body and puts it back for the handler.
func fingerprint(c *gin.Context) (string, error) {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		_ = c.Request.Body.Close()
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func replay(c *gin.Context, client RedisClient, redisKey, hash string, log *zap.Logger) {
	raw, err := client.Get(c.Request.Context(), redisKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn("failed to read idempotency record", zap.Error(err))
		}
		inProgress(c)
		return
	}

	var rec idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		inProgress(c)
		return
	}
	if rec.RequestHash != "" && rec.RequestHash != hash {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "IDEMPOTENCY_KEY_REUSED",
				"message": "this idempotency key was used with a different request body",
			},
		})
		return
	}
	if rec.Status != statusCompleted {
		inProgress(c)
		return
	}

	c.Header("Idempotent-Replayed", "true")
	c.Data(rec.ResponseCode, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	c.Abort()
}

func inProgress(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "REQUEST_IN_PROGRESS",
			"message": "a request with this idempotency key is already being processed",
		},
	})
}

type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
