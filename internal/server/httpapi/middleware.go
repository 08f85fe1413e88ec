package httpapi

import (
	"bytes"
	"crypto/sha256"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/auth"
)

const identityKey = "identity"

// TokenVerifier resolves an access token to the caller's identity.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Identity, error)
}

// RequestLogger tags each request with an id (the client's X-Request-ID if
// given) and logs it once the handler returns.
func RequestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, id)

		c.Next()

		l.Info(c.Request.Context(), "http request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// IPRateLimiter keeps one token bucket per client address.
type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{ips: make(map[string]*rate.Limiter), r: r, b: b}
}

// GetLimiter returns the bucket for ip, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, ok := i.ips[ip]
	if !ok {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}
	return limiter
}

// RateLimiter rejects requests over the per-IP budget with 429.
func RateLimiter(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			abortWithCode(c, http.StatusTooManyRequests, CodeRateLimited, "too many requests")
			return
		}
		c.Next()
	}
}

type cachedResponse struct {
	status     int
	headers    http.Header
	body       []byte
	bodyDigest [sha256.Size]byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first successful response to a POST carrying an
// Idempotency-Key header. Keys are scoped to the route and the caller's
// Authorization header. Reusing a key with a different request body is
// rejected with 422.
func Idempotency(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(common.IdempotencyKeyHeaderName)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		key = c.Request.URL.Path + "|" + c.GetHeader(common.AuthorizationHeaderName) + "|" + key

		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithCode(c, http.StatusBadRequest, CodeInvalidRequest, "cannot read request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		digest := sha256.Sum256(raw)

		if v, found := store.Get(key); found {
			cached := v.(cachedResponse)
			if cached.bodyDigest != digest {
				abortWithCode(c, http.StatusUnprocessableEntity, CodeIdempotencyKeyReused,
					"idempotency key was already used with a different request body")
				return
			}
			for k, vals := range cached.headers {
				c.Writer.Header()[k] = vals
			}
			c.Header("Idempotent-Replayed", "true")
			c.Writer.WriteHeader(cached.status)
			_, _ = c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		w := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		if w.Status() >= 200 && w.Status() < 300 {
			store.Set(key, cachedResponse{
				status:     w.Status(),
				headers:    w.Header().Clone(),
				body:       w.body.Bytes(),
				bodyDigest: digest,
			}, ttl)
		}
	}
}

// RequireAuthenticated rejects requests without a valid bearer token. A
// missing or unreadable token is 401; a token that fails verification (bad
// signature, expired) is 403.
func RequireAuthenticated(v TokenVerifier, h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			abortWithCode(c, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
			return
		}

		id, err := v.VerifyToken(token)
		if err != nil {
			h.abortWithError(c, err)
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuthenticated.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identityFrom(c)
		if id == nil || !id.IsAdmin() {
			abortWithCode(c, http.StatusForbidden, CodeForbidden, "admin role required")
			return
		}
		c.Next()
	}
}

// identityFrom returns the authenticated caller or nil.
func identityFrom(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}
