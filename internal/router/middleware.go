package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/budgeter/backend/internal/httputil"
	"github.com/budgeter/backend/internal/models"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	errTokenMissing = errors.New("the request must carry a token in the Authorization header or the Bearer cookie")
	errTokenInvalid = errors.New("the token is invalid")
	errTokenExpired = errors.New("the token is expired")
	errOwnerMissing = errors.New("the token does not contain a valid 'uid' claim")
)

func URLMiddleware(url *url.URL) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(models.DBContextURL), url.String())
		c.Next()
	}
}

// OwnerMiddleware sets the owner of the request. Without a secret, all
// requests belong to models.LocalOwner. With a secret, the request must carry
// an HS256 signed token and the owner is read from its 'uid' claim.
func OwnerMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Set(string(models.DBContextOwner), models.LocalOwner)
			c.Next()
			return
		}

		owner, err := tokenOwner(c, secret)
		if err != nil {
			log.Debug().Str("request-id", requestid.Get(c)).Err(err).Msg("OwnerMiddleware")
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.HTTPError{Error: err.Error()})
			return
		}

		c.Set(string(models.DBContextOwner), owner)
		c.Next()
	}
}

// tokenOwner parses the token of the request and returns the owner ID from it.
func tokenOwner(c *gin.Context, secret string) (uuid.UUID, error) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		cookie, err := c.Cookie("Bearer")
		if err != nil {
			return uuid.Nil, errTokenMissing
		}
		token = strings.TrimPrefix(cookie, "Bearer ")
	}

	if token == "" {
		return uuid.Nil, errTokenMissing
	}

	parsed, err := jwt.Parse(token, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, errTokenExpired
		}
		return uuid.Nil, errTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, errTokenInvalid
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return uuid.Nil, errOwnerMissing
	}

	owner, err := uuid.Parse(uid)
	if err != nil || owner == uuid.Nil {
		return uuid.Nil, errOwnerMissing
	}

	return owner, nil
}

var metrics = []prometheus.Collector{
	requestCount,
	requestDuration,
}

// registerPrometheusMetrics registers all Prometheus metrics
// with the default registry.
func registerPrometheusMetrics() error {
	for _, c := range metrics {
		if err := prometheus.Register(c); err != nil {
			return fmt.Errorf("could not register %s with Prometheus", c)
		}
	}

	return nil
}

// unregisterPrometheusMetrics unregisters all Prometheus metrics.
//
// This is needed to cleanly exit.
func unregisterPrometheusMetrics() bool {
	for _, c := range metrics {
		if ok := prometheus.Unregister(c); !ok {
			return false
		}
	}

	return true
}

var requestCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "requests_total",
		Help: "How many HTTP requests processed, partitioned by status code, HTTP method and route.",
	},
	[]string{"code", "method", "url"},
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "request_duration_seconds",
		Help: "The HTTP request latencies in seconds.",
	},
	[]string{"code", "method", "url"},
)

// MetricsMiddleware updates Prometheus metrics.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		elapsed := float64(time.Since(start)) / float64(time.Second)

		// The route pattern keeps the cardinality low, unknown paths all count as one
		url := c.FullPath()
		if url == "" {
			url = "unknown"
		}

		requestDuration.WithLabelValues(status, c.Request.Method, url).Observe(elapsed)
		requestCount.WithLabelValues(status, c.Request.Method, url).Inc()
	}
}
