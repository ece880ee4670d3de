package common

import (
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"net/http"
	"strings"
)

const RequestIdHeader = "X-Request-Id"

var ErrRateLimited = errors.New("err_limit_exceeded")

var (
	corsAllowHeaders = strings.Join([]string{
		"Accept", "Authorization", "Cache-Control", "Content-Type", "Origin", RequestIdHeader,
	}, ", ")
	corsAllowMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions,
	}, ", ")
)

// LimiterMiddleware allows limit requests per period ("S", "M", "H" or "D") for each
// origin and client ip pair. A request is exempt when isWhitelisted accepts its
// origin or its ip; isWhitelisted may be nil.
func LimiterMiddleware(limit int, period string, isWhitelisted func(originOrIp string) bool) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(fmt.Sprintf("%d-%s", limit, period))
	if err != nil {
		panic(err)
	}
	return mgin.NewMiddleware(limiter.New(memory.NewStore(), rate),
		mgin.WithKeyGetter(limiterKey),
		mgin.WithExcludedKey(func(key string) bool {
			if isWhitelisted == nil {
				return false
			}
			origin, ip, _ := strings.Cut(key, "|")
			return (origin != "" && isWhitelisted(origin)) || isWhitelisted(ip)
		}),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": ErrRateLimited.Error()})
		}))
}

func limiterKey(c *gin.Context) string {
	return c.GetHeader("Origin") + "|" + c.ClientIP()
}

// CORSMiddleware opens the read api to browsers and answers preflights itself.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Expose-Headers", RequestIdHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestIdMiddleware tags every request with an id, reusing the caller's when present.
func RequestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIdHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIdHeader, id)
		c.Header(RequestIdHeader, id)
		c.Next()
	}
}
