package dotxch

import (
	"github.com/everFinance/dotxch/schema"
	"github.com/gin-gonic/gin"
)

const ResolverVersionHeader = "Resolver-Version"

func ResolverHeaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set(ResolverVersionHeader, schema.ResolverVersion)
		c.Next()
	}
}
