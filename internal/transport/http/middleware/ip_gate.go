package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appLogger "github.com/arklim/social-platform-accounts/internal/infra/logger"
)

// IPDenylist answers whether a source address is denied.
type IPDenylist interface {
	Contains(ctx context.Context, ip string) (bool, error)
}

// IPGate rejects requests from blacklisted source addresses before any
// identity is established. Lookup failures fail open with a warning.
func IPGate(denylist IPDenylist, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		denied, err := denylist.Contains(c.Request.Context(), ip)
		if err != nil {
			log.Warn("ip denial lookup failed",
				zap.String("ip", appLogger.MaskIP(ip)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if denied {
			c.AbortWithStatusJSON(http.StatusForbidden, newErrorResponse(c, "access denied"))
			return
		}

		c.Next()
	}
}
