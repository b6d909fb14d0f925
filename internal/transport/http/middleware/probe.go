package middleware

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// RoleAtLeastWithProbe behaves like RoleAtLeast but additionally reports the
// caller's address when an under-privileged account probes the route. The
// report runs detached so the 403 is not delayed by it.
func RoleAtLeastWithProbe(required domain.Role, report func(ctx context.Context, ip string)) Guard {
	return func(account *domain.Account, c *gin.Context) error {
		if account.Role.AtLeast(required) {
			return nil
		}

		if report != nil {
			ip := c.ClientIP()
			if ip != "" {
				go report(context.WithoutCancel(c.Request.Context()), ip)
			}
		}

		return fmt.Errorf("%w: insufficient role", usecase.ErrForbidden)
	}
}
