// api/middleware/auth_middleware.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Annany2002/projecthub-backend/internal/auth"
	"github.com/Annany2002/projecthub-backend/internal/domain"
	"github.com/Annany2002/projecthub-backend/internal/logger"
)

var customLog = logger.NewLogger()

// IdentityKey is the gin context key holding the caller's *domain.IdentityClaim.
const IdentityKey = "identity"

// Guard runs the credential found in header through stages (normally
// verifier.Stage() then auth.RequireRoles). The first failing stage aborts the
// request with its error; on success the claim is stored under IdentityKey.
func Guard(header string, stages ...auth.Stage) gin.HandlerFunc {
	guard := auth.NewGuard(stages...)
	return func(c *gin.Context) {
		subject := &auth.Subject{Credential: c.GetHeader(header)}
		if err := guard.Run(subject); err != nil {
			customLog.Debugf("Guard: %s %s rejected: %v", c.Request.Method, c.FullPath(), err)
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(IdentityKey, subject.Claim)
		c.Next()
	}
}

// Identity returns the claim stored by Guard, if any.
func Identity(c *gin.Context) (*domain.IdentityClaim, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	claim, ok := v.(*domain.IdentityClaim)
	return claim, ok && claim != nil
}
