package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/billinginsights/internal/orgcontext"
)

const HeaderOrg = orgcontext.HeaderOrgID

// OrgContext resolves the organization from the X-Org-Id header and stores it
// on the request context. A missing or malformed header is rejected.
func OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgcontext.ParseOrgID(strings.TrimSpace(c.GetHeader(HeaderOrg)))
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
