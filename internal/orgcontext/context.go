package orgcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	obscontext "github.com/smallbiznis/billinginsights/internal/observability/context"
)

// HeaderOrgID carries the active organization on analytics requests.
const HeaderOrgID = "X-Org-Id"

// OrgContextKey is the request context key for the active organization ID.
type OrgContextKey struct{}

// WithOrgID stores the org ID in the context and mirrors it into the
// observability fields used by request logs.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	ctx = context.WithValue(ctx, OrgContextKey{}, orgID)
	return obscontext.WithOrgID(ctx, orgID.String())
}

// OrgIDFromContext returns the org ID from context, if set.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	switch typed := ctx.Value(OrgContextKey{}).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	}
	return 0, false
}

// ParseOrgID parses a raw header value. Empty, non-numeric and zero values
// are rejected.
func ParseOrgID(raw string) (snowflake.ID, bool) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
