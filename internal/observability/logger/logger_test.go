package logger

import (
	"context"
	"testing"

	obscontext "github.com/smallbiznis/billinginsights/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithOrgID(ctx, "42")

	WithContext(ctx, base).Info("aggregated")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "42", fields["org_id"])
	assert.NotContains(t, fields, "correlation_id")
	assert.NotContains(t, fields, "trace_id")
}

func TestTableFromSQL(t *testing.T) {
	assert.Equal(t, "invoices", tableFromSQL(`SELECT issued_at, total_amount FROM "invoices" WHERE org_id = $1`))
	assert.Equal(t, "usage_charges", tableFromSQL("select * from `usage_charges`"))
	assert.Equal(t, "unknown", tableFromSQL("PRAGMA foreign_keys"))
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud"})
	assert.Error(t, err)
}
