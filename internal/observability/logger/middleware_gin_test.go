package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/billinginsights/internal/observability/context"
)

func TestGinMiddlewareSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))

	var seenRequestID, seenCorrelationID string
	r.GET("/ping", func(c *gin.Context) {
		seenRequestID = obscontext.RequestIDFromContext(c.Request.Context())
		seenCorrelationID = obscontext.CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	got := w.Header().Get(HeaderRequestID)
	if got == "" {
		t.Fatalf("expected X-Request-Id header to be set")
	}
	if seenRequestID != got {
		t.Fatalf("expected request id %q on context, got %q", got, seenRequestID)
	}
	if seenCorrelationID == "" || w.Header().Get(HeaderCorrelationID) != seenCorrelationID {
		t.Fatalf("expected generated correlation id on context and response")
	}
}

func TestGinMiddlewareKeepsIncomingIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	req.Header.Set(HeaderCorrelationID, "corr-456")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(HeaderRequestID); got != "req-123" {
		t.Fatalf("expected incoming request id to be echoed, got %q", got)
	}
	if got := w.Header().Get(HeaderCorrelationID); got != "corr-456" {
		t.Fatalf("expected incoming correlation id to be echoed, got %q", got)
	}
}
