package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
	"github.com/smallbiznis/billinginsights/internal/orgcontext"
)

type fakeAnalyticsService struct {
	err error

	orgID       snowflake.ID
	chartReq    analyticsdomain.ChartRequest
	usageReq    analyticsdomain.UsageRequest
	lifetimeReq analyticsdomain.LifetimeUsageRequest
}

func (f *fakeAnalyticsService) capture(ctx context.Context) {
	f.orgID, _ = orgcontext.OrgIDFromContext(ctx)
}

func (f *fakeAnalyticsService) GetGrossRevenue(ctx context.Context, req analyticsdomain.ChartRequest) (analyticsdomain.ChartResponse, error) {
	f.capture(ctx)
	f.chartReq = req
	return analyticsdomain.ChartResponse{Scope: req.Scope}, f.err
}

func (f *fakeAnalyticsService) GetMRR(ctx context.Context, req analyticsdomain.ChartRequest) (analyticsdomain.ChartResponse, error) {
	f.capture(ctx)
	f.chartReq = req
	return analyticsdomain.ChartResponse{Scope: req.Scope}, f.err
}

func (f *fakeAnalyticsService) GetInvoiceCollections(ctx context.Context, req analyticsdomain.ChartRequest) (analyticsdomain.InvoiceCollectionsResponse, error) {
	f.capture(ctx)
	f.chartReq = req
	return analyticsdomain.InvoiceCollectionsResponse{Scope: req.Scope}, f.err
}

func (f *fakeAnalyticsService) GetUsageBreakdown(ctx context.Context, req analyticsdomain.UsageRequest) (analyticsdomain.UsageBreakdownResponse, error) {
	f.capture(ctx)
	f.usageReq = req
	return analyticsdomain.UsageBreakdownResponse{Scope: req.Scope}, f.err
}

func (f *fakeAnalyticsService) GetLifetimeUsage(ctx context.Context, req analyticsdomain.LifetimeUsageRequest) (analyticsdomain.LifetimeUsageResponse, error) {
	f.capture(ctx)
	f.lifetimeReq = req
	return analyticsdomain.LifetimeUsageResponse{CustomerID: req.CustomerID}, f.err
}

func newTestRouter(svc analyticsdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	NewServer(ServerParams{Gin: router, AnalyticsSvc: svc})
	return router
}

func doRequest(router *gin.Engine, path, orgID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if orgID != "" {
		req.Header.Set(HeaderOrg, orgID)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestGrossRevenueResolvesOrgAndQuery(t *testing.T) {
	svc := &fakeAnalyticsService{}
	router := newTestRouter(svc)

	resp := doRequest(router, "/api/analytics/gross-revenue?scope=Quarter&currency=eur", "1001")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.orgID != snowflake.ID(1001) {
		t.Fatalf("expected org 1001 in context, got %d", svc.orgID)
	}
	if svc.chartReq.Scope != analyticsdomain.PeriodScopeQuarter {
		t.Fatalf("expected quarter scope, got %q", svc.chartReq.Scope)
	}
	if svc.chartReq.Currency != "eur" {
		t.Fatalf("expected currency to pass through, got %q", svc.chartReq.Currency)
	}
}

func TestAnalyticsRequiresOrgHeader(t *testing.T) {
	svc := &fakeAnalyticsService{}
	router := newTestRouter(svc)

	for _, orgID := range []string{"", "abc", "0"} {
		resp := doRequest(router, "/api/analytics/mrr", orgID)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("org %q: expected status 401, got %d", orgID, resp.Code)
		}
	}
	if svc.orgID != 0 {
		t.Fatal("expected service not to be called without an organization")
	}
}

func TestInvalidScopeIsValidationError(t *testing.T) {
	router := newTestRouter(&fakeAnalyticsService{})

	resp := doRequest(router, "/api/analytics/invoice-collections?scope=decade", "1001")

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	payload := decodeError(t, resp)
	if payload.Type != "validation_error" || len(payload.Errors) != 1 || payload.Errors[0].Field != "scope" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestUsageQueryParams(t *testing.T) {
	svc := &fakeAnalyticsService{}
	router := newTestRouter(svc)

	resp := doRequest(router, "/api/analytics/usage?scope=month&customer_id=77&top=3", "1001")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if svc.usageReq.Top != 3 || svc.usageReq.CustomerID != "77" || svc.usageReq.Scope != analyticsdomain.PeriodScopeMonth {
		t.Fatalf("unexpected usage request: %+v", svc.usageReq)
	}

	for _, top := range []string{"0", "-1", "x", "51"} {
		resp := doRequest(router, "/api/analytics/usage?top="+top, "1001")
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("top=%s: expected status 400, got %d", top, resp.Code)
		}
	}
}

func TestLifetimeUsageRoute(t *testing.T) {
	svc := &fakeAnalyticsService{}
	router := newTestRouter(svc)

	resp := doRequest(router, "/api/customers/55/lifetime-usage?subscription_id=66", "1001")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if svc.lifetimeReq.CustomerID != "55" || svc.lifetimeReq.SubscriptionID != "66" {
		t.Fatalf("unexpected lifetime request: %+v", svc.lifetimeReq)
	}
}

func TestServiceErrorsAreMapped(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{err: analyticsdomain.ErrInvalidCurrency, status: http.StatusBadRequest, kind: "validation_error"},
		{err: analyticsdomain.ErrInvalidCustomer, status: http.StatusBadRequest, kind: "validation_error"},
		{err: analyticsdomain.ErrInvalidOrganization, status: http.StatusUnauthorized, kind: "unauthorized"},
		{err: analyticsdomain.ErrNotFound, status: http.StatusNotFound, kind: "not_found"},
		{err: analyticsdomain.ErrInvalidAmount, status: http.StatusInternalServerError, kind: "internal_error"},
		{err: errors.New("boom"), status: http.StatusInternalServerError, kind: "internal_error"},
	}

	for _, tc := range cases {
		router := newTestRouter(&fakeAnalyticsService{err: tc.err})
		resp := doRequest(router, "/api/analytics/gross-revenue", "1001")
		if resp.Code != tc.status {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.status, resp.Code)
		}
		if payload := decodeError(t, resp); payload.Type != tc.kind {
			t.Fatalf("%v: expected type %q, got %q", tc.err, tc.kind, payload.Type)
		}
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	router := newTestRouter(&fakeAnalyticsService{})

	resp := doRequest(router, "/api/analytics/churn", "1001")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestClassifyErrorForLog(t *testing.T) {
	kind, code := classifyErrorForLog(analyticsdomain.ErrInvalidPeriodScope)
	if kind != "validation_error" || code != "invalid_period_scope" {
		t.Fatalf("unexpected classification %q/%q", kind, code)
	}
	kind, code = classifyErrorForLog(errors.New("db down"))
	if kind != "internal_error" || code != "internal_error" {
		t.Fatalf("unexpected classification %q/%q", kind, code)
	}
}
