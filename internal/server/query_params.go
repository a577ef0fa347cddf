package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
)

const maxTopN = 50

func parseOptionalInt(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseScope accepts an empty value so the service can apply its configured default.
func parseScope(value string) (analyticsdomain.PeriodScope, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	scope, err := analyticsdomain.ParsePeriodScope(trimmed)
	if err != nil {
		return "", newValidationError("scope", "invalid_period_scope", "scope must be one of year, quarter, month")
	}
	return scope, nil
}

func parseChartRequest(c *gin.Context) (analyticsdomain.ChartRequest, error) {
	scope, err := parseScope(c.Query("scope"))
	if err != nil {
		return analyticsdomain.ChartRequest{}, err
	}
	return analyticsdomain.ChartRequest{
		Scope:    scope,
		Currency: strings.TrimSpace(c.Query("currency")),
	}, nil
}

func parseUsageRequest(c *gin.Context) (analyticsdomain.UsageRequest, error) {
	chart, err := parseChartRequest(c)
	if err != nil {
		return analyticsdomain.UsageRequest{}, err
	}

	top, err := parseOptionalInt(c.Query("top"))
	if err != nil || (top != nil && (*top < 1 || *top > maxTopN)) {
		return analyticsdomain.UsageRequest{}, newValidationError("top", "invalid_top", "top must be between 1 and 50")
	}

	req := analyticsdomain.UsageRequest{
		Scope:      chart.Scope,
		Currency:   chart.Currency,
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
	}
	if top != nil {
		req.Top = *top
	}
	return req, nil
}
