package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
)

func (s *Server) GetGrossRevenue(c *gin.Context) {
	if s.analyticsSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	req, err := parseChartRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.GetGrossRevenue(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetMRR(c *gin.Context) {
	if s.analyticsSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	req, err := parseChartRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.GetMRR(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetInvoiceCollections(c *gin.Context) {
	if s.analyticsSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	req, err := parseChartRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.GetInvoiceCollections(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetUsageBreakdown(c *gin.Context) {
	if s.analyticsSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	req, err := parseUsageRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.GetUsageBreakdown(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetLifetimeUsage(c *gin.Context) {
	if s.analyticsSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	resp, err := s.analyticsSvc.GetLifetimeUsage(c.Request.Context(), analyticsdomain.LifetimeUsageRequest{
		CustomerID:     strings.TrimSpace(c.Param("customer_id")),
		SubscriptionID: strings.TrimSpace(c.Query("subscription_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
