package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	audit "github.com/merchkit/paygate/internal/app/service/audit_log"
	"github.com/merchkit/paygate/internal/app/service/baskets"
	"github.com/merchkit/paygate/internal/app/service/statistics"
	"github.com/merchkit/paygate/internal/models"
	"github.com/merchkit/paygate/pkg/response"
)

// BasketLookup resolves baskets by the order number printed on receipts and
// support tickets.
type BasketLookup interface {
	GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Basket, error)
}

type AuditRecordItem struct {
	ID            string    `json:"id"`
	BasketID      string    `json:"basket_id"`
	TransactionID string    `json:"transaction_id"`
	ProcessorName string    `json:"processor_name"`
	Response      string    `json:"response"`
	CreatedAt     time.Time `json:"created_at"`
}

type ScanAuditResponse struct {
	Items []*AuditRecordItem `json:"items"`
	Total int64              `json:"total"`
}

func toAuditRecordItem(m *models.ProcessorResponse) *AuditRecordItem {
	return &AuditRecordItem{
		ID:            m.ID,
		BasketID:      m.BasketID,
		TransactionID: m.TransactionID,
		ProcessorName: m.ProcessorName,
		Response:      string(m.Response),
		CreatedAt:     m.CreatedAt,
	}
}

// @Summary      List audit records
// @Description  Paginated listing of raw processor responses, filterable by basket or transaction id.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body audit_log.ScanRequest true "Scan request"
// @Success      200  {object}  handlers.RespScanAudit
// @Router       /api/v1/admin/audit/scan [post]
func ApiScanAuditRecords(auditSvc *audit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req audit.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := auditSvc.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(ScanAuditResponse{
			Items: lo.Map(res.Items, func(m *models.ProcessorResponse, _ int) *AuditRecordItem { return toAuditRecordItem(m) }),
			Total: res.Total,
		}))
	}
}

// @Summary      Order statistics
// @Description  Daily order counts and GMV over a date range.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.OrderStatisticsRequest true "Statistics request"
// @Success      200  {object}  handlers.RespOrderStatistics
// @Router       /api/v1/admin/orders/statistics [post]
func ApiOrderStatistics(statsSvc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.OrderStatisticsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := statsSvc.OrderStatistics(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Basket behind an order
// @Description  Resolves the basket that produced an order number, with its lines.
// @Tags         Admin
// @Produce      json
// @Param        order_number path string true "Order number"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/orders/{order_number}/basket [get]
func ApiGetOrderBasket(basketSvc BasketLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		basket, err := basketSvc.GetByOrderNumber(c.Request.Context(), c.Param("order_number"))
		if errors.Is(err, baskets.ErrNotFound) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(basket))
	}
}

func RegisterAdminRoutes(r gin.IRouter, auditSvc *audit.Service, statsSvc *statistics.Service, basketSvc *baskets.Service) {
	r.POST("/audit/scan", ApiScanAuditRecords(auditSvc))
	r.POST("/orders/statistics", ApiOrderStatistics(statsSvc))
	r.GET("/orders/:order_number/basket", ApiGetOrderBasket(basketSvc))
}
