package handlers

import (
	"github.com/merchkit/paygate/internal/app/service/statistics"
	"github.com/merchkit/paygate/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespCheckout wraps CheckoutResponse in the standard envelope.
type RespCheckout struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    CheckoutResponse         `json:"data"`
}

// RespScanAudit wraps ScanAuditResponse in the standard envelope.
type RespScanAudit struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ScanAuditResponse        `json:"data"`
}

// RespOrderStatistics wraps OrderStatisticsResponse in the standard envelope.
type RespOrderStatistics struct {
	Code    response.APIResponseCode           `json:"code"`
	Message string                             `json:"message"`
	Data    statistics.OrderStatisticsResponse `json:"data"`
}
