package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/merchkit/paygate/internal/app/service/baskets"
	"github.com/merchkit/paygate/internal/app/service/checkout"
	"github.com/merchkit/paygate/internal/models"
	"github.com/merchkit/paygate/internal/platform/opayo"
	"github.com/merchkit/paygate/pkg/logctx"
	"github.com/merchkit/paygate/pkg/response"
)

// BasketFreezer is the slice of the basket store the checkout endpoint needs.
type BasketFreezer interface {
	Get(ctx context.Context, basketID string) (*models.Basket, error)
	Freeze(ctx context.Context, basket *models.Basket) error
}

// PaymentInitiator starts the hosted-payment-page transaction.
type PaymentInitiator interface {
	Initiate(ctx context.Context, basket *models.Basket, billing opayo.BillingAddress) (string, error)
}

type CheckoutRequest struct {
	BasketID string               `json:"basket_id" binding:"required"`
	Billing  opayo.BillingAddress `json:"billing"`
}

type CheckoutResponse struct {
	PaymentPageURL string `json:"payment_page_url"`
}

func validateBilling(b opayo.BillingAddress) string {
	switch {
	case b.FirstName == "":
		return "billing.first_name is required"
	case b.LastName == "":
		return "billing.last_name is required"
	case b.Line1 == "":
		return "billing.address_line1 is required"
	case b.City == "":
		return "billing.city is required"
	case b.Country == "":
		return "billing.country is required"
	}
	// US and CA additionally need state and postal code
	if b.Country == "US" || b.Country == "CA" {
		if b.State == "" {
			return "billing.state is required"
		}
		if b.PostalCode == "" {
			return "billing.postal_code is required"
		}
	}
	return ""
}

// @Summary      Start Opayo checkout
// @Description  Freezes the basket, registers the transaction with Opayo and returns the hosted payment page URL.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body handlers.CheckoutRequest true "Checkout request"
// @Success      200  {object}  handlers.RespCheckout
// @Router       /api/v1/checkout/opayo [post]
func ApiOpayoCheckout(basketSvc BasketFreezer, initiator PaymentInitiator, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if msg := validateBilling(req.Billing); msg != "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, msg))
			return
		}

		ctx := c.Request.Context()
		basket, err := basketSvc.Get(ctx, req.BasketID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "There was a problem retrieving your basket. Refresh the page to try again."))
			return
		}

		// freeze before the gateway round trip so nothing mutates the basket
		// while registration is pending
		if err := basketSvc.Freeze(ctx, basket); err != nil {
			if errors.Is(err, baskets.ErrEmptyBasket) || errors.Is(err, baskets.ErrAlreadyFrozen) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		paymentPageURL, err := initiator.Initiate(ctx, basket, req.Billing)
		if err != nil {
			var gwErr *checkout.GatewayError
			if errors.As(err, &gwErr) {
				logctx.FromGin(c, log).Warnw("checkout_gateway_error", "basket_id", basket.ID, "error", gwErr.Error())
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		c.JSON(http.StatusOK, response.OKT(CheckoutResponse{PaymentPageURL: paymentPageURL}))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, basketSvc *baskets.Service, initiator *checkout.Initiator, log *zap.SugaredLogger) {
	r.POST("/checkout/opayo", ApiOpayoCheckout(basketSvc, initiator, log))
}
