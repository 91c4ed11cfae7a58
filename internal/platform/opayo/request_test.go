package opayo

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/paygate/internal/models"
)

func testBasket() *models.Basket {
	return &models.Basket{
		ID:          "b-1",
		OrderNumber: "ORD-100042",
		Currency:    "USD",
		Status:      models.BasketStatusFrozen,
		Lines: []models.BasketLine{
			{
				Title:     "Intro to Gardening",
				Quantity:  1,
				UnitPrice: decimal.RequireFromString("49.99"),
				LineTotal: decimal.RequireFromString("49.99"),
			},
		},
	}
}

func TestEncodeBasket_LineCountAndFields(t *testing.T) {
	basket := testBasket()
	basket.Lines = append(basket.Lines, models.BasketLine{
		Title:     "Pruning Shears",
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("12.50"),
		LineTotal: decimal.RequireFromString("25"),
	})

	got := EncodeBasket(basket)
	require.Equal(t, "2:Intro to Gardening:1:::49.99:49.99:Pruning Shears:2:::12.50:25.00", got)

	// line count leads, and each line contributes six colon-delimited fields
	parts := strings.Split(got, ":")
	require.Equal(t, "2", parts[0])
	require.Len(t, parts, 1+6*basket.NumLines())
}

func TestEncodeBasket_StripsColonsFromTitles(t *testing.T) {
	basket := testBasket()
	basket.Lines[0].Title = "Gardening: The Basics"

	got := EncodeBasket(basket)
	require.Equal(t, "1:Gardening The Basics:1:::49.99:49.99", got)
	// a colon in a title must not add delimiter positions
	require.Len(t, strings.Split(got, ":"), 7)
}

func TestBuildRegistration_AmountMatchesBasketTotal(t *testing.T) {
	basket := testBasket()
	reg := BuildRegistration(basket, BillingAddress{FirstName: "Ada", LastName: "Lovelace"}, "https://shop.example.com/payment/opayo/notify")

	require.Equal(t, "49.99", reg.Amount)
	require.Equal(t, "USD", reg.Currency)
	require.Equal(t, "ORD-100042", reg.VendorTxCode)
	require.Equal(t, "ORD-100042", reg.Description)
}

func TestBuildRegistration_AmountKeepsCurrencyScale(t *testing.T) {
	basket := testBasket()
	basket.Lines = []models.BasketLine{{
		Title:     "Lawn Care Bundle",
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("25.00"),
		LineTotal: decimal.RequireFromString("50.00"),
	}}

	reg := BuildRegistration(basket, BillingAddress{FirstName: "Ada", LastName: "Lovelace"}, "https://shop.example.com/payment/opayo/notify")

	// round totals must not lose their decimal places on the wire
	require.Equal(t, "50.00", reg.Amount)
	require.Equal(t, "1:Lawn Care Bundle:2:::25.00:50.00", reg.BasketSummary)
}

func TestRegistrationValues_WireFields(t *testing.T) {
	basket := testBasket()
	billing := BillingAddress{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Line1:      "12 Analytical Row",
		Line2:      "Apt 3",
		City:       "London",
		Country:    "GB",
		PostalCode: "N1 9GU",
	}
	v := BuildRegistration(basket, billing, "https://shop.example.com/payment/opayo/notify").Values("acmevendor")

	require.Equal(t, "4.00", v.Get("VPSProtocol"))
	require.Equal(t, "PAYMENT", v.Get("TxType"))
	require.Equal(t, "acmevendor", v.Get("Vendor"))
	require.Equal(t, "ORD-100042", v.Get("VendorTxCode"))
	require.Equal(t, "49.99", v.Get("Amount"))
	require.Equal(t, "12 Analytical Row Apt 3", v.Get("BillingAddress1"))
	require.Equal(t, v.Get("BillingAddress1"), v.Get("DeliveryAddress1"))
	require.Equal(t, "https://shop.example.com/payment/opayo/notify", v.Get("NotificationURL"))
	require.Equal(t, EncodeBasket(basket), v.Get("Basket"))
}
