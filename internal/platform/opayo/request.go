package opayo

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/merchkit/paygate/internal/models"
)

// BillingAddress carries the cardholder details forwarded to the hosted
// payment page. Delivery fields mirror billing; this service sells nothing
// that ships separately.
type BillingAddress struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Line1      string `json:"address_line1"`
	Line2      string `json:"address_line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// RegistrationRequest is the outbound registration, built fresh per checkout
// attempt. VendorTxCode is the basket order number and must be unique per
// attempt.
type RegistrationRequest struct {
	VendorTxCode    string
	Amount          string
	Currency        string
	Description     string
	NotificationURL string
	Billing         BillingAddress
	BasketSummary   string
}

// BuildRegistration assembles the registration for a basket.
func BuildRegistration(basket *models.Basket, billing BillingAddress, notificationURL string) *RegistrationRequest {
	return &RegistrationRequest{
		VendorTxCode:    basket.OrderNumber,
		Amount:          basket.Total().StringFixed(2),
		Currency:        basket.Currency,
		Description:     basket.OrderNumber,
		NotificationURL: notificationURL,
		Billing:         billing,
		BasketSummary:   EncodeBasket(basket),
	}
}

// EncodeBasket serializes basket contents into Opayo's colon-delimited
// Basket field: line count, then per line title, quantity, two blank tax
// placeholders, unit price and line total. Colons inside titles would shift
// every following field, so they are stripped. Amounts keep the currency's
// two-decimal display scale: 50.00 must go on the wire as "50.00", not "50".
func EncodeBasket(basket *models.Basket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", basket.NumLines())
	for _, line := range basket.Lines {
		title := strings.ReplaceAll(line.Title, ":", "")
		fmt.Fprintf(&b, ":%s:%d:::%s:%s", title, line.Quantity, line.UnitPrice.StringFixed(2), line.LineTotal.StringFixed(2))
	}
	return b.String()
}

// Values renders the registration as the form body the gateway expects.
func (r *RegistrationRequest) Values(vendor string) url.Values {
	address1 := strings.TrimSpace(r.Billing.Line1 + " " + r.Billing.Line2)
	v := url.Values{}
	v.Set("VPSProtocol", protocolVersion)
	v.Set("TxType", txTypePayment)
	v.Set("Vendor", vendor)
	v.Set("NotificationURL", r.NotificationURL)
	v.Set("VendorTxCode", r.VendorTxCode)
	v.Set("Amount", r.Amount)
	v.Set("Currency", r.Currency)
	v.Set("Description", r.Description)

	v.Set("BillingFirstnames", r.Billing.FirstName)
	v.Set("BillingSurname", r.Billing.LastName)
	v.Set("BillingAddress1", address1)
	v.Set("BillingCity", r.Billing.City)
	v.Set("BillingCountry", r.Billing.Country)
	v.Set("BillingState", r.Billing.State)
	v.Set("BillingPostCode", r.Billing.PostalCode)

	v.Set("DeliveryFirstnames", r.Billing.FirstName)
	v.Set("DeliverySurname", r.Billing.LastName)
	v.Set("DeliveryAddress1", address1)
	v.Set("DeliveryCity", r.Billing.City)
	v.Set("DeliveryCountry", r.Billing.Country)
	v.Set("DeliveryState", r.Billing.State)
	v.Set("DeliveryPostCode", r.Billing.PostalCode)

	v.Set("Basket", r.BasketSummary)
	return v
}
