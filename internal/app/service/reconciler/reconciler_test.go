package reconciler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/merchkit/paygate/internal/models"
	"github.com/merchkit/paygate/internal/platform/opayo"
	"github.com/merchkit/paygate/pkg/config"
	"github.com/merchkit/paygate/pkg/siteurl"
)

const (
	testVendor = "acmevendor"
	testKey    = "SECRET123"
	testTxID   = "{TX-1}"
)

type fakeAudit struct {
	basketByTx  map[string]string
	securityKey string
	keyErr      error
	records     []opayo.Notification
}

func (f *fakeAudit) Record(_ context.Context, basketID, transactionID, processorName string, payload map[string]string) (*models.ProcessorResponse, error) {
	f.records = append(f.records, opayo.Notification(payload))
	return &models.ProcessorResponse{ID: "rec-1", BasketID: basketID, TransactionID: transactionID, ProcessorName: processorName}, nil
}

func (f *fakeAudit) FindLatestSecurityKey(_ context.Context, _ string) (string, error) {
	return f.securityKey, f.keyErr
}

func (f *fakeAudit) ResolveBasketID(_ context.Context, _, transactionID string) (string, error) {
	if id, ok := f.basketByTx[transactionID]; ok {
		return id, nil
	}
	return "", errors.New("no processor response recorded")
}

type fakeBaskets struct {
	baskets map[string]*models.Basket
}

func (f *fakeBaskets) Get(_ context.Context, basketID string) (*models.Basket, error) {
	if b, ok := f.baskets[basketID]; ok {
		return b, nil
	}
	return nil, errors.New("basket not found")
}

type fakeOrders struct {
	payments     int
	paymentErr   error
	orderErr     error
	postOrderErr error
	placed       map[string]*models.Order
	postOrdered  int
}

func (f *fakeOrders) HandlePayment(_ context.Context, _ opayo.Notification, _ *models.Basket) error {
	if f.paymentErr != nil {
		return f.paymentErr
	}
	f.payments++
	return nil
}

func (f *fakeOrders) CreateOrder(_ context.Context, basket *models.Basket) (*models.Order, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	if f.placed == nil {
		f.placed = map[string]*models.Order{}
	}
	// idempotent per order number, like the real collaborator
	if existing, ok := f.placed[basket.OrderNumber]; ok {
		return existing, nil
	}
	order := &models.Order{ID: "o-" + basket.OrderNumber, OrderNumber: basket.OrderNumber, BasketID: basket.ID, PlacedAt: time.Now()}
	f.placed[basket.OrderNumber] = order
	return order, nil
}

func (f *fakeOrders) HandlePostOrder(_ context.Context, _ *models.Order) error {
	f.postOrdered++
	return f.postOrderErr
}

func paidBasket() *models.Basket {
	return &models.Basket{
		ID:          "b-1",
		OrderNumber: "ORD-100042",
		Currency:    "USD",
		Status:      models.BasketStatusFrozen,
		Lines: []models.BasketLine{{
			Title:     "Intro to Gardening",
			Quantity:  1,
			UnitPrice: decimal.RequireFromString("49.99"),
			LineTotal: decimal.RequireFromString("49.99"),
		}},
	}
}

func signedNotification(status string) opayo.Notification {
	n := opayo.Notification{
		"Status":       status,
		"VPSTxId":      testTxID,
		"VendorTxCode": "ORD-100042",
		"TxAuthNo":     "123456",
		"CardType":     "VISA",
		"Last4Digits":  "4242",
	}
	n["VPSSignature"] = opayo.Sign(n, testVendor, testKey)
	return n
}

func newTestReconciler(audit *fakeAudit, basketStore *fakeBaskets, orderSvc *fakeOrders) *Reconciler {
	cfg := &config.Config{Opayo: config.OpayoConfig{
		Vendor:      testVendor,
		Mode:        config.GatewayModeTest,
		SiteURL:     "https://shop.example.com",
		CancelPath:  "/checkout/cancel-checkout/",
		ErrorPath:   "/checkout/error/",
		ReceiptPath: "/checkout/receipt/",
	}}
	return New(cfg, audit, basketStore, orderSvc, siteurl.New(cfg), zap.NewNop().Sugar())
}

func happyPathFixtures() (*fakeAudit, *fakeBaskets, *fakeOrders) {
	return &fakeAudit{basketByTx: map[string]string{testTxID: "b-1"}, securityKey: testKey},
		&fakeBaskets{baskets: map[string]*models.Basket{"b-1": paidBasket()}},
		&fakeOrders{}
}

func TestReconcile_SuccessPlacesOrderOnce(t *testing.T) {
	audit, basketStore, orderSvc := happyPathFixtures()
	r := newTestReconciler(audit, basketStore, orderSvc)

	ack := r.Reconcile(context.Background(), signedNotification("OK"))

	require.Equal(t, AckStatusOK, ack.Status)
	require.Equal(t, "https://shop.example.com/checkout/receipt/ORD-100042/", ack.RedirectURL)
	require.True(t, strings.HasPrefix(ack.Body(), "Status=OK"))
	require.Equal(t, 1, orderSvc.payments)
	require.Len(t, orderSvc.placed, 1)
	require.Equal(t, 1, orderSvc.postOrdered)
	require.Len(t, audit.records, 1, "exactly one audit record for the notification flow")
}

func TestReconcile_AckBodyIsVerbatimCRLFFormat(t *testing.T) {
	audit, basketStore, orderSvc := happyPathFixtures()
	r := newTestReconciler(audit, basketStore, orderSvc)

	ack := r.Reconcile(context.Background(), signedNotification("OK"))
	lines := strings.Split(ack.Body(), "\r\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Status=OK", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "StatusDetail="))
	require.True(t, strings.HasPrefix(lines[2], "RedirectURL=https://shop.example.com/checkout/receipt/"))
}

func TestReconcile_DuplicateSuccessNotificationCreatesOneOrder(t *testing.T) {
	audit, basketStore, orderSvc := happyPathFixtures()
	r := newTestReconciler(audit, basketStore, orderSvc)

	n := signedNotification("OK")
	first := r.Reconcile(context.Background(), n)
	second := r.Reconcile(context.Background(), n)

	require.Equal(t, AckStatusOK, first.Status)
	require.Equal(t, AckStatusOK, second.Status)
	require.Len(t, orderSvc.placed, 1, "duplicate delivery must not create a second order")
}

func TestReconcile_AbortAndRejectedCancelWithoutOrder(t *testing.T) {
	for _, status := range []string{"ABORT", "REJECTED"} {
		audit, basketStore, orderSvc := happyPathFixtures()
		r := newTestReconciler(audit, basketStore, orderSvc)

		ack := r.Reconcile(context.Background(), signedNotification(status))

		require.Equal(t, AckStatusOK, ack.Status)
		require.Equal(t, status, ack.StatusDetail)
		require.Equal(t, "https://shop.example.com/checkout/cancel-checkout/", ack.RedirectURL)
		require.Zero(t, orderSvc.payments, "no payment recorded on %s", status)
		require.Empty(t, orderSvc.placed, "no order created on %s", status)
		require.Len(t, audit.records, 1, "cancellations still get an audit record")
	}
}

func TestReconcile_DeclinedStatusRedirectsToErrorURL(t *testing.T) {
	audit, basketStore, orderSvc := happyPathFixtures()
	r := newTestReconciler(audit, basketStore, orderSvc)

	ack := r.Reconcile(context.Background(), signedNotification("NOTAUTHED"))

	require.Equal(t, AckStatusOK, ack.Status)
	require.Equal(t, "NOTAUTHED", ack.StatusDetail)
	require.Equal(t, "https://shop.example.com/checkout/error/", ack.RedirectURL)
	require.Empty(t, orderSvc.placed)
	require.Len(t, audit.records, 1)
}

func TestReconcile_UnresolvableTransactionIsInvalidWithoutAudit(t *testing.T) {
	audit := &fakeAudit{basketByTx: map[string]string{}}
	r := newTestReconciler(audit, &fakeBaskets{baskets: map[string]*models.Basket{}}, &fakeOrders{})

	ack := r.Reconcile(context.Background(), signedNotification("OK"))

	require.True(t, strings.HasPrefix(ack.Body(), "Status=INVALID"))
	require.Equal(t, "https://shop.example.com/checkout/error/", ack.RedirectURL)
	require.Empty(t, audit.records, "no basket context, no audit record")
}

func TestReconcile_TamperedNotificationNeverPlacesOrder(t *testing.T) {
	audit, basketStore, orderSvc := happyPathFixtures()
	r := newTestReconciler(audit, basketStore, orderSvc)

	n := signedNotification("OK")
	n["TxAuthNo"] = "999999" // altered after signing

	ack := r.Reconcile(context.Background(), n)

	require.Equal(t, AckStatusInvalid, ack.Status)
	require.Equal(t, "https://shop.example.com/checkout/error/", ack.RedirectURL)
	require.Zero(t, orderSvc.payments)
	require.Empty(t, orderSvc.placed, "no order regardless of stated Status")
	require.Len(t, audit.records, 1)
	require.Equal(t, "999999", audit.records[0].Get("TxAuthNo"), "tampered payload is preserved in the audit log")
}

func TestReconcile_ClearedSignatureFailsClosed(t *testing.T) {
	audit, basketStore, orderSvc := happyPathFixtures()
	r := newTestReconciler(audit, basketStore, orderSvc)

	n := signedNotification("OK")
	n["VPSSignature"] = ""

	ack := r.Reconcile(context.Background(), n)
	require.Equal(t, AckStatusInvalid, ack.Status)
	require.Empty(t, orderSvc.placed)
}

func TestReconcile_PaymentErrorIsTerminalInvalid(t *testing.T) {
	audit, basketStore, orderSvc := happyPathFixtures()
	orderSvc.paymentErr = errors.New("card vault unavailable")
	r := newTestReconciler(audit, basketStore, orderSvc)

	ack := r.Reconcile(context.Background(), signedNotification("OK"))

	require.Equal(t, AckStatusInvalid, ack.Status)
	require.Equal(t, "https://shop.example.com/checkout/error/", ack.RedirectURL)
	require.Empty(t, orderSvc.placed, "no order after a payment failure")
}

func TestReconcile_OrderCreationFailureAfterPaymentIsInvalid(t *testing.T) {
	audit, basketStore, orderSvc := happyPathFixtures()
	orderSvc.orderErr = errors.New("order store down")
	r := newTestReconciler(audit, basketStore, orderSvc)

	ack := r.Reconcile(context.Background(), signedNotification("OK"))

	require.Equal(t, AckStatusInvalid, ack.Status)
	require.Equal(t, 1, orderSvc.payments, "payment had already committed")
	require.Zero(t, orderSvc.postOrdered)
}

func TestReconcile_PostOrderFailureDoesNotChangeOutcome(t *testing.T) {
	audit, basketStore, orderSvc := happyPathFixtures()
	orderSvc.postOrderErr = errors.New("fulfillment queue full")
	r := newTestReconciler(audit, basketStore, orderSvc)

	ack := r.Reconcile(context.Background(), signedNotification("OK"))

	require.Equal(t, AckStatusOK, ack.Status)
	require.True(t, strings.HasPrefix(ack.RedirectURL, "https://shop.example.com/checkout/receipt/"))
}

func TestReconcile_MissingSecurityKeyVerifiesWithEmptyKey(t *testing.T) {
	audit, basketStore, orderSvc := happyPathFixtures()
	audit.securityKey = "" // no registration record carried a key

	n := opayo.Notification{
		"Status":       "OK",
		"VPSTxId":      testTxID,
		"VendorTxCode": "ORD-100042",
	}
	n["VPSSignature"] = opayo.Sign(n, testVendor, "")

	r := newTestReconciler(audit, basketStore, orderSvc)
	ack := r.Reconcile(context.Background(), n)
	require.Equal(t, AckStatusOK, ack.Status)
	require.Len(t, orderSvc.placed, 1)
}
