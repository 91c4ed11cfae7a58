package reconciler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/merchkit/paygate/internal/models"
	"github.com/merchkit/paygate/internal/platform/opayo"
	"github.com/merchkit/paygate/pkg/config"
	"github.com/merchkit/paygate/pkg/logctx"
	"github.com/merchkit/paygate/pkg/siteurl"
)

// AuditLog is the append-only record of gateway interactions plus the two
// lookups reconciliation needs from it.
type AuditLog interface {
	Record(ctx context.Context, basketID, transactionID, processorName string, payload map[string]string) (*models.ProcessorResponse, error)
	FindLatestSecurityKey(ctx context.Context, basketID string) (string, error)
	ResolveBasketID(ctx context.Context, processorName, transactionID string) (string, error)
}

// BasketStore loads baskets with their lines.
type BasketStore interface {
	Get(ctx context.Context, basketID string) (*models.Basket, error)
}

// OrderPlacer records payments and places orders for paid baskets.
type OrderPlacer interface {
	HandlePayment(ctx context.Context, n opayo.Notification, basket *models.Basket) error
	CreateOrder(ctx context.Context, basket *models.Basket) (*models.Order, error)
	HandlePostOrder(ctx context.Context, order *models.Order) error
}

// Reconciler consumes one asynchronous gateway notification and drives it to
// a terminal state in a single call: audit, verify, record payment, place
// the order, answer the gateway. It never loops, retries, or re-enters a
// branch, and every outcome is converted to an Ack before the HTTP boundary.
type Reconciler struct {
	vendor  string
	audit   AuditLog
	baskets BasketStore
	orders  OrderPlacer
	urls    *siteurl.Builder
	Logger  *zap.SugaredLogger
}

func New(cfg *config.Config, audit AuditLog, baskets BasketStore, orders OrderPlacer, urls *siteurl.Builder, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{
		vendor:  cfg.Opayo.Vendor,
		audit:   audit,
		baskets: baskets,
		orders:  orders,
		urls:    urls,
		Logger:  log,
	}
}

// Reconcile processes one inbound notification. The returned Ack is always
// well-formed; no failure propagates past this boundary.
func (r *Reconciler) Reconcile(ctx context.Context, n opayo.Notification) Ack {
	log := logctx.FromCtx(ctx, r.Logger)
	status := n.Status()
	transactionID := n.TransactionID()

	basket, ok := r.resolveBasket(ctx, transactionID)
	if !ok {
		// no basket context exists, so there is nothing to attach an audit
		// record to; the gateway is told the notification was unprocessable
		log.Errorw("notification_basket_unresolved", "transaction_id", transactionID, "status", status)
		return Ack{
			Status:       AckStatusInvalid,
			StatusDetail: "Unable to locate the basket for this transaction.",
			RedirectURL:  r.urls.ErrorURL(),
		}
	}
	log = log.With("basket_id", basket.ID, "transaction_id", transactionID)

	switch status {
	case opayo.StatusAbort, opayo.StatusRejected:
		r.record(ctx, basket.ID, transactionID, n)
		log.Warnw("notification_cancelled", "gateway_status", status)
		return Ack{Status: AckStatusOK, StatusDetail: status, RedirectURL: r.urls.CancelURL()}

	case opayo.StatusOK:
		return r.reconcilePayment(ctx, log, n, basket)

	default:
		// the bank declined the authorisation; acknowledged, no order
		r.record(ctx, basket.ID, transactionID, n)
		log.Warnw("notification_declined", "gateway_status", status)
		return Ack{Status: AckStatusOK, StatusDetail: status, RedirectURL: r.urls.ErrorURL()}
	}
}

func (r *Reconciler) resolveBasket(ctx context.Context, transactionID string) (*models.Basket, bool) {
	basketID, err := r.audit.ResolveBasketID(ctx, opayo.ProcessorName, transactionID)
	if err != nil {
		return nil, false
	}
	basket, err := r.baskets.Get(ctx, basketID)
	if err != nil {
		return nil, false
	}
	return basket, true
}

// reconcilePayment is the Status=OK path: verify integrity, then record the
// payment and place the order.
func (r *Reconciler) reconcilePayment(ctx context.Context, log *zap.SugaredLogger, n opayo.Notification, basket *models.Basket) Ack {
	invalid := Ack{
		Status:       AckStatusInvalid,
		StatusDetail: fmt.Sprintf("Attempts to handle payment for basket %s failed.", basket.ID),
		RedirectURL:  r.urls.ErrorURL(),
	}

	securityKey, err := r.audit.FindLatestSecurityKey(ctx, basket.ID)
	if err != nil {
		r.record(ctx, basket.ID, n.TransactionID(), n)
		log.Errorw("security_key_lookup_failed", "error", err.Error())
		return invalid
	}

	// nothing in the payload may be trusted before this check passes
	entry := r.record(ctx, basket.ID, n.TransactionID(), n)
	if !opayo.VerifySignature(n, r.vendor, securityKey) {
		log.Errorw("notification_signature_mismatch",
			"audit_entry", entryID(entry),
			"detail", "payment data was modified by a third party",
		)
		return invalid
	}

	if err := r.orders.HandlePayment(ctx, n, basket); err != nil {
		log.Errorw("payment_handling_failed", "error", err.Error())
		return invalid
	}

	order, err := r.orders.CreateOrder(ctx, basket)
	if err != nil {
		// the payment record has committed; operators reconcile
		// payment-without-order states, this notification is terminal
		log.Errorw("order_creation_failed", "error", err.Error())
		return invalid
	}

	if err := r.orders.HandlePostOrder(ctx, order); err != nil {
		// best effort only; the success outcome is already decided
		log.Warnw("post_order_hook_failed", "order_number", order.OrderNumber, "error", err.Error())
	}

	log.Infow("notification_reconciled", "order_number", order.OrderNumber)
	return Ack{
		Status:       AckStatusOK,
		StatusDetail: fmt.Sprintf("Payment for basket %s completed.", basket.ID),
		RedirectURL:  r.urls.ReceiptURL(basket.OrderNumber),
	}
}

// record appends the notification to the audit log. Audit failures are
// logged but do not change the branch outcome: the ack format must still go
// back to the gateway.
func (r *Reconciler) record(ctx context.Context, basketID, transactionID string, n opayo.Notification) *models.ProcessorResponse {
	entry, err := r.audit.Record(ctx, basketID, transactionID, opayo.ProcessorName, n)
	if err != nil {
		logctx.FromCtx(ctx, r.Logger).Errorw("audit_record_failed", "basket_id", basketID, "error", err.Error())
		return nil
	}
	return entry
}

func entryID(entry *models.ProcessorResponse) string {
	if entry == nil {
		return ""
	}
	return entry.ID
}
