package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/merchkit/paygate/internal/models"
	"github.com/merchkit/paygate/internal/platform/opayo"
	"github.com/merchkit/paygate/pkg/logctx"
	"github.com/merchkit/paygate/pkg/tool"
)

// ErrPaymentFailed signals the notification's payment details could not be
// recorded against the basket. Terminal for the notification; the user can
// retry through ordinary checkout.
var ErrPaymentFailed = errors.New("failed to record payment")

// BasketSubmitter flips a basket to submitted inside the caller's
// transaction.
type BasketSubmitter interface {
	MarkSubmitted(ctx context.Context, tx *gorm.DB, basketID string) error
}

// Service records payments and places orders. Each step runs in its own
// database transaction: a committed payment with a failed order placement is
// a known state reconciled by operators, and fulfillment needs the order row
// committed before it runs.
type Service struct {
	db      *gorm.DB
	baskets BasketSubmitter
	log     *zap.SugaredLogger
}

func New(db *gorm.DB, baskets BasketSubmitter, log *zap.SugaredLogger) *Service {
	return &Service{db: db, baskets: baskets, log: log}
}

// HandlePayment records a verified notification's payment against the
// basket. Must only be called with a signature-verified notification.
func (s *Service) HandlePayment(ctx context.Context, n opayo.Notification, basket *models.Basket) error {
	total := basket.Total()
	if !total.IsPositive() {
		return fmt.Errorf("%w: basket %s has non-positive total %s", ErrPaymentFailed, basket.ID, total)
	}

	event := &models.PaymentEvent{
		ID:            tool.GenerateUUIDV7(),
		BasketID:      basket.ID,
		OrderNumber:   basket.OrderNumber,
		TransactionID: n.TransactionID(),
		ProcessorName: opayo.ProcessorName,
		Amount:        total,
		Currency:      basket.Currency,
		CardType:      n.CardType(),
		Last4Digits:   n.Last4Digits(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(event).Error
	})
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("payment_record_failed", "basket_id", basket.ID, "error", err.Error())
		return fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	logctx.FromCtx(ctx, s.log).Infow("payment_recorded",
		"basket_id", basket.ID,
		"order_number", basket.OrderNumber,
		"transaction_id", event.TransactionID,
		"amount", total.String(),
		"currency", basket.Currency,
	)
	return nil
}

// CreateOrder places the order for a paid basket. Idempotent per order
// number: a duplicate notification finds the existing order and returns it
// instead of creating a second one.
func (s *Service) CreateOrder(ctx context.Context, basket *models.Basket) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		err := tx.First(&existing, "order_number = ?", basket.OrderNumber).Error
		if err == nil {
			order = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing order: %w", err)
		}

		order = &models.Order{
			ID:          tool.GenerateUUIDV7(),
			OrderNumber: basket.OrderNumber,
			BasketID:    basket.ID,
			Total:       basket.Total(),
			Currency:    basket.Currency,
			Status:      models.OrderStatusPlaced,
			PlacedAt:    time.Now(),
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return s.baskets.MarkSubmitted(ctx, tx, basket.ID)
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("order_placed",
		"order_number", order.OrderNumber,
		"basket_id", basket.ID,
		"total", order.Total.String(),
	)
	return order, nil
}

// HandlePostOrder runs best-effort follow-up on a placed order. The caller
// swallows failures; the payment outcome is already decided.
func (s *Service) HandlePostOrder(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderStatusPlaced).
		Update("status", models.OrderStatusFulfilled).Error; err != nil {
		return fmt.Errorf("failed to trigger fulfillment for order %s: %w", order.OrderNumber, err)
	}
	logctx.FromCtx(ctx, s.log).Infow("order_fulfillment_triggered", "order_number", order.OrderNumber)
	return nil
}
