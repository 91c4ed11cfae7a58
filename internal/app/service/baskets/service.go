package baskets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/merchkit/paygate/internal/models"
	"github.com/merchkit/paygate/pkg/logctx"
)

var (
	ErrNotFound      = errors.New("basket not found")
	ErrAlreadyFrozen = errors.New("basket is already frozen")
	ErrEmptyBasket   = errors.New("basket has no lines")
)

// Service is the basket store this core reads from. Baskets are owned by the
// commerce system; the only mutations made here are the freeze before a
// gateway round trip and the submit transition when an order is placed.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Get loads a basket with its lines.
func (s *Service) Get(ctx context.Context, basketID string) (*models.Basket, error) {
	var basket models.Basket
	err := s.db.WithContext(ctx).Preload("Lines").First(&basket, "id = ?", basketID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load basket %s: %w", basketID, err)
	}
	return &basket, nil
}

// GetByOrderNumber loads the basket behind an order number.
func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Basket, error) {
	var basket models.Basket
	err := s.db.WithContext(ctx).Preload("Lines").First(&basket, "order_number = ?", orderNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load basket for order %s: %w", orderNumber, err)
	}
	return &basket, nil
}

// Freeze marks an open basket immutable for the duration of the payment
// round trip. Freezing an already-frozen basket fails: the caller must not
// start a second checkout attempt against an in-flight basket.
func (s *Service) Freeze(ctx context.Context, basket *models.Basket) error {
	if basket.NumLines() == 0 {
		return ErrEmptyBasket
	}
	if basket.IsFrozen() {
		return ErrAlreadyFrozen
	}
	res := s.db.WithContext(ctx).Model(&models.Basket{}).
		Where("id = ? AND status = ?", basket.ID, models.BasketStatusOpen).
		Update("status", models.BasketStatusFrozen)
	if res.Error != nil {
		return fmt.Errorf("failed to freeze basket %s: %w", basket.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// raced with another checkout attempt
		return ErrAlreadyFrozen
	}
	basket.Status = models.BasketStatusFrozen
	logctx.FromCtx(ctx, s.log).Infow("basket_frozen", "basket_id", basket.ID, "order_number", basket.OrderNumber)
	return nil
}

// MarkSubmitted flips a basket to submitted inside the caller's transaction.
func (s *Service) MarkSubmitted(ctx context.Context, tx *gorm.DB, basketID string) error {
	if err := tx.WithContext(ctx).Model(&models.Basket{}).
		Where("id = ?", basketID).
		Update("status", models.BasketStatusSubmitted).Error; err != nil {
		return fmt.Errorf("failed to mark basket %s submitted: %w", basketID, err)
	}
	return nil
}
