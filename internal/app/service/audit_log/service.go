package audit_log

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/merchkit/paygate/internal/models"
	"github.com/merchkit/paygate/pkg/logctx"
	"github.com/merchkit/paygate/pkg/tool"
)

// ErrNoRecord is returned when no audit record matches a lookup.
var ErrNoRecord = errors.New("no processor response recorded")

// Service is the append-only audit log of raw gateway interactions. Writes
// are synchronous: a branch must not be acknowledged to the gateway before
// its audit row is durable.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Record appends a processor response. The store assigns the identity;
// UUIDv7 keeps ids time-ordered.
func (s *Service) Record(ctx context.Context, basketID, transactionID, processorName string, payload map[string]string) (*models.ProcessorResponse, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal processor response: %w", err)
	}
	entry := &models.ProcessorResponse{
		ID:            tool.GenerateUUIDV7(),
		BasketID:      basketID,
		TransactionID: transactionID,
		ProcessorName: processorName,
		Response:      datatypes.JSON(raw),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to record processor response: %v", err)
		return nil, fmt.Errorf("failed to record processor response: %w", err)
	}
	return entry, nil
}

// FindLatestSecurityKey recovers the SecurityKey issued at registration time
// from the newest audit record for the basket whose payload carries one.
// Absent key yields an empty string, not an error; the signature check then
// runs with an empty key, per the gateway contract.
func (s *Service) FindLatestSecurityKey(ctx context.Context, basketID string) (string, error) {
	var entry models.ProcessorResponse
	err := s.db.WithContext(ctx).
		Where("basket_id = ?", basketID).
		Where(datatypes.JSONQuery("response").HasKey("SecurityKey")).
		Order("created_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query security key: %w", err)
	}

	var payload map[string]string
	if err := json.Unmarshal(entry.Response, &payload); err != nil {
		return "", fmt.Errorf("failed to decode processor response %s: %w", entry.ID, err)
	}
	return payload["SecurityKey"], nil
}

// ResolveBasketID maps a gateway transaction id back to the basket that
// produced it, via the newest matching audit record. This is the only way to
// recover checkout context from the session-less callback.
func (s *Service) ResolveBasketID(ctx context.Context, processorName, transactionID string) (string, error) {
	if transactionID == "" {
		return "", ErrNoRecord
	}
	var entry models.ProcessorResponse
	err := s.db.WithContext(ctx).
		Where("processor_name = ? AND transaction_id = ?", processorName, transactionID).
		Order("created_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNoRecord
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve basket for transaction %s: %w", transactionID, err)
	}
	return entry.BasketID, nil
}
