package checkout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/merchkit/paygate/internal/models"
	"github.com/merchkit/paygate/internal/platform/opayo"
	"github.com/merchkit/paygate/pkg/logctx"
	"github.com/merchkit/paygate/pkg/siteurl"
)

// GatewayError is an outbound registration failure, either transport-level
// or a rejection by the gateway. It surfaces to the checkout caller; no
// order side effects exist at that point.
type GatewayError struct {
	StatusDetail string
	Err          error
}

func (e *GatewayError) Error() string {
	if e.StatusDetail != "" {
		return fmt.Sprintf("gateway rejected registration: %s", e.StatusDetail)
	}
	return fmt.Sprintf("gateway registration failed: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Registrar is the outbound gateway dependency.
type Registrar interface {
	Register(ctx context.Context, reg *opayo.RegistrationRequest) (*opayo.RegistrationReply, error)
	Vendor() string
}

// AuditRecorder appends processor responses to the audit log.
type AuditRecorder interface {
	Record(ctx context.Context, basketID, transactionID, processorName string, payload map[string]string) (*models.ProcessorResponse, error)
}

// Initiator starts a hosted-payment-page transaction: it registers the
// frozen basket with the gateway and surfaces the redirect target.
type Initiator struct {
	gateway Registrar
	audit   AuditRecorder
	urls    *siteurl.Builder
	log     *zap.SugaredLogger
}

func NewInitiator(gateway Registrar, audit AuditRecorder, urls *siteurl.Builder, log *zap.SugaredLogger) *Initiator {
	return &Initiator{gateway: gateway, audit: audit, urls: urls, log: log}
}

// Initiate registers the basket with the gateway and returns the hosted
// payment page URL. The caller freezes the basket immediately before this
// call; no lock is held across the network round trip.
func (i *Initiator) Initiate(ctx context.Context, basket *models.Basket, billing opayo.BillingAddress) (string, error) {
	if basket.NumLines() == 0 {
		return "", fmt.Errorf("basket %s has no lines", basket.ID)
	}
	if !basket.Total().IsPositive() || basket.Currency == "" {
		return "", fmt.Errorf("basket %s has no payable total", basket.ID)
	}
	if !basket.IsFrozen() {
		return "", fmt.Errorf("basket %s must be frozen before payment initiation", basket.ID)
	}

	log := logctx.FromCtx(ctx, i.log)
	reg := opayo.BuildRegistration(basket, billing, i.urls.NotificationURL())

	reply, err := i.gateway.Register(ctx, reg)
	if err != nil {
		// no transaction id is known yet, so nothing to audit
		log.Warnw("gateway_registration_failed", "basket_id", basket.ID, "error", err.Error())
		return "", &GatewayError{Err: err}
	}

	if !reply.Accepted() {
		entry, recErr := i.audit.Record(ctx, basket.ID, reply.VPSTxID, opayo.ProcessorName, reply.Fields())
		if recErr != nil {
			log.Errorw("audit_record_failed", "basket_id", basket.ID, "error", recErr.Error())
		} else {
			log.Errorw("gateway_registration_rejected",
				"basket_id", basket.ID,
				"status", reply.Status,
				"audit_entry", entry.ID,
			)
		}
		return "", &GatewayError{StatusDetail: reply.StatusDetail}
	}

	if _, err := i.audit.Record(ctx, basket.ID, reply.VPSTxID, opayo.ProcessorName, reply.Fields()); err != nil {
		log.Errorw("audit_record_failed", "basket_id", basket.ID, "error", err.Error())
		return "", fmt.Errorf("failed to record registration for basket %s: %w", basket.ID, err)
	}
	if reply.NextURL == "" {
		return "", &GatewayError{StatusDetail: "registration accepted without a NextURL"}
	}

	log.Infow("gateway_registration_accepted",
		"basket_id", basket.ID,
		"transaction_id", reply.VPSTxID,
		"order_number", basket.OrderNumber,
	)
	return reply.NextURL, nil
}
