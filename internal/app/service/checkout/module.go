package checkout

import (
	"go.uber.org/fx"

	audit "github.com/merchkit/paygate/internal/app/service/audit_log"
	"github.com/merchkit/paygate/internal/platform/opayo"
	"github.com/merchkit/paygate/pkg/config"
)

func newGatewayClient(cfg *config.Config) (*opayo.Client, error) {
	return opayo.NewClient(opayo.ClientOptions{
		Vendor: cfg.Opayo.Vendor,
		Mode:   cfg.Opayo.Mode,
	})
}

// Module exposes the gateway client and initiator via Fx.
var Module = fx.Options(
	fx.Provide(newGatewayClient),
	fx.Provide(func(c *opayo.Client) Registrar { return c }),
	fx.Provide(func(s *audit.Service) AuditRecorder { return s }),
	fx.Provide(NewInitiator),
)
