package reconciler

import (
	"go.uber.org/fx"

	audit "github.com/merchkit/paygate/internal/app/service/audit_log"
	"github.com/merchkit/paygate/internal/app/service/baskets"
	"github.com/merchkit/paygate/internal/app/service/orders"
)

// Module exposes the notification reconciler via Fx.
var Module = fx.Options(
	fx.Provide(func(s *audit.Service) AuditLog { return s }),
	fx.Provide(func(s *baskets.Service) BasketStore { return s }),
	fx.Provide(func(s *orders.Service) OrderPlacer { return s }),
	fx.Provide(New),
)
