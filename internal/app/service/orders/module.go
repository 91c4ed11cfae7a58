package orders

import (
	"go.uber.org/fx"

	"github.com/merchkit/paygate/internal/app/service/baskets"
)

var _ BasketSubmitter = (*baskets.Service)(nil)

// Module exposes the order placement service via Fx.
var Module = fx.Options(
	fx.Provide(func(s *baskets.Service) BasketSubmitter { return s }),
	fx.Provide(New),
)
