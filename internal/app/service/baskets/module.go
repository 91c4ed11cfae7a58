package baskets

import "go.uber.org/fx"

// Module exposes the basket store via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
