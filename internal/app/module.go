package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/merchkit/paygate/internal/app/api/server"
	audit "github.com/merchkit/paygate/internal/app/service/audit_log"
	"github.com/merchkit/paygate/internal/app/service/baskets"
	"github.com/merchkit/paygate/internal/app/service/checkout"
	"github.com/merchkit/paygate/internal/app/service/orders"
	"github.com/merchkit/paygate/internal/app/service/reconciler"
	"github.com/merchkit/paygate/internal/app/service/statistics"
	"github.com/merchkit/paygate/internal/platform/db"
	"github.com/merchkit/paygate/pkg/config"
	"github.com/merchkit/paygate/pkg/logger"
	"github.com/merchkit/paygate/pkg/siteurl"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	siteurl.Module,
	db.Module,
	server.Module,
	audit.Module,
	baskets.Module,
	orders.Module,
	checkout.Module,
	reconciler.Module,
	statistics.Module,
)
