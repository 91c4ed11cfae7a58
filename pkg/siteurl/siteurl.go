package siteurl

import (
	"strings"

	"go.uber.org/fx"

	"github.com/merchkit/paygate/pkg/config"
)

// Builder produces the absolute storefront URLs handed back to the gateway:
// cancel and error pages, the per-order receipt page, and our own
// notification callback.
type Builder struct {
	base             string
	cancelPath       string
	errorPath        string
	receiptPath      string
	notificationPath string
}

func New(cfg *config.Config) *Builder {
	return &Builder{
		base:             strings.TrimRight(cfg.Opayo.SiteURL, "/"),
		cancelPath:       cfg.Opayo.CancelPath,
		errorPath:        cfg.Opayo.ErrorPath,
		receiptPath:      cfg.Opayo.ReceiptPath,
		notificationPath: cfg.Opayo.NotificationPath,
	}
}

func (b *Builder) join(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.base + path
}

func (b *Builder) CancelURL() string { return b.join(b.cancelPath) }

func (b *Builder) ErrorURL() string { return b.join(b.errorPath) }

// ReceiptURL is the post-payment receipt page, keyed by order number.
func (b *Builder) ReceiptURL(orderNumber string) string {
	return b.join(strings.TrimRight(b.receiptPath, "/") + "/" + orderNumber + "/")
}

// NotificationURL is where the gateway sends its server-to-server callback.
func (b *Builder) NotificationURL() string { return b.join(b.notificationPath) }

var Module = fx.Options(
	fx.Provide(New),
)
