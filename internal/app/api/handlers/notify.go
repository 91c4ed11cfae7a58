package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/merchkit/paygate/internal/app/service/reconciler"
	"github.com/merchkit/paygate/internal/platform/opayo"
	"github.com/merchkit/paygate/pkg/logctx"
)

// @Summary      Opayo notification callback
// @Description  Handles the Opayo server-to-server notification. The response body is the gateway's fixed Status/StatusDetail/RedirectURL line format, not JSON.
// @Tags         Webhook
// @Accept       x-www-form-urlencoded
// @Produce      plain
// @Success      200  {string}  string
// @Router       /payment/opayo/notify [post]
// ApiOpayoNotify consumes the asynchronous gateway notification. Every
// outcome, including internal failures, answers with the fixed three-line
// ack body; the gateway never sees a raw error page.
func ApiOpayoNotify(rec *reconciler.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		logctx.FromGin(c, rec.Logger).Infow("notification_received")

		if err := c.Request.ParseForm(); err != nil {
			logctx.FromGin(c, rec.Logger).Errorw("notification_form_unparseable", "error", err.Error())
		}
		n := opayo.NotificationFromForm(c.Request.PostForm)

		ack := rec.Reconcile(c.Request.Context(), n)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(ack.Body()))
	}
}

func RegisterNotificationRoutes(r gin.IRouter, rec *reconciler.Reconciler) {
	r.POST("/payment/opayo/notify", ApiOpayoNotify(rec))
}
