// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsebot/pulsebot/internal/config"
)

// ManualPostHandler runs one fetch→format→publish cycle outside the
// schedule for an operator-chosen category. The attempt is recorded as a
// manual post.
func (h *Handler) ManualPostHandler(c *gin.Context) {
	source := config.Category(c.PostForm("type"))

	switch source {
	case config.CategoryWeather, config.CategoryCurrency, config.CategoryNews:
	default:
		h.flashError(c, "Tipo de publicación inválido")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if h.Scheduler.DispatchManual(c.Request.Context(), source) {
		h.flash(c, "Publicación de prueba enviada")
	} else {
		h.flashError(c, "Error al enviar la publicación de prueba")
	}

	c.Redirect(http.StatusSeeOther, "/")
}
