// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SchedulerRefreshHandler re-registers all triggers from the current
// configuration without restarting the process.
func (h *Handler) SchedulerRefreshHandler(c *gin.Context) {
	h.Scheduler.Refresh(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"message":  "Scheduler refreshed",
		"triggers": len(h.Scheduler.Triggers()),
	})
}
