// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RootHandler(c *gin.Context) {

	ctx := c.Request.Context()

	totalAttempts, _ := h.DB.CountPostAttempts(ctx)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	todayAttempts, _ := h.DB.CountPostAttemptsSince(ctx, today)
	successful, _ := h.DB.CountPostAttemptsByOutcome(ctx, true)
	failed, _ := h.DB.CountPostAttemptsByOutcome(ctx, false)

	recentAttempts, _ := h.DB.GetRecentPostAttempts(ctx, 10)
	recentAPILogs, _ := h.DB.GetRecentAPICallLogs(ctx, 5)

	schedulerStatus := "Off"
	if h.Scheduler.IsActive() {
		schedulerStatus = "On"
	}

	c.HTML(http.StatusOK, "index.html", h.CommonData(c, gin.H{
		"title":            "Dashboard",
		"total_attempts":   totalAttempts,
		"today_attempts":   todayAttempts,
		"successful":       successful,
		"failed":           failed,
		"recent_attempts":  recentAttempts,
		"recent_api_logs":  recentAPILogs,
		"scheduler_status": schedulerStatus,
		"triggers":         h.Scheduler.Triggers(),
	}))
}
