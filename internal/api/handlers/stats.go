// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulsebot/pulsebot/internal/database"
)

// StatsHandler serves the live counters polled by the dashboard.
func (h *Handler) StatsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.DB.CountPostAttempts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	todayCount, _ := h.DB.CountPostAttemptsSince(ctx, today)

	successRate := 0.0
	if total > 0 {
		successful, _ := h.DB.CountPostAttemptsByOutcome(ctx, true)
		successRate = math.Round(float64(successful)/float64(total)*100*100) / 100
	}

	stats := gin.H{
		"total_posts":  total,
		"today_posts":  todayCount,
		"success_rate": successRate,
		"last_post":    nil,
	}

	last, err := h.DB.GetLatestPostAttempt(ctx)
	if err == nil {
		content := last.Content
		if runes := []rune(content); len(runes) > 100 {
			content = string(runes[:100]) + "..."
		}
		stats["last_post"] = gin.H{
			"content":   content,
			"category":  last.Category,
			"posted_at": last.PostedAt.Format("15:04:05"),
			"success":   last.Success,
		}
	} else if !errors.Is(err, database.ErrNotFound) {
		h.Log.WithError(err).Error("Failed to load latest post attempt")
	}

	c.JSON(http.StatusOK, stats)
}
