// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pulsebot/pulsebot/internal/database"
)

const attemptsPerPage = 20

func (h *Handler) LogsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	attempts, err := h.DB.GetPostAttemptsPage(ctx, database.GetPostAttemptsPageParams{
		Limit:  attemptsPerPage,
		Offset: int32((page - 1) * attemptsPerPage),
	})
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", h.CommonData(c, gin.H{
			"error": err.Error(),
			"title": "Error",
		}))
		return
	}

	total, _ := h.DB.CountPostAttempts(ctx)
	totalPages := int((total + attemptsPerPage - 1) / attemptsPerPage)
	if totalPages < 1 {
		totalPages = 1
	}

	apiLogs, _ := h.DB.GetRecentAPICallLogs(ctx, 50)

	c.HTML(http.StatusOK, "logs.html", h.CommonData(c, gin.H{
		"title":       "Logs",
		"attempts":    attempts,
		"api_logs":    apiLogs,
		"page":        page,
		"total_pages": totalPages,
		"has_prev":    page > 1,
		"has_next":    page < totalPages,
		"prev_page":   page - 1,
		"next_page":   page + 1,
	}))
}
