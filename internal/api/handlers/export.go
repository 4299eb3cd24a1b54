// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ExportPostsHandler streams the full publication history as a CSV download.
func (h *Handler) ExportPostsHandler(c *gin.Context) {
	attempts, err := h.DB.GetAllPostAttempts(c.Request.Context())
	if err != nil {
		h.Log.WithError(err).Error("Failed to load post history for export")
		c.HTML(http.StatusInternalServerError, "error.html", h.CommonData(c, gin.H{
			"error": "No se pudo generar la exportación",
		}))
		return
	}

	filename := fmt.Sprintf("pulsebot_posts_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "posted_at", "category", "content", "success", "error_message"}); err != nil {
		h.Log.WithError(err).Error("Failed to write export header")
		return
	}

	for _, a := range attempts {
		errMsg := ""
		if a.ErrorMessage.Valid {
			errMsg = a.ErrorMessage.String
		}

		record := []string{
			a.ID.String(),
			a.PostedAt.Format(time.RFC3339),
			a.Category,
			a.Content,
			strconv.FormatBool(a.Success),
			errMsg,
		}
		if err := writer.Write(record); err != nil {
			h.Log.WithError(err).Error("Failed to write export row")
			return
		}
	}
}
