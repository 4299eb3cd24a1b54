// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pulsebot/pulsebot/internal/config"
	"github.com/pulsebot/pulsebot/internal/database"
	"github.com/pulsebot/pulsebot/internal/scheduler"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	DB        *database.Queries
	Settings  *config.Store
	Scheduler *scheduler.Scheduler
	Log       *logrus.Logger
}

func NewHandler(db *database.Queries, settings *config.Store, sched *scheduler.Scheduler, log *logrus.Logger) *Handler {
	return &Handler{
		DB:        db,
		Settings:  settings,
		Scheduler: sched,
		Log:       log,
	}
}

// CommonData merges page data with fields every template expects, draining
// pending flash messages in the process.
func (h *Handler) CommonData(c *gin.Context, data gin.H) gin.H {
	session := sessions.Default(c)
	flashes := session.Flashes()
	errorFlashes := session.Flashes("error")
	_ = session.Save()

	data["app_version"] = config.AppVersion
	data["flashes"] = flashes
	data["error_flashes"] = errorFlashes
	return data
}

func (h *Handler) flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	_ = session.Save()
}

func (h *Handler) flashError(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, "error")
	_ = session.Save()
}
