// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsebot/pulsebot/internal/config"
)

// settingField is one row of the config form.
type settingField struct {
	Key         string
	Description string
	Secret      bool
}

// settingFields drives both rendering and persistence of the config page.
var settingFields = []settingField{
	{config.KeyTwitterConsumerKey, "API Key de Twitter", true},
	{config.KeyTwitterConsumerSecret, "API Secret de Twitter", true},
	{config.KeyTwitterAccessToken, "Access Token de Twitter", true},
	{config.KeyTwitterAccessTokenSecret, "Access Token Secret de Twitter", true},
	{config.KeyOpenWeatherAPIKey, "API Key de OpenWeatherMap", true},
	{config.KeyNewsAPIKey, "API Key de NewsAPI", true},
	{config.KeyWeatherCity, "Ciudad para el clima", false},
	{config.KeyCurrencyFrom, "Moneda base (ej: USD)", false},
	{config.KeyCurrencyTo, "Moneda destino (ej: ARS)", false},
	{config.KeyNewsCategory, "Categoría de noticias", false},
	{config.KeyNewsCountry, "País para noticias", false},
	{config.KeyScheduleWeather, "Horarios para clima (separados por coma)", false},
	{config.KeyScheduleCurrency, "Horarios para moneda (separados por coma)", false},
	{config.KeyScheduleNews, "Horarios para noticias (separados por coma)", false},
}

func (h *Handler) ConfigHandler(c *gin.Context) {
	ctx := c.Request.Context()

	type fieldWithValue struct {
		Key         string
		Description string
		Secret      bool
		Value       string
	}

	fields := make([]fieldWithValue, 0, len(settingFields))
	for _, f := range settingFields {
		fields = append(fields, fieldWithValue{
			Key:         f.Key,
			Description: f.Description,
			Secret:      f.Secret,
			Value:       h.Settings.Get(ctx, f.Key, ""),
		})
	}

	c.HTML(http.StatusOK, "config.html", h.CommonData(c, gin.H{
		"title":  "Configuración",
		"fields": fields,
	}))
}

// ConfigSaveHandler persists submitted values and re-registers the
// scheduler triggers so new times apply without a restart.
func (h *Handler) ConfigSaveHandler(c *gin.Context) {
	ctx := c.Request.Context()

	for _, f := range settingFields {
		value := c.PostForm(f.Key)
		if value == "" {
			continue
		}
		if err := h.Settings.Set(ctx, f.Key, value, f.Description); err != nil {
			h.Log.WithError(err).WithField("key", f.Key).Error("Failed to save setting")
			h.flashError(c, "Error al guardar la configuración: "+err.Error())
			c.Redirect(http.StatusSeeOther, "/config")
			return
		}
	}

	h.Scheduler.Refresh(ctx)

	h.flash(c, "Configuración guardada exitosamente")
	c.Redirect(http.StatusSeeOther, "/config")
}
