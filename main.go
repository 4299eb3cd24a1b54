// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"context"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pulsebot/pulsebot/internal/api/handlers"
	"github.com/pulsebot/pulsebot/internal/config"
	"github.com/pulsebot/pulsebot/internal/metrics"
	"github.com/pulsebot/pulsebot/internal/middleware"
	"github.com/pulsebot/pulsebot/internal/provider"
	"github.com/pulsebot/pulsebot/internal/publisher"
	"github.com/pulsebot/pulsebot/internal/scheduler"
	"github.com/sirupsen/logrus"
)

func main() {

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(config.GetLogLevel())

	loadEnvFiles(logger)

	appCfg := &config.AppConfig{
		Port: config.GetEnv("PORT", "8080"),
	}

	dbQueries, _, err := config.LoadDatabase()
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	collector := metrics.NewCollector()
	settings := config.NewStore(dbQueries, logger)

	client := provider.NewClient(dbQueries, logger, collector)
	weather := provider.NewWeatherProvider(client, settings)
	currency := provider.NewCurrencyProvider(client)
	news := provider.NewNewsProvider(client, settings)

	ctx := context.Background()
	creds := config.ResolveTwitterCredentials(ctx, settings)
	pub := publisher.New(dbQueries, logger, collector, creds)

	sched := scheduler.New(settings, weather, currency, news, pub, logger)
	sched.Refresh(ctx)
	sched.Start(scheduler.PollInterval)

	h := handlers.NewHandler(dbQueries, settings, sched, logger)

	r := gin.Default()

	sessionStore := cookie.NewStore([]byte(config.GetEnv("SESSION_SECRET", "pulsebot-dev-secret")))
	r.Use(sessions.Sessions("pulsebot_session", sessionStore))
	r.Use(middleware.SecurityHeadersMiddleware())

	r.LoadHTMLGlob("templates/*")
	r.Static("/static", "./static")

	r.GET("/", h.RootHandler)
	r.GET("/config", h.ConfigHandler)
	r.POST("/config", h.ConfigSaveHandler)
	r.GET("/logs", h.LogsHandler)
	r.GET("/export/posts.csv", h.ExportPostsHandler)
	r.POST("/post/manual", h.ManualPostHandler)
	r.POST("/scheduler/refresh", h.SchedulerRefreshHandler)
	r.GET("/api/stats", h.StatsHandler)
	r.GET("/metrics", metrics.Handler())
	r.GET("/healthz", h.HealthHandler)

	logger.WithField("port", appCfg.Port).Info("Starting dashboard")
	if err := r.Run(":" + appCfg.Port); err != nil {
		logger.WithError(err).Fatal("Server exited")
	}
}

// loadEnvFiles pulls local .env files into the process environment before
// anything reads configuration.
func loadEnvFiles(logger *logrus.Logger) {
	for _, file := range []string{".env", ".env.dev"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			logger.WithError(err).Warnf("Failed to load %s", file)
		}
	}
}
