package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/internal/models"
	"github.com/huangang/bizboard/internal/observability"
	"gorm.io/gorm"
)

// Metrics serves the Prometheus registry. Row counts of the tenancy tables
// are refreshed on every scrape.
// GET /metrics
func Metrics(m *observability.Metrics, db *gorm.DB) gin.HandlerFunc {
	handler := m.Handler()
	return func(c *gin.Context) {
		if db != nil {
			ctx := c.Request.Context()
			var profiles, configs, versions int64
			db.WithContext(ctx).Model(&models.Profile{}).Count(&profiles)
			db.WithContext(ctx).Model(&models.DashboardConfig{}).Where("is_active = ?", true).Count(&configs)
			db.WithContext(ctx).Model(&models.ConfigVersion{}).Count(&versions)

			m.SetStoreRows("profiles", profiles)
			m.SetStoreRows("active_configs", configs)
			m.SetStoreRows("config_versions", versions)
		}
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
