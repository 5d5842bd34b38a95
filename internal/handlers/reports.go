package handlers

import (
	"github.com/chachabrian/foodshare-backend/internal/services"
	"github.com/gin-gonic/gin"
)

func GetKPI(svc *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		kpi, err := svc.KPI(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, kpi)
	}
}

// GetReport runs the report named in the path. Optional query arguments:
// letter, city.
func GetReport(svc *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := map[string]string{
			"letter": c.Query("letter"),
			"city":   c.Query("city"),
		}
		result, err := svc.Run(c.Request.Context(), c.Param("name"), params)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, result)
	}
}

func ListReports() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"reports": services.ReportNames})
	}
}

// GetFilters returns the dashboard filter options; letter narrows the cities.
func GetFilters(svc *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := svc.Filters(c.Request.Context(), c.Query("letter"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, opts)
	}
}
