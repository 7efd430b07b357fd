package controllers

import (
	"net/http"
	"strconv"

	"ong_equipment_tool/app"
	"ong_equipment_tool/apperr"
	"ong_equipment_tool/db"

	"github.com/gin-gonic/gin"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// GET /api/reports/predictive-maintenance?days=30
func (rc *ReportController) PredictiveMaintenance(c *gin.Context) {
	days := db.DefaultAttentionDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			rc.fail(c, apperr.BadRequest("days must be a positive integer"))
			return
		}
		days = n
	}
	rows, err := rc.Repo.PredictiveMaintenance(c.Request.Context(), days)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows, "thresholdDays": days})
}

func (rc *ReportController) OverdueLoans(c *gin.Context) {
	rows, err := rc.Repo.OverdueLoans(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

func (rc *ReportController) Summary(c *gin.Context) {
	sum, err := rc.Repo.StatusSummary(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
