package controllers

import (
	"net/http"

	"ong_equipment_tool/app"
	"ong_equipment_tool/db"
	"ong_equipment_tool/models"

	"github.com/gin-gonic/gin"
)

type MaintenanceController struct{ *Srv }

func NewMaintenanceController(s *Srv) *MaintenanceController {
	return &MaintenanceController{Srv: s}
}

func (mc *MaintenanceController) Create(c *gin.Context) {
	var in db.MaintenanceInput
	if !mc.bind(c, &in) {
		return
	}
	m, err := mc.Repo.CreateMaintenance(c.Request.Context(), in, app.ActorOf(c))
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (mc *MaintenanceController) List(c *gin.Context) {
	q := db.MaintenanceQuery{
		Status:      c.Query("status"),
		EquipmentID: c.Query("equipmentId"),
	}
	q.Page, q.Size = pageParams(c)
	res, err := mc.Repo.ListMaintenance(c.Request.Context(), q)
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (mc *MaintenanceController) Get(c *gin.Context) {
	m, err := mc.Repo.GetMaintenance(c.Request.Context(), c.Param("id"))
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// 只有 scheduled 状态可以修改
func (mc *MaintenanceController) Update(c *gin.Context) {
	var p db.MaintenancePatch
	if !mc.bind(c, &p) {
		return
	}
	m, err := mc.Repo.UpdateMaintenance(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (mc *MaintenanceController) Start(c *gin.Context) {
	mc.respond(c)(mc.Repo.StartMaintenance(c.Request.Context(), c.Param("id")))
}

func (mc *MaintenanceController) Complete(c *gin.Context) {
	var in db.CompleteInput
	if !mc.bind(c, &in) {
		return
	}
	mc.respond(c)(mc.Repo.CompleteMaintenance(c.Request.Context(), c.Param("id"), in))
}

func (mc *MaintenanceController) Cancel(c *gin.Context) {
	mc.respond(c)(mc.Repo.CancelMaintenance(c.Request.Context(), c.Param("id")))
}

func (mc *MaintenanceController) respond(c *gin.Context) func(*models.Maintenance, error) {
	return func(m *models.Maintenance, err error) {
		if err != nil {
			mc.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, m)
	}
}
