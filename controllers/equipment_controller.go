package controllers

import (
	"net/http"

	"ong_equipment_tool/app"
	"ong_equipment_tool/db"

	"github.com/gin-gonic/gin"
)

type EquipmentController struct{ *Srv }

func NewEquipmentController(s *Srv) *EquipmentController { return &EquipmentController{Srv: s} }

// POST /api/equipment
func (ec *EquipmentController) Create(c *gin.Context) {
	var in db.EquipmentInput
	if !ec.bind(c, &in) {
		return
	}
	eq, err := ec.Repo.CreateEquipment(c.Request.Context(), in, app.ActorOf(c))
	if err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, eq)
}

// GET /api/equipment?status=&type=&q=&page=&size=
func (ec *EquipmentController) List(c *gin.Context) {
	q := db.EquipmentQuery{
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Q:      c.Query("q"),
	}
	q.Page, q.Size = pageParams(c)
	res, err := ec.Repo.ListEquipment(c.Request.Context(), q)
	if err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ec *EquipmentController) Get(c *gin.Context) {
	eq, err := ec.Repo.GetEquipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eq)
}

// PATCH /api/equipment/:id （status 不能在这里改）
func (ec *EquipmentController) Update(c *gin.Context) {
	var p db.EquipmentPatch
	if !ec.bind(c, &p) {
		return
	}
	eq, err := ec.Repo.UpdateEquipment(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eq)
}

func (ec *EquipmentController) Delete(c *gin.Context) {
	if err := ec.Repo.DeleteEquipment(c.Request.Context(), c.Param("id")); err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/equipment/:id/history
func (ec *EquipmentController) History(c *gin.Context) {
	h, err := ec.Repo.EquipmentHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

// POST /api/equipment/:id/status （仅管理员，需填写原因）
func (ec *EquipmentController) Override(c *gin.Context) {
	var in db.OverrideInput
	if !ec.bind(c, &in) {
		return
	}
	eq, err := ec.Repo.OverrideStatus(c.Request.Context(), c.Param("id"), in, app.ActorOf(c))
	if err != nil {
		ec.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eq)
}
