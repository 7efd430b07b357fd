package controllers

import (
	"net/http"

	"ong_equipment_tool/app"
	"ong_equipment_tool/db"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct{ *Srv }

func NewAssignmentController(s *Srv) *AssignmentController { return &AssignmentController{Srv: s} }

func (ac *AssignmentController) Create(c *gin.Context) {
	var in db.AssignmentInput
	if !ac.bind(c, &in) {
		return
	}
	as, err := ac.Repo.CreateAssignment(c.Request.Context(), in, app.ActorOf(c))
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, as)
}

// GET /api/assignments?status=&equipmentId=&collaboratorId=
func (ac *AssignmentController) List(c *gin.Context) {
	q := db.AssignmentQuery{
		Status:         c.Query("status"),
		EquipmentID:    c.Query("equipmentId"),
		CollaboratorID: c.Query("collaboratorId"),
	}
	q.Page, q.Size = pageParams(c)
	res, err := ac.Repo.ListAssignments(c.Request.Context(), q)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ac *AssignmentController) Get(c *gin.Context) {
	as, err := ac.Repo.GetAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, as)
}

// PATCH 可换设备或换人（换设备时两台设备状态在同一事务内对调）
func (ac *AssignmentController) Update(c *gin.Context) {
	var p db.AssignmentPatch
	if !ac.bind(c, &p) {
		return
	}
	as, err := ac.Repo.UpdateAssignment(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, as)
}

func (ac *AssignmentController) Release(c *gin.Context) {
	var in db.ReleaseInput
	if !ac.bind(c, &in) {
		return
	}
	as, err := ac.Repo.ReleaseAssignment(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, as)
}

func (ac *AssignmentController) Donate(c *gin.Context) {
	as, err := ac.Repo.DonateAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, as)
}
