package controllers

import (
	"net/http"

	"ong_equipment_tool/db"

	"github.com/gin-gonic/gin"
)

type CollaboratorController struct{ *Srv }

func NewCollaboratorController(s *Srv) *CollaboratorController {
	return &CollaboratorController{Srv: s}
}

func (cc *CollaboratorController) Create(c *gin.Context) {
	var in db.CollaboratorInput
	if !cc.bind(c, &in) {
		return
	}
	col, err := cc.Repo.CreateCollaborator(c.Request.Context(), in)
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, col)
}

// GET /api/collaborators?q=&program=&active=true&page=&size=
func (cc *CollaboratorController) List(c *gin.Context) {
	q := db.CollaboratorQuery{
		Q:       c.Query("q"),
		Program: c.Query("program"),
		Active:  boolQuery(c, "active"),
	}
	q.Page, q.Size = pageParams(c)
	res, err := cc.Repo.ListCollaborators(c.Request.Context(), q)
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (cc *CollaboratorController) Get(c *gin.Context) {
	col, err := cc.Repo.GetCollaborator(c.Request.Context(), c.Param("id"))
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, col)
}

func (cc *CollaboratorController) Update(c *gin.Context) {
	var p db.CollaboratorPatch
	if !cc.bind(c, &p) {
		return
	}
	col, err := cc.Repo.UpdateCollaborator(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, col)
}

func (cc *CollaboratorController) Deactivate(c *gin.Context) { cc.setActive(c, false) }
func (cc *CollaboratorController) Activate(c *gin.Context)   { cc.setActive(c, true) }

func (cc *CollaboratorController) setActive(c *gin.Context, active bool) {
	col, err := cc.Repo.SetCollaboratorActive(c.Request.Context(), c.Param("id"), active)
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, col)
}
