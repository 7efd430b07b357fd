package controllers

import (
	"net/http"

	"ong_equipment_tool/apperr"

	"github.com/gin-gonic/gin"
)

type SettingsController struct{ *Srv }

func NewSettingsController(s *Srv) *SettingsController { return &SettingsController{Srv: s} }

// GET /api/settings/:key
func (sc *SettingsController) Get(c *gin.Context) {
	st, err := sc.Settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// PUT /api/settings/:key {"value": "..."}
func (sc *SettingsController) Put(c *gin.Context) {
	var in struct {
		Value *string `json:"value"`
	}
	if !sc.bind(c, &in) {
		return
	}
	if in.Value == nil {
		sc.fail(c, apperr.BadRequest("value is required"))
		return
	}
	st, err := sc.Settings.Put(c.Request.Context(), c.Param("key"), *in.Value)
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
