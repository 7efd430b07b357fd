package controllers

import (
	"net/http"

	"ong_equipment_tool/app"
	"ong_equipment_tool/apperr"
	"ong_equipment_tool/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	page, size := pageParams(c)
	res, err := uc.Repo.ListUsers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil { // 校验 UUID 格式
		uc.fail(c, apperr.BadRequest("invalid uuid"))
		return
	}
	user, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": user})
}

// PUT /api/users/:id/role {"role":"operator"}
func (uc *UserController) SetRole(c *gin.Context) {
	var in struct {
		Role string `json:"role"`
	}
	if !uc.bind(c, &in) {
		return
	}
	id := c.Param("id")
	role := models.Role(in.Role)
	if id == c.GetString("userID") && role != models.RoleAdmin {
		uc.fail(c, apperr.BadRequest("cannot demote yourself"))
		return
	}
	user, err := uc.Repo.SetUserRole(c.Request.Context(), id, role)
	if err != nil {
		uc.fail(c, err)
		return
	}
	uc.Log.Info("user role changed",
		zap.String("user", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("by", c.GetString("userID")),
	)
	c.JSON(http.StatusOK, app.H{"user": user})
}

// DELETE /api/users/:id
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	// 不允许删除自己，避免锁死
	if id == c.GetString("userID") {
		uc.fail(c, apperr.BadRequest("cannot delete yourself"))
		return
	}

	target, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		uc.fail(c, err)
		return
	}
	if uc.Cfg.IsAdminUsername(target.Username) {
		c.JSON(http.StatusForbidden, app.H{"error": "cannot delete an admin", "kind": "forbidden"})
		return
	}

	if err := uc.Repo.DeleteUserByID(c.Request.Context(), id); err != nil {
		uc.fail(c, err)
		return
	}
	// 撤销该用户的所有登录会话
	if err := uc.AppSess.RevokeAllForUser(c.Request.Context(), id); err != nil {
		uc.Log.Warn("revoke sessions failed", zap.String("user", id), zap.Error(err))
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/me
func (uc *UserController) Me(c *gin.Context) {
	user, err := uc.Repo.FindUserByID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		uc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"user": user,
		"role": app.RoleOf(c),
	})
}

// POST /api/logout：删 Redis 会话，Cookie 置空
func (uc *UserController) Logout(c *gin.Context) {
	if sid := c.GetString("sessionID"); sid != "" {
		if err := uc.AppSess.Delete(c.Request.Context(), sid); err != nil {
			uc.Log.Warn("logout: delete session failed", zap.Error(err))
		}
	}
	uc.setAppCookie(c.Writer, "", -1)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
