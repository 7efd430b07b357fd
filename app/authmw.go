package app

import (
	"errors"
	"net/http"
	"strings"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/config"
	"ong_equipment_tool/db"
	"ong_equipment_tool/models"
	"ong_equipment_tool/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const AppSessionCookie = "app_session"

// SessionID reads the session id from the cookie, falling back to a bearer
// token.
func SessionID(c *gin.Context) string {
	if ck, err := c.Request.Cookie(AppSessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo, cfg config.Config, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := SessionID(c)
		if sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), sid)
		if errors.Is(err, session.ErrNoSession) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}
		if err != nil {
			log.Error("session lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, H{"error": "session store unavailable"})
			return
		}

		// 确认用户仍存在，角色以数据库为准（只查一次）
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if apperr.KindOf(err) == apperr.KindNotFound {
			_ = appSess.Delete(c.Request.Context(), sid)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if err != nil {
			// 数据库暂时不可用时保留会话
			log.Error("user lookup failed", zap.String("user", as.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, H{"error": "user store unavailable"})
			return
		}
		role := u.Role
		if cfg.IsAdminUsername(u.Username) {
			role = models.RoleAdmin
		}

		c.Set("sessionID", sid)
		c.Set("userID", u.ID)
		c.Set("username", u.Username)
		c.Set("role", role)
		c.Next()
	}
}

// RequireRole 必须在 AuthRequired 之后
func RequireRole(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get("userID"); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !RoleOf(c).AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc { return RequireRole(models.RoleAdmin) }

func RoleOf(c *gin.Context) models.Role {
	v, _ := c.Get("role")
	r, _ := v.(models.Role)
	return r
}

// ActorOf is the authenticated user as recorded on ledger rows.
func ActorOf(c *gin.Context) db.Actor {
	return db.Actor{ID: c.GetString("userID"), Username: c.GetString("username")}
}
