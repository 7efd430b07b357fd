// controllers/srv.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ong_equipment_tool/app"
	"ong_equipment_tool/apperr"
	"ong_equipment_tool/config"
	"ong_equipment_tool/db"
	"ong_equipment_tool/session"
	"ong_equipment_tool/settings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Srv struct {
	Repo     *db.Repo
	AppSess  *session.AppSessionStore
	Settings *settings.Store
	Log      *zap.Logger
	Cfg      config.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:     a.Repo,
		AppSess:  a.AppSessions(),
		Settings: a.Settings,
		Log:      a.Log.Named("http"),
		Cfg:      a.Config,
	}
}

// --- helpers ---

// fail 统一错误响应：{"error","kind"}，可重试的加 retryable 与 Retry-After
func (s *Srv) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	kind := apperr.KindOf(err)

	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}

	body := app.H{"error": msg, "kind": string(kind)}
	if apperr.IsRetryable(err) {
		body["retryable"] = true
		c.Header("Retry-After", "1")
	} else if status >= http.StatusInternalServerError {
		s.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("requestID")),
			zap.Error(err),
		)
		body["error"] = "internal error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// bind 解析 JSON；空 body 视为空对象
func (s *Srv) bind(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		s.fail(c, apperr.BadRequest("invalid request: %v", err))
		return false
	}
	return true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return page, size
}

func boolQuery(c *gin.Context, k string) *bool {
	v := strings.TrimSpace(c.Query(k))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// 统一设置业务会话 Cookie；maxAge<0 删除
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.Cfg.WebOrigin, "https://")
	age := int(maxAge / time.Second)
	if maxAge < 0 {
		age = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   age,
	})
}
