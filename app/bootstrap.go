// app/bootstrap.go
package app

import (
	"context"

	"ong_equipment_tool/models"

	"go.uber.org/zap"
)

// BootstrapFirstAdmin issues one admin session for BOOTSTRAP_ADMIN when the
// user table has no admin yet. It returns the session id, or "" when nothing
// was done.
func (a *App) BootstrapFirstAdmin(ctx context.Context) (string, error) {
	username := a.Config.BootstrapAdmin
	if username == "" {
		return "", nil
	}
	n, err := a.Repo.CountAdmins(ctx)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", nil // 已经有管理员，跳过
	}

	u, err := a.Repo.EnsureUser(ctx, username, models.RoleAdmin)
	if err != nil {
		return "", err
	}
	if u.Role != models.RoleAdmin {
		if u, err = a.Repo.SetUserRole(ctx, u.ID, models.RoleAdmin); err != nil {
			return "", err
		}
	}
	sid, err := a.appSess.Issue(ctx, u.ID, string(models.RoleAdmin))
	if err != nil {
		return "", err
	}

	a.Log.Warn("[BOOTSTRAP] no admin found, issued an admin session",
		zap.String("username", u.Username),
		zap.String("session", sid),
		zap.Duration("ttl", a.appSess.TTL()),
	)
	return sid, nil
}
