package db

import (
	"context"
	"errors"
	"strings"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", r.now()).Error
}

// 按 ID 查
func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "user")
	}
	return &u, nil
}

func (r *Repo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&u).Error; err != nil {
		return nil, apperr.FromStore(err, "user")
	}
	return &u, nil
}

// EnsureUser returns the user with this username, creating it with role
// when missing.
func (r *Repo) EnsureUser(ctx context.Context, username string, role models.Role) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperr.BadRequest("username is required")
	}
	var u models.User
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = models.User{ID: uuid.NewString(), Username: username, DisplayName: username, Role: role}
		if err := r.DB.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, apperr.FromStore(err, "user")
		}
		return &u, nil
	}
	if err != nil {
		return nil, apperr.FromStore(err, "user")
	}
	return &u, nil
}

// 列表（分页 + 关键词，匹配用户名/显示名）
func (r *Repo) ListUsers(ctx context.Context, q string, page, size int) (*Page[models.User], error) {
	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", like, like)
	}
	p, err := paginate[models.User](tx, page, size, "created_at DESC")
	return p, apperr.FromStore(err, "user")
}

func (r *Repo) SetUserRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.BadRequest("unknown role %q", role)
	}
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"role": string(role), "updated_at": r.now()})
	if res.Error != nil {
		return nil, apperr.FromStore(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("user not found")
	}
	return r.FindUserByID(ctx, userID)
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", string(models.RoleAdmin)).
		Count(&n).Error
	return n, apperr.FromStore(err, "user")
}

func (r *Repo) DeleteUserByID(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return apperr.FromStore(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
