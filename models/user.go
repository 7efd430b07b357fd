package models

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// AtLeast fails closed on unknown roles.
func (r Role) AtLeast(min Role) bool {
	levels := map[Role]int{RoleAdmin: 3, RoleOperator: 2, RoleViewer: 1}
	return levels[r] > 0 && levels[r] >= levels[min]
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleOperator || r == RoleViewer
}

// User 由外部身份服务创建会话；这里只保存角色与活动时间
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	DisplayName string `gorm:"size:255;not null" json:"displayName"`
	Role        Role   `gorm:"size:20;not null;default:'viewer'" json:"role"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "ong_users"
}
