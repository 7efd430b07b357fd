package models

import "time"

// StatusOverride 记录管理员手动修正设备状态的审计信息
type StatusOverride struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID   string          `gorm:"type:uuid;index;not null" json:"equipmentId"`
	FromStatus    EquipmentStatus `gorm:"size:20;not null" json:"fromStatus"`
	ToStatus      EquipmentStatus `gorm:"size:20;not null" json:"toStatus"`
	ActorID       string          `gorm:"type:uuid" json:"actorId"`
	ActorUsername string          `gorm:"size:255" json:"actorUsername"`
	Reason        string          `gorm:"size:500;not null" json:"reason"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (StatusOverride) TableName() string { return "ong_status_overrides" }
