package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const MaintenanceTable = "ong_maintenance"

type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenancePredictive MaintenanceType = "predictive"
	MaintenanceEmergency  MaintenanceType = "emergency"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Maintenance struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID   string     `gorm:"type:uuid;index;not null" json:"equipmentId"`
	Equipment     *Equipment `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
	ScheduledDate time.Time  `gorm:"index;not null" json:"scheduledDate"`
	PerformedDate *time.Time `json:"performedDate,omitempty"`

	Type        MaintenanceType     `gorm:"size:20;not null" json:"type"`
	Priority    Priority            `gorm:"size:20;not null;default:'medium'" json:"priority"`
	Status      MaintenanceStatus   `gorm:"size:20;index;not null;default:'scheduled'" json:"status"`
	Technician  string              `gorm:"size:200" json:"technician,omitempty"`
	Description string              `gorm:"type:text" json:"description,omitempty"`
	Cost        decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"cost"`

	CreatedBy *string   `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Maintenance) TableName() string { return MaintenanceTable }

// Open reports whether the ticket can still start, complete or be cancelled.
func (m *Maintenance) Open() bool {
	return m.Status == MaintenanceScheduled || m.Status == MaintenanceInProgress
}
