// models/equipment.go
package models

import "time"

const EquipmentTable = "ong_equipment"

type EquipmentStatus string

const (
	StatusAvailable     EquipmentStatus = "available"
	StatusLoaned        EquipmentStatus = "loaned"
	StatusInMaintenance EquipmentStatus = "in_maintenance"
	StatusDamaged       EquipmentStatus = "damaged"
	StatusAssigned      EquipmentStatus = "assigned"
	StatusDonated       EquipmentStatus = "donated"
)

var EquipmentStatuses = []EquipmentStatus{
	StatusAvailable, StatusLoaned, StatusInMaintenance, StatusDamaged, StatusAssigned, StatusDonated,
}

func (s EquipmentStatus) Valid() bool {
	for _, v := range EquipmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ActiveKind names the ledger whose entry currently holds an equipment.
type ActiveKind string

const (
	ActiveNone        ActiveKind = ""
	ActiveLoan        ActiveKind = "loan"
	ActiveAssignment  ActiveKind = "assignment"
	ActiveMaintenance ActiveKind = "maintenance"
)

// Recommended equipment types; Type stays free text.
var EquipmentTypes = []string{
	"laptop", "desktop", "monitor", "projector", "printer", "tablet", "phone", "network", "other",
}

type Equipment struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string          `gorm:"size:60;uniqueIndex;not null" json:"code"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Serial      *string         `gorm:"size:120;uniqueIndex" json:"serial,omitempty"`
	Type        string          `gorm:"size:60;index;not null" json:"type"`
	Brand       string          `gorm:"size:120" json:"brand,omitempty"`
	Model       string          `gorm:"size:120" json:"model,omitempty"`
	Location    string          `gorm:"size:200" json:"location,omitempty"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Status      EquipmentStatus `gorm:"size:20;index;not null;default:'available'" json:"status"`

	// 当前持有该设备的台账记录（借出/分配/维修）
	ActiveKind  ActiveKind `gorm:"size:20;not null;default:''" json:"activeKind,omitempty"`
	ActiveRefID *string    `gorm:"type:uuid" json:"activeRefId,omitempty"`

	CreatedBy *string   `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Equipment) TableName() string { return EquipmentTable }

// HeldBy reports whether the given ledger entry is the one holding the equipment.
func (e *Equipment) HeldBy(kind ActiveKind, refID string) bool {
	return e.ActiveKind == kind && e.ActiveRefID != nil && *e.ActiveRefID == refID
}

func (e *Equipment) Idle() bool { return e.ActiveKind == ActiveNone }
