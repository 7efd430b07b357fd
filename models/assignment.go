package models

import (
	"strings"
	"time"
)

const AssignmentTable = "ong_assignments"

type AssignmentStatus string

const (
	AssignmentStatusAssigned AssignmentStatus = "assigned"
	AssignmentStatusReleased AssignmentStatus = "released"
	AssignmentStatusDonated  AssignmentStatus = "donated"
)

// ReleaseCondition is the state equipment comes back in.
type ReleaseCondition string

const (
	ConditionExcellent ReleaseCondition = "excellent"
	ConditionGood      ReleaseCondition = "good"
	ConditionFair      ReleaseCondition = "fair"
	ConditionDamaged   ReleaseCondition = "damaged"
)

var conditionAliases = map[string]ReleaseCondition{
	"excellent": ConditionExcellent,
	"excelente": ConditionExcellent,
	"good":      ConditionGood,
	"bueno":     ConditionGood,
	"fair":      ConditionFair,
	"regular":   ConditionFair,
	"damaged":   ConditionDamaged,
	"dañado":    ConditionDamaged,
	"danado":    ConditionDamaged,
}

// ParseCondition accepts the English names and the Spanish labels used by
// the front desk.
func ParseCondition(s string) (ReleaseCondition, bool) {
	c, ok := conditionAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

type Assignment struct {
	ID             string        `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID    string        `gorm:"type:uuid;index;not null" json:"equipmentId"`
	Equipment      *Equipment    `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
	CollaboratorID string        `gorm:"type:uuid;index;not null" json:"collaboratorId"`
	Collaborator   *Collaborator `gorm:"foreignKey:CollaboratorID" json:"collaborator,omitempty"`

	AssignmentDate   time.Time        `gorm:"not null" json:"assignmentDate"`
	ReleaseDate      *time.Time       `json:"releaseDate,omitempty"`
	Status           AssignmentStatus `gorm:"size:20;index;not null;default:'assigned'" json:"status"`
	ReleaseCondition ReleaseCondition `gorm:"size:20" json:"releaseCondition,omitempty"`
	Observations     string           `gorm:"type:text" json:"observations,omitempty"`

	CreatedBy *string   `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Assignment) TableName() string { return AssignmentTable }
