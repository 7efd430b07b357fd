package models

import "time"

const CollaboratorTable = "ong_collaborators"

// Collaborator is a registered person equipment can be assigned to.
type Collaborator struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	FullName string `gorm:"size:200;not null;index" json:"fullName"`
	Position string `gorm:"size:120" json:"position,omitempty"`
	Program  string `gorm:"size:120;index" json:"program,omitempty"`
	Email    string `gorm:"size:200" json:"email,omitempty"`
	Phone    string `gorm:"size:40" json:"phone,omitempty"`
	IsActive bool   `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Collaborator) TableName() string { return CollaboratorTable }
