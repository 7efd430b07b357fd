package models

import "time"

// Setting keys.
const (
	SettingFinePerDay = "fine_per_day"
)

type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Setting) TableName() string { return "ong_settings" }
