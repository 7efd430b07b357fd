package db

import (
	"context"
	"strings"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// settingRules validates values of known keys; unknown keys are free text.
var settingRules = map[string]func(string) error{
	models.SettingFinePerDay: func(v string) error {
		_, err := ParseRate(v)
		return err
	},
}

// ParseRate parses a non-negative decimal amount.
func ParseRate(v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, apperr.BadRequest("%q is not a decimal amount", v)
	}
	if d.IsNegative() {
		return decimal.Zero, apperr.BadRequest("amount must not be negative")
	}
	return d, nil
}

func (r *Repo) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperr.BadRequest("key is required")
	}
	var s models.Setting
	if err := r.DB.WithContext(ctx).Where(&models.Setting{Key: key}).First(&s).Error; err != nil {
		return nil, apperr.FromStore(err, "setting "+key)
	}
	return &s, nil
}

func (r *Repo) PutSetting(ctx context.Context, key, value string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return nil, apperr.BadRequest("key is required")
	}
	if rule, ok := settingRules[key]; ok {
		if err := rule(value); err != nil {
			return nil, err
		}
	}
	s := &models.Setting{Key: key, Value: value, UpdatedAt: r.now()}
	if err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(s).Error; err != nil {
		return nil, apperr.FromStore(err, "setting "+key)
	}
	return s, nil
}

// SettingDecimal reads a setting as a non-negative decimal.
func (r *Repo) SettingDecimal(ctx context.Context, key string) (decimal.Decimal, error) {
	s, err := r.GetSetting(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	return ParseRate(s.Value)
}
