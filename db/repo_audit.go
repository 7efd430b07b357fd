package db

import (
	"context"
	"fmt"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *Repo) recordOverride(tx *gorm.DB, equipmentID string, from, to models.EquipmentStatus, reason string, actor Actor) error {
	row := &models.StatusOverride{
		ID:            uuid.NewString(),
		EquipmentID:   equipmentID,
		FromStatus:    from,
		ToStatus:      to,
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		Reason:        reason,
	}
	if err := tx.Create(row).Error; err != nil {
		return fmt.Errorf("insert status override: %w", err)
	}
	return nil
}

func (r *Repo) ListOverrides(ctx context.Context, equipmentID string) ([]models.StatusOverride, error) {
	rows := []models.StatusOverride{}
	if err := r.DB.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, apperr.FromStore(err, "status override")
	}
	return rows, nil
}
