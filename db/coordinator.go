package db

import (
	"ong_equipment_tool/apperr"
	"ong_equipment_tool/lifecycle"
	"ong_equipment_tool/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// transition is the only writer of equipment status and the active link.
// eq must have been loaded through locker.equipment in the same tx.
func (r *Repo) transition(tx *gorm.DB, eq *models.Equipment, t lifecycle.Transition) error {
	ch, err := lifecycle.Next(eq, t)
	if err != nil {
		r.Log.Debug("transition rejected",
			zap.String("equipment", eq.ID),
			zap.String("event", string(t.Event)),
			zap.String("status", string(eq.Status)),
			zap.String("activeKind", string(eq.ActiveKind)),
			zap.Error(err),
		)
		return err
	}
	if !ch.Apply {
		return nil
	}

	now := r.now()
	if err := tx.Model(&models.Equipment{}).
		Where("id = ?", eq.ID).
		Updates(map[string]any{
			"status":        string(ch.Status),
			"active_kind":   string(ch.ActiveKind),
			"active_ref_id": ch.ActiveRefID,
			"updated_at":    now,
		}).Error; err != nil {
		return apperr.FromStore(err, "equipment")
	}

	r.Log.Debug("equipment transition",
		zap.String("equipment", eq.ID),
		zap.String("event", string(t.Event)),
		zap.String("from", string(eq.Status)),
		zap.String("to", string(ch.Status)),
	)
	eq.Status = ch.Status
	eq.ActiveKind = ch.ActiveKind
	eq.ActiveRefID = ch.ActiveRefID
	eq.UpdatedAt = now
	return nil
}
