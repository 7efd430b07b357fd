package db

import (
	"context"
	"strings"
	"time"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/lifecycle"
	"ong_equipment_tool/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MaintenanceInput struct {
	EquipmentID   string           `json:"equipmentId" validate:"required"`
	ScheduledDate *time.Time       `json:"scheduledDate" validate:"required"`
	Type          string           `json:"type" validate:"required,oneof=preventive corrective predictive emergency"`
	Priority      string           `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Technician    string           `json:"technician" validate:"max=200"`
	Description   string           `json:"description"`
	Cost          *decimal.Decimal `json:"cost"`
}

type MaintenancePatch struct {
	ScheduledDate *time.Time       `json:"scheduledDate"`
	Type          *string          `json:"type" validate:"omitempty,oneof=preventive corrective predictive emergency"`
	Priority      *string          `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Technician    *string          `json:"technician" validate:"omitempty,max=200"`
	Description   *string          `json:"description"`
	Cost          *decimal.Decimal `json:"cost"`
}

type CompleteInput struct {
	PerformedDate *time.Time       `json:"performedDate" validate:"required"`
	Cost          *decimal.Decimal `json:"cost"`
	Description   *string          `json:"description"`
}

type MaintenanceQuery struct {
	Status      string
	EquipmentID string
	Page        int
	Size        int
}

func nonNegative(c *decimal.Decimal) error {
	if c != nil && c.IsNegative() {
		return apperr.BadRequest("cost must not be negative")
	}
	return nil
}

func nullCost(c *decimal.Decimal) decimal.NullDecimal {
	if c == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(c.Round(2))
}

// CreateMaintenance schedules work. The equipment status is not touched
// until the ticket starts.
func (r *Repo) CreateMaintenance(ctx context.Context, in MaintenanceInput, actor Actor) (_ *models.Maintenance, err error) {
	defer r.observe("maintenance", "create", time.Now(), &err)

	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Priority = strings.ToLower(strings.TrimSpace(in.Priority))
	if err := check(&in); err != nil {
		return nil, err
	}
	if err := nonNegative(in.Cost); err != nil {
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = string(models.PriorityMedium)
	}

	m := &models.Maintenance{
		ID:            uuid.NewString(),
		EquipmentID:   strings.TrimSpace(in.EquipmentID),
		ScheduledDate: in.ScheduledDate.UTC(),
		Type:          models.MaintenanceType(in.Type),
		Priority:      models.Priority(in.Priority),
		Status:        models.MaintenanceScheduled,
		Technician:    in.Technician,
		Description:   in.Description,
		Cost:          nullCost(in.Cost),
		CreatedBy:     actor.ref(),
	}
	err = r.inTx(ctx, "maintenance", func(tx *gorm.DB, _ *locker) error {
		var eq models.Equipment
		if err := tx.First(&eq, "id = ?", m.EquipmentID).Error; err != nil {
			return apperr.FromStore(err, "equipment")
		}
		if eq.Status == models.StatusDonated {
			return apperr.Conflict("equipment %s was donated", eq.Code)
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		m.Equipment = &eq
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("maintenance scheduled",
		zap.String("maintenance", m.ID),
		zap.String("equipment", m.EquipmentID),
		zap.Time("scheduled", m.ScheduledDate),
	)
	return m, nil
}

// UpdateMaintenance edits a ticket that has not started yet.
func (r *Repo) UpdateMaintenance(ctx context.Context, id string, p MaintenancePatch) (*models.Maintenance, error) {
	if err := check(&p); err != nil {
		return nil, err
	}
	if err := nonNegative(p.Cost); err != nil {
		return nil, err
	}

	set := map[string]any{}
	if p.ScheduledDate != nil {
		set["scheduled_date"] = p.ScheduledDate.UTC()
	}
	if p.Type != nil {
		set["type"] = strings.ToLower(*p.Type)
	}
	if p.Priority != nil {
		set["priority"] = strings.ToLower(*p.Priority)
	}
	if p.Technician != nil {
		set["technician"] = *p.Technician
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Cost != nil {
		set["cost"] = nullCost(p.Cost)
	}

	var m models.Maintenance
	err := r.inTx(ctx, "maintenance", func(tx *gorm.DB, lk *locker) error {
		if err := lk.row(tx, &m, "maintenance", id); err != nil {
			return err
		}
		if m.Status != models.MaintenanceScheduled {
			return apperr.Conflict("maintenance is %s", m.Status)
		}
		if len(set) > 0 {
			set["updated_at"] = r.now()
			if err := tx.Model(&models.Maintenance{}).Where("id = ?", id).Updates(set).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Equipment").First(&m, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// StartMaintenance puts idle equipment into maintenance.
func (r *Repo) StartMaintenance(ctx context.Context, id string) (_ *models.Maintenance, err error) {
	defer r.observe("maintenance", "start", time.Now(), &err)

	var m models.Maintenance
	err = r.inTx(ctx, "maintenance", func(tx *gorm.DB, lk *locker) error {
		if err := lk.row(tx, &m, "maintenance", id); err != nil {
			return err
		}
		if m.Status != models.MaintenanceScheduled {
			return apperr.Conflict("maintenance is %s", m.Status)
		}
		eq, err := lk.equipment(tx, m.EquipmentID)
		if err != nil {
			return err
		}
		if err := r.transition(tx, eq, lifecycle.Transition{Event: lifecycle.EventMaintenanceStart, RefID: m.ID}); err != nil {
			return err
		}
		m.Status = models.MaintenanceInProgress
		m.UpdatedAt = r.now()
		m.Equipment = eq
		return tx.Model(&models.Maintenance{}).Where("id = ?", m.ID).Updates(map[string]any{
			"status":     string(m.Status),
			"updated_at": m.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("maintenance started", zap.String("maintenance", m.ID), zap.String("equipment", m.EquipmentID))
	return &m, nil
}

// CompleteMaintenance closes a ticket. The equipment goes back to the pool
// if this ticket held it, or if it sat idle waiting for repair.
func (r *Repo) CompleteMaintenance(ctx context.Context, id string, in CompleteInput) (_ *models.Maintenance, err error) {
	defer r.observe("maintenance", "complete", time.Now(), &err)

	if err := check(&in); err != nil {
		return nil, err
	}
	if err := nonNegative(in.Cost); err != nil {
		return nil, err
	}

	var m models.Maintenance
	err = r.inTx(ctx, "maintenance", func(tx *gorm.DB, lk *locker) error {
		if err := lk.row(tx, &m, "maintenance", id); err != nil {
			return err
		}
		if !m.Open() {
			return apperr.Conflict("maintenance is %s", m.Status)
		}
		eq, err := lk.equipment(tx, m.EquipmentID)
		if err != nil {
			return err
		}
		if err := r.transition(tx, eq, lifecycle.Transition{Event: lifecycle.EventMaintenanceEnd, RefID: m.ID}); err != nil {
			return err
		}
		set := map[string]any{
			"status":         string(models.MaintenanceCompleted),
			"performed_date": in.PerformedDate.UTC(),
			"updated_at":     r.now(),
		}
		if in.Cost != nil {
			set["cost"] = nullCost(in.Cost)
		}
		if in.Description != nil {
			set["description"] = *in.Description
		}
		if err := tx.Model(&models.Maintenance{}).Where("id = ?", m.ID).Updates(set).Error; err != nil {
			return err
		}
		if err := tx.First(&m, "id = ?", m.ID).Error; err != nil {
			return err
		}
		m.Equipment = eq
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("maintenance completed", zap.String("maintenance", m.ID), zap.String("equipment", m.EquipmentID))
	return &m, nil
}

// CancelMaintenance drops a ticket. Equipment is only released when this
// ticket was the one holding it.
func (r *Repo) CancelMaintenance(ctx context.Context, id string) (_ *models.Maintenance, err error) {
	defer r.observe("maintenance", "cancel", time.Now(), &err)

	var m models.Maintenance
	err = r.inTx(ctx, "maintenance", func(tx *gorm.DB, lk *locker) error {
		if err := lk.row(tx, &m, "maintenance", id); err != nil {
			return err
		}
		if !m.Open() {
			return apperr.Conflict("maintenance is %s", m.Status)
		}
		eq, err := lk.equipment(tx, m.EquipmentID)
		if err != nil {
			return err
		}
		if err := r.transition(tx, eq, lifecycle.Transition{Event: lifecycle.EventMaintenanceAbort, RefID: m.ID}); err != nil {
			return err
		}
		m.Status = models.MaintenanceCancelled
		m.UpdatedAt = r.now()
		m.Equipment = eq
		return tx.Model(&models.Maintenance{}).Where("id = ?", m.ID).Updates(map[string]any{
			"status":     string(m.Status),
			"updated_at": m.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("maintenance cancelled", zap.String("maintenance", m.ID), zap.String("equipment", m.EquipmentID))
	return &m, nil
}

func (r *Repo) GetMaintenance(ctx context.Context, id string) (*models.Maintenance, error) {
	var m models.Maintenance
	if err := r.DB.WithContext(ctx).Preload("Equipment").First(&m, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "maintenance")
	}
	return &m, nil
}

func (r *Repo) ListMaintenance(ctx context.Context, q MaintenanceQuery) (*Page[models.Maintenance], error) {
	tx := r.DB.WithContext(ctx).Model(&models.Maintenance{})
	switch models.MaintenanceStatus(q.Status) {
	case "":
	case models.MaintenanceScheduled, models.MaintenanceInProgress, models.MaintenanceCompleted, models.MaintenanceCancelled:
		tx = tx.Where("status = ?", q.Status)
	default:
		return nil, apperr.BadRequest("unknown maintenance status %q", q.Status)
	}
	if q.EquipmentID != "" {
		tx = tx.Where("equipment_id = ?", q.EquipmentID)
	}
	p, err := paginate[models.Maintenance](tx, q.Page, q.Size, "scheduled_date DESC", "Equipment")
	return p, apperr.FromStore(err, "maintenance")
}
