package db

import (
	"context"
	"strings"
	"time"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/lifecycle"
	"ong_equipment_tool/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AssignmentInput struct {
	EquipmentID    string     `json:"equipmentId" validate:"required"`
	CollaboratorID string     `json:"collaboratorId" validate:"required"`
	AssignmentDate *time.Time `json:"assignmentDate"`
	Observations   string     `json:"observations"`
}

type AssignmentPatch struct {
	EquipmentID    *string    `json:"equipmentId" validate:"omitempty,min=1"`
	CollaboratorID *string    `json:"collaboratorId" validate:"omitempty,min=1"`
	AssignmentDate *time.Time `json:"assignmentDate"`
	Observations   *string    `json:"observations"`
}

type ReleaseInput struct {
	ReleaseDate  *time.Time `json:"releaseDate"`
	Condition    string     `json:"condition" validate:"required"`
	Observations *string    `json:"observations"`
}

type AssignmentQuery struct {
	Status         string
	EquipmentID    string
	CollaboratorID string
	Page           int
	Size           int
}

func (r *Repo) CreateAssignment(ctx context.Context, in AssignmentInput, actor Actor) (_ *models.Assignment, err error) {
	defer r.observe("assignments", "create", time.Now(), &err)

	in.EquipmentID = strings.TrimSpace(in.EquipmentID)
	in.CollaboratorID = strings.TrimSpace(in.CollaboratorID)
	if err := check(&in); err != nil {
		return nil, err
	}

	a := &models.Assignment{
		ID:             uuid.NewString(),
		EquipmentID:    in.EquipmentID,
		CollaboratorID: in.CollaboratorID,
		AssignmentDate: r.now(),
		Status:         models.AssignmentStatusAssigned,
		Observations:   in.Observations,
		CreatedBy:      actor.ref(),
	}
	if in.AssignmentDate != nil {
		a.AssignmentDate = in.AssignmentDate.UTC()
	}

	err = r.inTx(ctx, "assignment", func(tx *gorm.DB, lk *locker) error {
		eq, err := lk.equipment(tx, in.EquipmentID)
		if err != nil {
			return err
		}
		col, err := activeCollaborator(tx, in.CollaboratorID)
		if err != nil {
			return err
		}
		if err := r.transition(tx, eq, lifecycle.Transition{Event: lifecycle.EventAssign, RefID: a.ID}); err != nil {
			return err
		}
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		a.Equipment, a.Collaborator = eq, col
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("assignment created",
		zap.String("assignment", a.ID),
		zap.String("equipment", a.EquipmentID),
		zap.String("collaborator", a.CollaboratorID),
	)
	return a, nil
}

func activeCollaborator(tx *gorm.DB, id string) (*models.Collaborator, error) {
	var c models.Collaborator
	if err := tx.First(&c, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "collaborator")
	}
	if !c.IsActive {
		return nil, apperr.Conflict("collaborator %s is inactive", c.FullName)
	}
	return &c, nil
}

// UpdateAssignment edits an assignment. Moving it to other equipment frees
// the old equipment and claims the new one in the same transaction.
func (r *Repo) UpdateAssignment(ctx context.Context, id string, p AssignmentPatch) (_ *models.Assignment, err error) {
	defer r.observe("assignments", "update", time.Now(), &err)

	if err := check(&p); err != nil {
		return nil, err
	}

	var a models.Assignment
	err = r.inTx(ctx, "assignment", func(tx *gorm.DB, lk *locker) error {
		if err := lk.row(tx, &a, "assignment", id); err != nil {
			return err
		}
		set := map[string]any{}

		if p.EquipmentID != nil && strings.TrimSpace(*p.EquipmentID) != a.EquipmentID {
			newID := strings.TrimSpace(*p.EquipmentID)
			if a.Status != models.AssignmentStatusAssigned {
				return apperr.Conflict("assignment is %s", a.Status)
			}
			eqs, err := lk.equipments(tx, a.EquipmentID, newID)
			if err != nil {
				return err
			}
			if err := r.transition(tx, eqs[a.EquipmentID], lifecycle.Transition{Event: lifecycle.EventReassignOut, RefID: a.ID}); err != nil {
				return err
			}
			if err := r.transition(tx, eqs[newID], lifecycle.Transition{Event: lifecycle.EventAssign, RefID: a.ID}); err != nil {
				return err
			}
			set["equipment_id"] = newID
			r.Log.Info("assignment moved",
				zap.String("assignment", a.ID),
				zap.String("from", a.EquipmentID),
				zap.String("to", newID),
			)
		}
		if p.CollaboratorID != nil && strings.TrimSpace(*p.CollaboratorID) != a.CollaboratorID {
			if a.Status != models.AssignmentStatusAssigned {
				return apperr.Conflict("assignment is %s", a.Status)
			}
			col, err := activeCollaborator(tx, strings.TrimSpace(*p.CollaboratorID))
			if err != nil {
				return err
			}
			set["collaborator_id"] = col.ID
		}
		if p.AssignmentDate != nil {
			set["assignment_date"] = p.AssignmentDate.UTC()
		}
		if p.Observations != nil {
			set["observations"] = *p.Observations
		}
		if len(set) > 0 {
			set["updated_at"] = r.now()
			if err := tx.Model(&models.Assignment{}).Where("id = ?", a.ID).Updates(set).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Equipment").Preload("Collaborator").First(&a, "id = ?", a.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ReleaseAssignment ends an assignment. Equipment returned in fair or
// damaged condition goes to maintenance instead of the available pool.
func (r *Repo) ReleaseAssignment(ctx context.Context, id string, in ReleaseInput) (_ *models.Assignment, err error) {
	defer r.observe("assignments", "release", time.Now(), &err)

	if err := check(&in); err != nil {
		return nil, err
	}
	cond, ok := models.ParseCondition(in.Condition)
	if !ok {
		return nil, apperr.BadRequest("condition must be one of: excellent, good, fair, damaged")
	}

	var a models.Assignment
	err = r.inTx(ctx, "assignment", func(tx *gorm.DB, lk *locker) error {
		if err := lk.row(tx, &a, "assignment", id); err != nil {
			return err
		}
		if a.Status != models.AssignmentStatusAssigned {
			return apperr.Conflict("assignment is %s", a.Status)
		}
		eq, err := lk.equipment(tx, a.EquipmentID)
		if err != nil {
			return err
		}
		if err := r.transition(tx, eq, lifecycle.Transition{Event: lifecycle.EventRelease, RefID: a.ID, Condition: cond}); err != nil {
			return err
		}

		rel := r.now()
		if in.ReleaseDate != nil {
			rel = in.ReleaseDate.UTC()
		}
		set := map[string]any{
			"status":            string(models.AssignmentStatusReleased),
			"release_date":      rel,
			"release_condition": string(cond),
			"updated_at":        r.now(),
		}
		if in.Observations != nil {
			set["observations"] = *in.Observations
		}
		if err := tx.Model(&models.Assignment{}).Where("id = ?", a.ID).Updates(set).Error; err != nil {
			return err
		}
		if err := tx.First(&a, "id = ?", a.ID).Error; err != nil {
			return err
		}
		a.Equipment = eq
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("assignment released",
		zap.String("assignment", a.ID),
		zap.String("condition", string(cond)),
		zap.String("equipmentStatus", string(a.Equipment.Status)),
	)
	return &a, nil
}

// DonateAssignment hands the equipment over for good. There is no way back.
func (r *Repo) DonateAssignment(ctx context.Context, id string) (_ *models.Assignment, err error) {
	defer r.observe("assignments", "donate", time.Now(), &err)

	var a models.Assignment
	err = r.inTx(ctx, "assignment", func(tx *gorm.DB, lk *locker) error {
		if err := lk.row(tx, &a, "assignment", id); err != nil {
			return err
		}
		if a.Status != models.AssignmentStatusAssigned {
			return apperr.Conflict("assignment is %s", a.Status)
		}
		eq, err := lk.equipment(tx, a.EquipmentID)
		if err != nil {
			return err
		}
		if err := r.transition(tx, eq, lifecycle.Transition{Event: lifecycle.EventDonate, RefID: a.ID}); err != nil {
			return err
		}
		now := r.now()
		if err := tx.Model(&models.Assignment{}).Where("id = ?", a.ID).Updates(map[string]any{
			"status":       string(models.AssignmentStatusDonated),
			"release_date": now,
			"updated_at":   now,
		}).Error; err != nil {
			return err
		}
		if err := tx.First(&a, "id = ?", a.ID).Error; err != nil {
			return err
		}
		a.Equipment = eq
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("equipment donated", zap.String("assignment", a.ID), zap.String("equipment", a.EquipmentID))
	return &a, nil
}

func (r *Repo) GetAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	var a models.Assignment
	if err := r.DB.WithContext(ctx).
		Preload("Equipment").
		Preload("Collaborator").
		First(&a, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "assignment")
	}
	return &a, nil
}

func (r *Repo) ListAssignments(ctx context.Context, q AssignmentQuery) (*Page[models.Assignment], error) {
	tx := r.DB.WithContext(ctx).Model(&models.Assignment{})
	switch models.AssignmentStatus(q.Status) {
	case "":
	case models.AssignmentStatusAssigned, models.AssignmentStatusReleased, models.AssignmentStatusDonated:
		tx = tx.Where("status = ?", q.Status)
	default:
		return nil, apperr.BadRequest("unknown assignment status %q", q.Status)
	}
	if q.EquipmentID != "" {
		tx = tx.Where("equipment_id = ?", q.EquipmentID)
	}
	if q.CollaboratorID != "" {
		tx = tx.Where("collaborator_id = ?", q.CollaboratorID)
	}
	p, err := paginate[models.Assignment](tx, q.Page, q.Size, "assignment_date DESC", "Equipment", "Collaborator")
	return p, apperr.FromStore(err, "assignment")
}
