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

type EquipmentInput struct {
	Code        string  `json:"code" validate:"required,max=60"`
	Name        string  `json:"name" validate:"required,max=200"`
	Type        string  `json:"type" validate:"required,max=60"`
	Serial      *string `json:"serial" validate:"omitempty,max=120"`
	Brand       string  `json:"brand" validate:"max=120"`
	Model       string  `json:"model" validate:"max=120"`
	Location    string  `json:"location" validate:"max=200"`
	Description string  `json:"description"`
}

func (in *EquipmentInput) normalize() {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Serial = blankToNil(in.Serial)
}

// EquipmentPatch carries the editable fields. Status is accepted only so
// that an attempt to set it can be rejected.
type EquipmentPatch struct {
	Code        *string `json:"code" validate:"omitempty,min=1,max=60"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Type        *string `json:"type" validate:"omitempty,min=1,max=60"`
	Serial      *string `json:"serial" validate:"omitempty,max=120"`
	Brand       *string `json:"brand" validate:"omitempty,max=120"`
	Model       *string `json:"model" validate:"omitempty,max=120"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (p *EquipmentPatch) normalize() error {
	trim := func(v *string, lower bool) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		if lower {
			t = strings.ToLower(t)
		}
		return &t
	}
	p.Code = trim(p.Code, false)
	p.Name = trim(p.Name, false)
	p.Type = trim(p.Type, true)
	fields := []struct {
		name string
		v    *string
	}{{"code", p.Code}, {"name", p.Name}, {"type", p.Type}}
	for _, f := range fields {
		if f.v != nil && *f.v == "" {
			return apperr.BadRequest("%s cannot be blank", f.name)
		}
	}
	return nil
}

type EquipmentQuery struct {
	Status string
	Type   string
	Q      string
	Page   int
	Size   int
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func (r *Repo) CreateEquipment(ctx context.Context, in EquipmentInput, actor Actor) (*models.Equipment, error) {
	in.normalize()
	if err := check(&in); err != nil {
		return nil, err
	}

	eq := &models.Equipment{
		ID:          uuid.NewString(),
		Code:        in.Code,
		Name:        in.Name,
		Serial:      in.Serial,
		Type:        in.Type,
		Brand:       in.Brand,
		Model:       in.Model,
		Location:    in.Location,
		Description: in.Description,
		Status:      models.StatusAvailable,
		CreatedBy:   actor.ref(),
	}
	err := r.inTx(ctx, "equipment", func(tx *gorm.DB, _ *locker) error {
		if err := r.ensureUniqueEquipment(tx, "", &in.Code, in.Serial); err != nil {
			return err
		}
		return tx.Create(eq).Error
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("equipment created", zap.String("equipment", eq.ID), zap.String("code", eq.Code))
	return eq, nil
}

func (r *Repo) ensureUniqueEquipment(tx *gorm.DB, selfID string, code, serial *string) error {
	if code != nil {
		var n int64
		q := tx.Model(&models.Equipment{}).Where("code = ?", *code)
		if selfID != "" {
			q = q.Where("id <> ?", selfID)
		}
		if err := q.Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("equipment code %s already exists", *code)
		}
	}
	if serial != nil {
		var n int64
		q := tx.Model(&models.Equipment{}).Where("serial = ?", *serial)
		if selfID != "" {
			q = q.Where("id <> ?", selfID)
		}
		if err := q.Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("serial %s already exists", *serial)
		}
	}
	return nil
}

func (r *Repo) GetEquipment(ctx context.Context, id string) (*models.Equipment, error) {
	var eq models.Equipment
	if err := r.DB.WithContext(ctx).First(&eq, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "equipment")
	}
	return &eq, nil
}

func (r *Repo) ListEquipment(ctx context.Context, q EquipmentQuery) (*Page[models.Equipment], error) {
	tx := r.DB.WithContext(ctx).Model(&models.Equipment{})
	if q.Status != "" {
		if !models.EquipmentStatus(q.Status).Valid() {
			return nil, apperr.BadRequest("unknown status %q", q.Status)
		}
		tx = tx.Where("status = ?", q.Status)
	}
	if t := strings.TrimSpace(q.Type); t != "" {
		tx = tx.Where("type = ?", strings.ToLower(t))
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ? OR LOWER(serial) LIKE ?", like, like, like)
	}
	p, err := paginate[models.Equipment](tx, q.Page, q.Size, "code ASC")
	return p, apperr.FromStore(err, "equipment")
}

func (r *Repo) UpdateEquipment(ctx context.Context, id string, p EquipmentPatch) (*models.Equipment, error) {
	if p.Status != nil {
		return nil, apperr.BadRequest("status is managed by loans, assignments and maintenance")
	}
	if err := p.normalize(); err != nil {
		return nil, err
	}
	if err := check(&p); err != nil {
		return nil, err
	}

	set := map[string]any{}
	if p.Code != nil {
		set["code"] = *p.Code
	}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Type != nil {
		set["type"] = *p.Type
	}
	if p.Serial != nil {
		p.Serial = blankToNil(p.Serial)
		set["serial"] = p.Serial
	}
	if p.Brand != nil {
		set["brand"] = *p.Brand
	}
	if p.Model != nil {
		set["model"] = *p.Model
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}

	var eq models.Equipment
	err := r.inTx(ctx, "equipment", func(tx *gorm.DB, _ *locker) error {
		if err := tx.First(&eq, "id = ?", id).Error; err != nil {
			return apperr.FromStore(err, "equipment")
		}
		if len(set) == 0 {
			return nil
		}
		if err := r.ensureUniqueEquipment(tx, id, p.Code, p.Serial); err != nil {
			return err
		}
		set["updated_at"] = r.now()
		if err := tx.Model(&models.Equipment{}).Where("id = ?", id).Updates(set).Error; err != nil {
			return err
		}
		return tx.First(&eq, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

// DeleteEquipment removes equipment that no ledger entry has ever referenced.
func (r *Repo) DeleteEquipment(ctx context.Context, id string) error {
	err := r.inTx(ctx, "equipment", func(tx *gorm.DB, lk *locker) error {
		eq, err := lk.equipment(tx, id)
		if err != nil {
			return err
		}
		for _, m := range []any{&models.Loan{}, &models.Assignment{}, &models.Maintenance{}} {
			var n int64
			if err := tx.Model(m).Where("equipment_id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return apperr.Conflict("equipment %s has history and cannot be deleted", eq.Code)
			}
		}
		return tx.Delete(&models.Equipment{}, "id = ?", id).Error
	})
	if err == nil {
		r.Log.Info("equipment deleted", zap.String("equipment", id))
	}
	return err
}

type OverrideInput struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"required,max=500"`
}

// OverrideStatus is the administrative correction path. It only moves idle
// equipment between available, damaged and in_maintenance, and writes an
// audit row in the same transaction.
func (r *Repo) OverrideStatus(ctx context.Context, id string, in OverrideInput, actor Actor) (_ *models.Equipment, err error) {
	defer r.observe("equipment", "override", time.Now(), &err)

	in.Reason = strings.TrimSpace(in.Reason)
	if err := check(&in); err != nil {
		return nil, err
	}
	target := models.EquipmentStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if !target.Valid() {
		return nil, apperr.BadRequest("unknown status %q", in.Status)
	}

	var eq *models.Equipment
	err = r.inTx(ctx, "equipment", func(tx *gorm.DB, lk *locker) error {
		var err error
		if eq, err = lk.equipment(tx, id); err != nil {
			return err
		}
		from := eq.Status
		if err := r.transition(tx, eq, lifecycle.Transition{Event: lifecycle.EventOverride, Target: target}); err != nil {
			return err
		}
		return r.recordOverride(tx, eq.ID, from, target, in.Reason, actor)
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("equipment status overridden",
		zap.String("equipment", id),
		zap.String("to", string(target)),
		zap.String("actor", actor.Username),
	)
	return eq, nil
}

// History is everything that ever happened to one equipment, newest first.
type History struct {
	Equipment   *models.Equipment       `json:"equipment"`
	Loans       []models.Loan           `json:"loans"`
	Assignments []models.Assignment     `json:"assignments"`
	Maintenance []models.Maintenance    `json:"maintenance"`
	Overrides   []models.StatusOverride `json:"overrides"`
}

func (r *Repo) EquipmentHistory(ctx context.Context, id string) (*History, error) {
	eq, err := r.GetEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	h := &History{
		Equipment:   eq,
		Loans:       []models.Loan{},
		Assignments: []models.Assignment{},
		Maintenance: []models.Maintenance{},
	}
	db := r.DB.WithContext(ctx)
	if err := db.Where("equipment_id = ?", id).Order("loan_date DESC").Find(&h.Loans).Error; err != nil {
		return nil, apperr.FromStore(err, "loan")
	}
	if err := db.Preload("Collaborator").Where("equipment_id = ?", id).Order("assignment_date DESC").Find(&h.Assignments).Error; err != nil {
		return nil, apperr.FromStore(err, "assignment")
	}
	if err := db.Where("equipment_id = ?", id).Order("scheduled_date DESC").Find(&h.Maintenance).Error; err != nil {
		return nil, apperr.FromStore(err, "maintenance")
	}
	if h.Overrides, err = r.ListOverrides(ctx, id); err != nil {
		return nil, err
	}
	return h, nil
}
