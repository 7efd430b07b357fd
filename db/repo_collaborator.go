package db

import (
	"context"
	"strings"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CollaboratorInput struct {
	FullName string `json:"fullName" validate:"required,max=200"`
	Position string `json:"position" validate:"max=120"`
	Program  string `json:"program" validate:"max=120"`
	Email    string `json:"email" validate:"omitempty,email,max=200"`
	Phone    string `json:"phone" validate:"max=40"`
}

type CollaboratorPatch struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=200"`
	Position *string `json:"position" validate:"omitempty,max=120"`
	Program  *string `json:"program" validate:"omitempty,max=120"`
	Email    *string `json:"email" validate:"omitempty,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=40"`
}

type CollaboratorQuery struct {
	Q       string
	Program string
	Active  *bool
	Page    int
	Size    int
}

func (r *Repo) CreateCollaborator(ctx context.Context, in CollaboratorInput) (*models.Collaborator, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	if err := check(&in); err != nil {
		return nil, err
	}
	c := &models.Collaborator{
		ID:       uuid.NewString(),
		FullName: in.FullName,
		Position: in.Position,
		Program:  in.Program,
		Email:    in.Email,
		Phone:    in.Phone,
		IsActive: true,
	}
	if err := r.DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, apperr.FromStore(err, "collaborator")
	}
	r.Log.Info("collaborator created", zap.String("collaborator", c.ID))
	return c, nil
}

func (r *Repo) GetCollaborator(ctx context.Context, id string) (*models.Collaborator, error) {
	var c models.Collaborator
	if err := r.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "collaborator")
	}
	return &c, nil
}

func (r *Repo) ListCollaborators(ctx context.Context, q CollaboratorQuery) (*Page[models.Collaborator], error) {
	tx := r.DB.WithContext(ctx).Model(&models.Collaborator{})
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if q.Program != "" {
		tx = tx.Where("program = ?", q.Program)
	}
	if q.Active != nil {
		tx = tx.Where("is_active = ?", *q.Active)
	}
	p, err := paginate[models.Collaborator](tx, q.Page, q.Size, "full_name ASC")
	return p, apperr.FromStore(err, "collaborator")
}

func (r *Repo) UpdateCollaborator(ctx context.Context, id string, p CollaboratorPatch) (*models.Collaborator, error) {
	if err := check(&p); err != nil {
		return nil, err
	}
	set := map[string]any{}
	if p.FullName != nil {
		set["full_name"] = strings.TrimSpace(*p.FullName)
	}
	if p.Position != nil {
		set["position"] = *p.Position
	}
	if p.Program != nil {
		set["program"] = *p.Program
	}
	if p.Email != nil {
		e := strings.TrimSpace(*p.Email)
		if e != "" {
			if err := validate.Var(e, "email"); err != nil {
				return nil, apperr.BadRequest("email is invalid")
			}
		}
		set["email"] = e
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	return r.updateCollaborator(ctx, id, set)
}

// SetCollaboratorActive toggles is_active. Deactivation keeps history and
// only blocks future assignments.
func (r *Repo) SetCollaboratorActive(ctx context.Context, id string, active bool) (*models.Collaborator, error) {
	c, err := r.updateCollaborator(ctx, id, map[string]any{"is_active": active})
	if err == nil {
		r.Log.Info("collaborator active flag changed", zap.String("collaborator", id), zap.Bool("active", active))
	}
	return c, err
}

func (r *Repo) updateCollaborator(ctx context.Context, id string, set map[string]any) (*models.Collaborator, error) {
	db := r.DB.WithContext(ctx)
	if len(set) > 0 {
		set["updated_at"] = r.now()
		res := db.Model(&models.Collaborator{}).Where("id = ?", id).Updates(set)
		if res.Error != nil {
			return nil, apperr.FromStore(res.Error, "collaborator")
		}
	}
	return r.GetCollaborator(ctx, id)
}
