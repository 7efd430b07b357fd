// db/repo_loan.go
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

type LoanInput struct {
	EquipmentID     string     `json:"equipmentId" validate:"required"`
	BorrowerName    string     `json:"borrowerName" validate:"required,max=200"`
	BorrowerContact string     `json:"borrowerContact" validate:"max=200"`
	DueDate         *time.Time `json:"dueDate" validate:"required"`
	Notes           string     `json:"notes" validate:"max=500"`
}

type LoanQuery struct {
	Status      string
	EquipmentID string
	Q           string
	Overdue     bool
	Page        int
	Size        int
}

// CreateLoan 借出：锁住设备 → 校验状态 → 新建 loan → 设备置为 loaned
func (r *Repo) CreateLoan(ctx context.Context, in LoanInput, actor Actor) (_ *models.Loan, err error) {
	defer r.observe("loans", "create", time.Now(), &err)

	in.BorrowerName = strings.TrimSpace(in.BorrowerName)
	in.EquipmentID = strings.TrimSpace(in.EquipmentID)
	if err := check(&in); err != nil {
		return nil, err
	}

	loan := &models.Loan{
		ID:              uuid.NewString(),
		EquipmentID:     in.EquipmentID,
		BorrowerName:    in.BorrowerName,
		BorrowerContact: strings.TrimSpace(in.BorrowerContact),
		LoanDate:        r.now(),
		DueDate:         in.DueDate.UTC(),
		Status:          models.LoanStatusLoaned,
		TotalFine:       decimal.Zero,
		Notes:           in.Notes,
		CreatedBy:       actor.ref(),
	}
	err = r.inTx(ctx, "loan", func(tx *gorm.DB, lk *locker) error {
		eq, err := lk.equipment(tx, in.EquipmentID)
		if err != nil {
			return err
		}
		if err := r.transition(tx, eq, lifecycle.Transition{Event: lifecycle.EventLoan, RefID: loan.ID}); err != nil {
			return err
		}
		if err := tx.Create(loan).Error; err != nil {
			return err
		}
		loan.Equipment = eq
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("loan created",
		zap.String("loan", loan.ID),
		zap.String("equipment", loan.EquipmentID),
		zap.Time("due", loan.DueDate),
	)
	return loan, nil
}

// ReturnLoan 归还：幂等；已归还则原样返回，不写库。
// fine_per_day is read before the transaction so no lock is held across it.
func (r *Repo) ReturnLoan(ctx context.Context, loanID string, returnDate *time.Time, actor Actor) (_ *models.Loan, err error) {
	defer r.observe("loans", "return", time.Now(), &err)

	rate := r.finePerDay(ctx)

	var l models.Loan
	err = r.inTx(ctx, "loan", func(tx *gorm.DB, lk *locker) error {
		if err := tx.First(&l, "id = ?", loanID).Error; err != nil {
			return apperr.FromStore(err, "loan")
		}
		if l.Returned() {
			return loadLoanEquipment(tx, &l)
		}
		eq, err := lk.equipment(tx, l.EquipmentID)
		if err != nil {
			return err
		}
		// re-read under the equipment lock
		if err := lk.row(tx, &l, "loan", loanID); err != nil {
			return err
		}
		if l.Returned() {
			l.Equipment = eq
			return nil
		}

		ret := r.now()
		if returnDate != nil {
			ret = returnDate.UTC()
		}
		days := lifecycle.OverdueDays(l.DueDate, ret)
		fine := lifecycle.Fine(days, rate)

		if err := r.transition(tx, eq, lifecycle.Transition{Event: lifecycle.EventLoanReturn, RefID: l.ID}); err != nil {
			return err
		}
		now := r.now()
		if err := tx.Model(&models.Loan{}).Where("id = ?", l.ID).Updates(map[string]any{
			"status":       string(models.LoanStatusReturned),
			"return_date":  ret,
			"overdue_days": days,
			"total_fine":   fine,
			"returned_by":  actor.ref(),
			"updated_at":   now,
		}).Error; err != nil {
			return err
		}
		l.Status = models.LoanStatusReturned
		l.ReturnDate = &ret
		l.OverdueDays = days
		l.TotalFine = fine
		l.ReturnedBy = actor.ref()
		l.UpdatedAt = now
		l.Equipment = eq
		r.Log.Info("loan returned",
			zap.String("loan", l.ID),
			zap.String("equipment", l.EquipmentID),
			zap.Int("overdueDays", days),
			zap.String("fine", fine.StringFixed(2)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func loadLoanEquipment(tx *gorm.DB, l *models.Loan) error {
	var eq models.Equipment
	if err := tx.First(&eq, "id = ?", l.EquipmentID).Error; err != nil {
		return apperr.FromStore(err, "equipment")
	}
	l.Equipment = &eq
	return nil
}

func (r *Repo) GetLoan(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).Preload("Equipment").First(&l, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "loan")
	}
	return &l, nil
}

func (r *Repo) ListLoans(ctx context.Context, q LoanQuery) (*Page[models.Loan], error) {
	tx := r.DB.WithContext(ctx).Model(&models.Loan{})
	switch q.Status {
	case "":
	case string(models.LoanStatusLoaned), string(models.LoanStatusReturned):
		tx = tx.Where("status = ?", q.Status)
	default:
		return nil, apperr.BadRequest("unknown loan status %q", q.Status)
	}
	if q.EquipmentID != "" {
		tx = tx.Where("equipment_id = ?", q.EquipmentID)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(borrower_name) LIKE ?", like)
	}
	if q.Overdue {
		tx = tx.Where("status = ? AND due_date < ?", string(models.LoanStatusLoaned), r.now())
	}
	p, err := paginate[models.Loan](tx, q.Page, q.Size, "loan_date DESC", "Equipment")
	return p, apperr.FromStore(err, "loan")
}

func (r *Repo) finePerDay(ctx context.Context) decimal.Decimal {
	if r.Fines != nil {
		return r.Fines.FinePerDay(ctx)
	}
	rate, err := r.SettingDecimal(ctx, models.SettingFinePerDay)
	if err != nil {
		r.Log.Warn("fine_per_day unavailable, using 0", zap.Error(err))
		return decimal.Zero
	}
	return rate
}
