package db

import (
	"context"
	"time"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/lifecycle"
	"ong_equipment_tool/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
)

const DefaultAttentionDays = 30

// psql builds portable SQL; gorm rebinds "?" for postgres.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func (r *Repo) rawScan(ctx context.Context, b sq.Sqlizer, dst any, what string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return apperr.Internal(err, "build %s query", what)
	}
	return apperr.FromStore(r.DB.WithContext(ctx).Raw(query, args...).Scan(dst).Error, what)
}

type reportEquipment struct {
	ID        string
	Code      string
	Name      string
	Type      string
	Status    string
	CreatedAt time.Time
}

type completedMaintenance struct {
	EquipmentID   string
	PerformedDate time.Time
}

type statusCount struct {
	Status string
	N      int64
}

type PredictiveRow struct {
	EquipmentID     string                 `json:"equipmentId"`
	Code            string                 `json:"code"`
	Name            string                 `json:"name"`
	Type            string                 `json:"type"`
	Status          models.EquipmentStatus `json:"status"`
	LastMaintenance *time.Time             `json:"lastMaintenance,omitempty"`
	DaysSince       int                    `json:"daysSince"`
	NeedsAttention  bool                   `json:"needsAttention"`
}

// PredictiveMaintenance reports, per equipment still in service, the days
// since its last completed maintenance (or since it was registered) and
// flags anything past the threshold.
func (r *Repo) PredictiveMaintenance(ctx context.Context, thresholdDays int) ([]PredictiveRow, error) {
	if thresholdDays <= 0 {
		thresholdDays = DefaultAttentionDays
	}

	var eqs []reportEquipment
	if err := r.rawScan(ctx, psql.
		Select("id", "code", "name", "type", "status", "created_at").
		From(models.EquipmentTable).
		Where(sq.NotEq{"status": string(models.StatusDonated)}).
		OrderBy("code"), &eqs, "equipment"); err != nil {
		return nil, err
	}

	var done []completedMaintenance
	if err := r.rawScan(ctx, psql.
		Select("equipment_id", "performed_date").
		From(models.MaintenanceTable).
		Where(sq.Eq{"status": string(models.MaintenanceCompleted)}).
		Where(sq.NotEq{"performed_date": nil}), &done, "maintenance"); err != nil {
		return nil, err
	}
	last := make(map[string]time.Time, len(done))
	for _, d := range done {
		if cur, ok := last[d.EquipmentID]; !ok || d.PerformedDate.After(cur) {
			last[d.EquipmentID] = d.PerformedDate
		}
	}

	now := r.now()
	out := make([]PredictiveRow, 0, len(eqs))
	for _, e := range eqs {
		row := PredictiveRow{
			EquipmentID: e.ID,
			Code:        e.Code,
			Name:        e.Name,
			Type:        e.Type,
			Status:      models.EquipmentStatus(e.Status),
		}
		since := e.CreatedAt
		if t, ok := last[e.ID]; ok {
			t := t
			row.LastMaintenance = &t
			since = t
		}
		if d := now.Sub(since); d > 0 {
			row.DaysSince = int(d / (24 * time.Hour))
		}
		row.NeedsAttention = row.DaysSince >= thresholdDays
		out = append(out, row)
	}
	return out, nil
}

type OverdueLoanRow struct {
	LoanID          string          `json:"loanId"`
	EquipmentID     string          `json:"equipmentId"`
	EquipmentCode   string          `json:"equipmentCode"`
	EquipmentName   string          `json:"equipmentName"`
	BorrowerName    string          `json:"borrowerName"`
	BorrowerContact string          `json:"borrowerContact,omitempty"`
	LoanDate        time.Time       `json:"loanDate"`
	DueDate         time.Time       `json:"dueDate"`
	OverdueDays     int             `json:"overdueDays" gorm:"-"`
	AccruedFine     decimal.Decimal `json:"accruedFine" gorm:"-"`
}

// OverdueLoans lists open loans past due with the fine accrued so far at
// the current rate.
func (r *Repo) OverdueLoans(ctx context.Context) ([]OverdueLoanRow, error) {
	rate := r.finePerDay(ctx)
	now := r.now()

	rows := []OverdueLoanRow{}
	if err := r.rawScan(ctx, psql.
		Select(
			"l.id AS loan_id", "l.equipment_id", "e.code AS equipment_code", "e.name AS equipment_name",
			"l.borrower_name", "l.borrower_contact", "l.loan_date", "l.due_date",
		).
		From(models.LoanTable+" l").
		Join(models.EquipmentTable+" e ON e.id = l.equipment_id").
		Where(sq.Eq{"l.status": string(models.LoanStatusLoaned)}).
		Where(sq.Lt{"l.due_date": now}).
		OrderBy("l.due_date ASC"), &rows, "loan"); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].OverdueDays = lifecycle.OverdueDays(rows[i].DueDate, now)
		rows[i].AccruedFine = lifecycle.Fine(rows[i].OverdueDays, rate)
	}
	return rows, nil
}

type Summary struct {
	ByStatus              map[models.EquipmentStatus]int64 `json:"byStatus"`
	TotalEquipment        int64                            `json:"totalEquipment"`
	OpenLoans             int64                            `json:"openLoans"`
	OverdueLoans          int64                            `json:"overdueLoans"`
	ActiveAssignments     int64                            `json:"activeAssignments"`
	MaintenanceInProgress int64                            `json:"maintenanceInProgress"`
	MaintenanceScheduled  int64                            `json:"maintenanceScheduled"`
}

func (r *Repo) StatusSummary(ctx context.Context) (*Summary, error) {
	var groups []statusCount
	if err := r.rawScan(ctx, psql.
		Select("status", "COUNT(*) AS n").
		From(models.EquipmentTable).
		GroupBy("status"), &groups, "equipment"); err != nil {
		return nil, err
	}

	s := &Summary{ByStatus: map[models.EquipmentStatus]int64{}}
	for _, st := range models.EquipmentStatuses {
		s.ByStatus[st] = 0
	}
	for _, g := range groups {
		s.ByStatus[models.EquipmentStatus(g.Status)] = g.N
		s.TotalEquipment += g.N
	}

	counts := []struct {
		dst   *int64
		table string
		where sq.Sqlizer
	}{
		{&s.OpenLoans, models.LoanTable, sq.Eq{"status": string(models.LoanStatusLoaned)}},
		{&s.OverdueLoans, models.LoanTable, sq.And{sq.Eq{"status": string(models.LoanStatusLoaned)}, sq.Lt{"due_date": r.now()}}},
		{&s.ActiveAssignments, models.AssignmentTable, sq.Eq{"status": string(models.AssignmentStatusAssigned)}},
		{&s.MaintenanceInProgress, models.MaintenanceTable, sq.Eq{"status": string(models.MaintenanceInProgress)}},
		{&s.MaintenanceScheduled, models.MaintenanceTable, sq.Eq{"status": string(models.MaintenanceScheduled)}},
	}
	for _, c := range counts {
		if err := r.rawScan(ctx, psql.Select("COUNT(*)").From(c.table).Where(c.where), c.dst, c.table); err != nil {
			return nil, err
		}
	}
	return s, nil
}
