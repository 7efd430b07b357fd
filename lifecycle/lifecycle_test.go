package lifecycle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/models"
)

func equipment(status models.EquipmentStatus, kind models.ActiveKind, ref string) *models.Equipment {
	eq := &models.Equipment{ID: "eq-1", Code: "LAP-001", Status: status, ActiveKind: kind}
	if ref != "" {
		eq.ActiveRefID = &ref
	}
	return eq
}

func TestNext(t *testing.T) {
	tests := []struct {
		name       string
		eq         *models.Equipment
		tr         Transition
		wantErr    error
		wantApply  bool
		wantStatus models.EquipmentStatus
		wantKind   models.ActiveKind
	}{
		{
			name:       "loan available",
			eq:         equipment(models.StatusAvailable, "", ""),
			tr:         Transition{Event: EventLoan, RefID: "l1"},
			wantApply:  true,
			wantStatus: models.StatusLoaned,
			wantKind:   models.ActiveLoan,
		},
		{
			name:    "loan already loaned",
			eq:      equipment(models.StatusLoaned, models.ActiveLoan, "l0"),
			tr:      Transition{Event: EventLoan, RefID: "l1"},
			wantErr: apperr.ErrConflict,
		},
		{
			name:    "loan damaged",
			eq:      equipment(models.StatusDamaged, "", ""),
			tr:      Transition{Event: EventLoan, RefID: "l1"},
			wantErr: apperr.ErrConflict,
		},
		{
			name:       "return own loan",
			eq:         equipment(models.StatusLoaned, models.ActiveLoan, "l1"),
			tr:         Transition{Event: EventLoanReturn, RefID: "l1"},
			wantApply:  true,
			wantStatus: models.StatusAvailable,
		},
		{
			name:    "return foreign loan",
			eq:      equipment(models.StatusLoaned, models.ActiveLoan, "l0"),
			tr:      Transition{Event: EventLoanReturn, RefID: "l1"},
			wantErr: apperr.ErrConflict,
		},
		{
			name:       "assign available",
			eq:         equipment(models.StatusAvailable, "", ""),
			tr:         Transition{Event: EventAssign, RefID: "a1"},
			wantApply:  true,
			wantStatus: models.StatusAssigned,
			wantKind:   models.ActiveAssignment,
		},
		{
			name:       "release damaged goes to maintenance",
			eq:         equipment(models.StatusAssigned, models.ActiveAssignment, "a1"),
			tr:         Transition{Event: EventRelease, RefID: "a1", Condition: models.ConditionDamaged},
			wantApply:  true,
			wantStatus: models.StatusInMaintenance,
		},
		{
			name:       "release fair goes to maintenance",
			eq:         equipment(models.StatusAssigned, models.ActiveAssignment, "a1"),
			tr:         Transition{Event: EventRelease, RefID: "a1", Condition: models.ConditionFair},
			wantApply:  true,
			wantStatus: models.StatusInMaintenance,
		},
		{
			name:       "release good",
			eq:         equipment(models.StatusAssigned, models.ActiveAssignment, "a1"),
			tr:         Transition{Event: EventRelease, RefID: "a1", Condition: models.ConditionGood},
			wantApply:  true,
			wantStatus: models.StatusAvailable,
		},
		{
			name:       "donate",
			eq:         equipment(models.StatusAssigned, models.ActiveAssignment, "a1"),
			tr:         Transition{Event: EventDonate, RefID: "a1"},
			wantApply:  true,
			wantStatus: models.StatusDonated,
		},
		{
			name:    "donated is terminal",
			eq:      equipment(models.StatusDonated, "", ""),
			tr:      Transition{Event: EventMaintenanceStart, RefID: "m1"},
			wantErr: apperr.ErrConflict,
		},
		{
			name:    "donated cannot be overridden",
			eq:      equipment(models.StatusDonated, "", ""),
			tr:      Transition{Event: EventOverride, Target: models.StatusAvailable},
			wantErr: apperr.ErrConflict,
		},
		{
			name:    "donated cannot be loaned",
			eq:      equipment(models.StatusDonated, "", ""),
			tr:      Transition{Event: EventLoan, RefID: "l1"},
			wantErr: apperr.ErrConflict,
		},
		{
			name: "maintenance end on donated leaves equipment alone",
			eq:   equipment(models.StatusDonated, "", ""),
			tr:   Transition{Event: EventMaintenanceEnd, RefID: "m1"},
		},
		{
			name: "maintenance cancel on donated leaves equipment alone",
			eq:   equipment(models.StatusDonated, "", ""),
			tr:   Transition{Event: EventMaintenanceAbort, RefID: "m1"},
		},
		{
			name:       "start maintenance on damaged",
			eq:         equipment(models.StatusDamaged, "", ""),
			tr:         Transition{Event: EventMaintenanceStart, RefID: "m1"},
			wantApply:  true,
			wantStatus: models.StatusInMaintenance,
			wantKind:   models.ActiveMaintenance,
		},
		{
			name:    "start maintenance while loaned",
			eq:      equipment(models.StatusLoaned, models.ActiveLoan, "l1"),
			tr:      Transition{Event: EventMaintenanceStart, RefID: "m1"},
			wantErr: apperr.ErrConflict,
		},
		{
			name:       "complete own maintenance",
			eq:         equipment(models.StatusInMaintenance, models.ActiveMaintenance, "m1"),
			tr:         Transition{Event: EventMaintenanceEnd, RefID: "m1"},
			wantApply:  true,
			wantStatus: models.StatusAvailable,
		},
		{
			name:       "complete scheduled maintenance on idle damaged equipment",
			eq:         equipment(models.StatusDamaged, "", ""),
			tr:         Transition{Event: EventMaintenanceEnd, RefID: "m1"},
			wantApply:  true,
			wantStatus: models.StatusAvailable,
		},
		{
			name:      "complete leaves loaned equipment alone",
			eq:        equipment(models.StatusLoaned, models.ActiveLoan, "l1"),
			tr:        Transition{Event: EventMaintenanceEnd, RefID: "m1"},
			wantApply: false,
		},
		{
			name:      "cancel scheduled leaves equipment alone",
			eq:        equipment(models.StatusInMaintenance, "", ""),
			tr:        Transition{Event: EventMaintenanceAbort, RefID: "m1"},
			wantApply: false,
		},
		{
			name:       "override damaged to available",
			eq:         equipment(models.StatusDamaged, "", ""),
			tr:         Transition{Event: EventOverride, Target: models.StatusAvailable},
			wantApply:  true,
			wantStatus: models.StatusAvailable,
		},
		{
			name:    "override while assigned",
			eq:      equipment(models.StatusAssigned, models.ActiveAssignment, "a1"),
			tr:      Transition{Event: EventOverride, Target: models.StatusAvailable},
			wantErr: apperr.ErrConflict,
		},
		{
			name:    "override to loaned",
			eq:      equipment(models.StatusAvailable, "", ""),
			tr:      Transition{Event: EventOverride, Target: models.StatusLoaned},
			wantErr: apperr.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := Next(tt.eq, tt.tr)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantApply, ch.Apply)
			if !tt.wantApply {
				return
			}
			assert.Equal(t, tt.wantStatus, ch.Status)
			assert.Equal(t, tt.wantKind, ch.ActiveKind)
			if tt.wantKind == models.ActiveNone {
				assert.Nil(t, ch.ActiveRefID)
			} else {
				require.NotNil(t, ch.ActiveRefID)
				assert.Equal(t, tt.tr.RefID, *ch.ActiveRefID)
			}
		})
	}
}

func TestOverdueDays(t *testing.T) {
	due := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, OverdueDays(due, due))
	assert.Equal(t, 0, OverdueDays(due, due.Add(-72*time.Hour)))
	assert.Equal(t, 1, OverdueDays(due, due.Add(time.Minute)))
	assert.Equal(t, 1, OverdueDays(due, due.Add(24*time.Hour)))
	assert.Equal(t, 3, OverdueDays(due, due.Add(48*time.Hour+time.Second)))
}

func TestFine(t *testing.T) {
	rate := decimal.RequireFromString("5.00")

	assert.True(t, Fine(3, rate).Equal(decimal.RequireFromString("15")))
	assert.True(t, Fine(0, rate).IsZero())
	assert.True(t, Fine(4, decimal.RequireFromString("-1")).IsZero())
	assert.True(t, Fine(3, decimal.RequireFromString("0.333")).Equal(decimal.RequireFromString("1")))
}
