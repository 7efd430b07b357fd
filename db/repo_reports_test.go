package db

import (
	"context"
	"testing"
	"time"

	"ong_equipment_tool/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictiveMaintenance(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	fresh := seedEquipment(t, r, "LAP-400")
	serviced := seedEquipment(t, r, "LAP-401")

	m := scheduleMaintenance(t, r, serviced.ID)
	_, err := r.CompleteMaintenance(ctx, m.ID, CompleteInput{PerformedDate: ptr(t0.Add(-40 * 24 * time.Hour))})
	require.NoError(t, err)

	rows, err := r.PredictiveMaintenance(ctx, 30)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[string]PredictiveRow{}
	for _, row := range rows {
		byID[row.EquipmentID] = row
	}

	s := byID[serviced.ID]
	require.NotNil(t, s.LastMaintenance)
	assert.Equal(t, 40, s.DaysSince)
	assert.True(t, s.NeedsAttention)

	// registered "now" by the wall clock, which may sit after the fixed test clock
	f := byID[fresh.ID]
	assert.Nil(t, f.LastMaintenance)
	assert.Zero(t, f.DaysSince)
	assert.False(t, f.NeedsAttention)

	rows, err = r.PredictiveMaintenance(ctx, 60)
	require.NoError(t, err)
	for _, row := range rows {
		assert.False(t, row.NeedsAttention)
	}
}

func TestPredictiveSkipsDonated(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	eq := seedEquipment(t, r, "LAP-402")
	col := seedCollaborator(t, r, "School")
	a, err := r.CreateAssignment(ctx, AssignmentInput{EquipmentID: eq.ID, CollaboratorID: col.ID}, admin)
	require.NoError(t, err)
	_, err = r.DonateAssignment(ctx, a.ID)
	require.NoError(t, err)

	rows, err := r.PredictiveMaintenance(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOverdueLoansReport(t *testing.T) {
	r := newRepo(t)
	r.Fines = fixedRate(decimal.RequireFromString("1.5"))
	ctx := context.Background()
	late := seedEquipment(t, r, "LAP-410")
	onTime := seedEquipment(t, r, "LAP-411")

	_, err := r.CreateLoan(ctx, LoanInput{EquipmentID: late.ID, BorrowerName: "Late Larry", DueDate: ptr(t0.Add(-50 * time.Hour))}, admin)
	require.NoError(t, err)
	_, err = r.CreateLoan(ctx, LoanInput{EquipmentID: onTime.ID, BorrowerName: "Paula", DueDate: ptr(t0.Add(time.Hour))}, admin)
	require.NoError(t, err)

	rows, err := r.OverdueLoans(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "LAP-410", rows[0].EquipmentCode)
	assert.Equal(t, "Late Larry", rows[0].BorrowerName)
	assert.Equal(t, 3, rows[0].OverdueDays)
	assert.True(t, rows[0].AccruedFine.Equal(decimal.RequireFromString("4.5")))
}

func TestStatusSummary(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	a := seedEquipment(t, r, "LAP-420")
	b := seedEquipment(t, r, "LAP-421")
	c := seedEquipment(t, r, "LAP-422")
	seedEquipment(t, r, "LAP-423")
	col := seedCollaborator(t, r, "Rosa")

	_, err := r.CreateLoan(ctx, LoanInput{EquipmentID: a.ID, BorrowerName: "Ana", DueDate: ptr(t0.Add(-time.Hour))}, admin)
	require.NoError(t, err)
	_, err = r.CreateAssignment(ctx, AssignmentInput{EquipmentID: b.ID, CollaboratorID: col.ID}, admin)
	require.NoError(t, err)
	m := scheduleMaintenance(t, r, c.ID)
	_, err = r.StartMaintenance(ctx, m.ID)
	require.NoError(t, err)

	s, err := r.StatusSummary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, s.TotalEquipment)
	assert.EqualValues(t, 1, s.ByStatus[models.StatusAvailable])
	assert.EqualValues(t, 1, s.ByStatus[models.StatusLoaned])
	assert.EqualValues(t, 1, s.ByStatus[models.StatusAssigned])
	assert.EqualValues(t, 1, s.ByStatus[models.StatusInMaintenance])
	assert.EqualValues(t, 0, s.ByStatus[models.StatusDonated])
	assert.EqualValues(t, 1, s.OpenLoans)
	assert.EqualValues(t, 1, s.OverdueLoans)
	assert.EqualValues(t, 1, s.ActiveAssignments)
	assert.EqualValues(t, 1, s.MaintenanceInProgress)
	assert.EqualValues(t, 0, s.MaintenanceScheduled)
}
