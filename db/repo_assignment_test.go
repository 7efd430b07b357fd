package db

import (
	"context"
	"testing"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseDamagedGoesToMaintenance(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	eq := seedEquipment(t, r, "LAP-100")
	col := seedCollaborator(t, r, "Pedro Ruiz")

	a, err := r.CreateAssignment(ctx, AssignmentInput{EquipmentID: eq.ID, CollaboratorID: col.ID, Observations: "field office"}, admin)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusAssigned, a.Status)
	assert.Equal(t, models.StatusAssigned, reload(t, r, eq.ID).Status)

	rel, err := r.ReleaseAssignment(ctx, a.ID, ReleaseInput{Condition: "dañado"})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusReleased, rel.Status)
	assert.Equal(t, models.ConditionDamaged, rel.ReleaseCondition)
	require.NotNil(t, rel.ReleaseDate)
	assert.Equal(t, "field office", rel.Observations)

	got := reload(t, r, eq.ID)
	assert.Equal(t, models.StatusInMaintenance, got.Status)
	assert.True(t, got.Idle())
}

func TestReleaseConditions(t *testing.T) {
	cases := map[string]models.EquipmentStatus{
		"excellent": models.StatusAvailable,
		"Bueno":     models.StatusAvailable,
		"regular":   models.StatusInMaintenance,
		"fair":      models.StatusInMaintenance,
		"damaged":   models.StatusInMaintenance,
	}
	for cond, want := range cases {
		t.Run(cond, func(t *testing.T) {
			r := newRepo(t)
			ctx := context.Background()
			eq := seedEquipment(t, r, "LAP-"+cond)
			col := seedCollaborator(t, r, "Someone")

			a, err := r.CreateAssignment(ctx, AssignmentInput{EquipmentID: eq.ID, CollaboratorID: col.ID}, admin)
			require.NoError(t, err)
			_, err = r.ReleaseAssignment(ctx, a.ID, ReleaseInput{Condition: cond})
			require.NoError(t, err)
			assert.Equal(t, want, reload(t, r, eq.ID).Status)
		})
	}
}

func TestReleaseRejectsBadInput(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	eq := seedEquipment(t, r, "LAP-101")
	col := seedCollaborator(t, r, "Pedro Ruiz")
	a, err := r.CreateAssignment(ctx, AssignmentInput{EquipmentID: eq.ID, CollaboratorID: col.ID}, admin)
	require.NoError(t, err)

	_, err = r.ReleaseAssignment(ctx, a.ID, ReleaseInput{})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
	_, err = r.ReleaseAssignment(ctx, a.ID, ReleaseInput{Condition: "broken-ish"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = r.ReleaseAssignment(ctx, a.ID, ReleaseInput{Condition: "good"})
	require.NoError(t, err)
	_, err = r.ReleaseAssignment(ctx, a.ID, ReleaseInput{Condition: "good"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAssignmentRequiresActiveCollaborator(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	eq := seedEquipment(t, r, "LAP-102")
	col := seedCollaborator(t, r, "Former Staff")

	_, err := r.SetCollaboratorActive(ctx, col.ID, false)
	require.NoError(t, err)

	_, err = r.CreateAssignment(ctx, AssignmentInput{EquipmentID: eq.ID, CollaboratorID: col.ID}, admin)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, models.StatusAvailable, reload(t, r, eq.ID).Status)

	_, err = r.CreateAssignment(ctx, AssignmentInput{EquipmentID: eq.ID, CollaboratorID: "4d9a6f55-0000-4000-8000-000000000000"}, admin)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDonationIsTerminal(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	eq := seedEquipment(t, r, "LAP-103")
	col := seedCollaborator(t, r, "Community Center")

	a, err := r.CreateAssignment(ctx, AssignmentInput{EquipmentID: eq.ID, CollaboratorID: col.ID}, admin)
	require.NoError(t, err)

	d, err := r.DonateAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusDonated, d.Status)
	require.NotNil(t, d.ReleaseDate)
	assert.Equal(t, models.StatusDonated, reload(t, r, eq.ID).Status)

	_, err = r.CreateLoan(ctx, LoanInput{EquipmentID: eq.ID, BorrowerName: "Ana", DueDate: ptr(t0)}, admin)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = r.CreateAssignment(ctx, AssignmentInput{EquipmentID: eq.ID, CollaboratorID: col.ID}, admin)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = r.DonateAssignment(ctx, a.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = r.OverrideStatus(ctx, eq.ID, OverrideInput{Status: "available", Reason: "oops"}, admin)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestReassignmentSwapsEquipment(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	oldEq := seedEquipment(t, r, "LAP-104")
	newEq := seedEquipment(t, r, "LAP-105")
	col := seedCollaborator(t, r, "Luis Gomez")

	a, err := r.CreateAssignment(ctx, AssignmentInput{EquipmentID: oldEq.ID, CollaboratorID: col.ID}, admin)
	require.NoError(t, err)

	moved, err := r.UpdateAssignment(ctx, a.ID, AssignmentPatch{EquipmentID: ptr(newEq.ID), Observations: ptr("upgrade")})
	require.NoError(t, err)
	assert.Equal(t, newEq.ID, moved.EquipmentID)
	assert.Equal(t, "upgrade", moved.Observations)
	require.NotNil(t, moved.Equipment)
	assert.Equal(t, "LAP-105", moved.Equipment.Code)
	assert.Equal(t, models.StatusAssigned, moved.Equipment.Status)
	require.NotNil(t, moved.Collaborator)
	assert.Equal(t, "Luis Gomez", moved.Collaborator.FullName)

	assert.Equal(t, models.StatusAvailable, reload(t, r, oldEq.ID).Status)
	got := reload(t, r, newEq.ID)
	assert.Equal(t, models.StatusAssigned, got.Status)
	assert.True(t, got.HeldBy(models.ActiveAssignment, a.ID))
}

func TestReassignmentToBusyEquipmentRollsBack(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	oldEq := seedEquipment(t, r, "LAP-106")
	busy := seedEquipment(t, r, "LAP-107")
	col := seedCollaborator(t, r, "Luis Gomez")

	a, err := r.CreateAssignment(ctx, AssignmentInput{EquipmentID: oldEq.ID, CollaboratorID: col.ID}, admin)
	require.NoError(t, err)
	_, err = r.CreateLoan(ctx, LoanInput{EquipmentID: busy.ID, BorrowerName: "Ana", DueDate: ptr(t0)}, admin)
	require.NoError(t, err)

	_, err = r.UpdateAssignment(ctx, a.ID, AssignmentPatch{EquipmentID: ptr(busy.ID)})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// nothing moved
	got := reload(t, r, oldEq.ID)
	assert.Equal(t, models.StatusAssigned, got.Status)
	assert.True(t, got.HeldBy(models.ActiveAssignment, a.ID))
	assert.Equal(t, models.StatusLoaned, reload(t, r, busy.ID).Status)

	stored, err := r.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, oldEq.ID, stored.EquipmentID)
}

func TestReassignReleasedAssignmentConflicts(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	oldEq := seedEquipment(t, r, "LAP-108")
	other := seedEquipment(t, r, "LAP-109")
	col := seedCollaborator(t, r, "Luis Gomez")

	a, err := r.CreateAssignment(ctx, AssignmentInput{EquipmentID: oldEq.ID, CollaboratorID: col.ID}, admin)
	require.NoError(t, err)
	_, err = r.ReleaseAssignment(ctx, a.ID, ReleaseInput{Condition: "good"})
	require.NoError(t, err)

	_, err = r.UpdateAssignment(ctx, a.ID, AssignmentPatch{EquipmentID: ptr(other.ID)})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// observations stay editable
	upd, err := r.UpdateAssignment(ctx, a.ID, AssignmentPatch{Observations: ptr("returned with charger")})
	require.NoError(t, err)
	assert.Equal(t, "returned with charger", upd.Observations)
}

func TestListAssignments(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	a := seedEquipment(t, r, "LAP-110")
	b := seedEquipment(t, r, "LAP-111")
	col := seedCollaborator(t, r, "Luis Gomez")

	first, err := r.CreateAssignment(ctx, AssignmentInput{EquipmentID: a.ID, CollaboratorID: col.ID}, admin)
	require.NoError(t, err)
	_, err = r.CreateAssignment(ctx, AssignmentInput{EquipmentID: b.ID, CollaboratorID: col.ID}, admin)
	require.NoError(t, err)
	_, err = r.ReleaseAssignment(ctx, first.ID, ReleaseInput{Condition: "good"})
	require.NoError(t, err)

	page, err := r.ListAssignments(ctx, AssignmentQuery{CollaboratorID: col.ID, Status: "assigned"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b.ID, page.Items[0].EquipmentID)
	require.NotNil(t, page.Items[0].Collaborator)
	assert.Equal(t, "Luis Gomez", page.Items[0].Collaborator.FullName)
}
