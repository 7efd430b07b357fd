package db

import (
	"context"
	"testing"
	"time"

	"ong_equipment_tool/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fixedRate decimal.Decimal

func (f fixedRate) FinePerDay(context.Context) decimal.Decimal { return decimal.Decimal(f) }

var admin = Actor{ID: "7f1d3c1e-6a8e-4c44-9a51-0c3f1a2b9d10", Username: "admin@ong.org"}

func newRepo(t *testing.T) *Repo {
	t.Helper()
	r := NewTestRepo(t)
	r.Now = func() time.Time { return t0 }
	return r
}

func seedEquipment(t *testing.T, r *Repo, code string) *models.Equipment {
	t.Helper()
	eq, err := r.CreateEquipment(context.Background(), EquipmentInput{
		Code: code,
		Name: "Laptop " + code,
		Type: "laptop",
	}, admin)
	require.NoError(t, err)
	return eq
}

func seedCollaborator(t *testing.T, r *Repo, name string) *models.Collaborator {
	t.Helper()
	c, err := r.CreateCollaborator(context.Background(), CollaboratorInput{FullName: name, Program: "education"})
	require.NoError(t, err)
	return c
}

func reload(t *testing.T, r *Repo, id string) *models.Equipment {
	t.Helper()
	eq, err := r.GetEquipment(context.Background(), id)
	require.NoError(t, err)
	return eq
}

func ptr[T any](v T) *T { return &v }
