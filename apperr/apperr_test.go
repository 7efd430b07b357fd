package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindsAndStatus(t *testing.T) {
	tests := []struct {
		err    error
		kind   Kind
		status int
	}{
		{NotFound("loan %s not found", "x"), KindNotFound, http.StatusNotFound},
		{Conflict("busy"), KindConflict, http.StatusConflict},
		{BadRequest("bad"), KindBadRequest, http.StatusBadRequest},
		{Internal(errors.New("boom"), "store"), KindInternal, http.StatusInternalServerError},
		{errors.New("untyped"), KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), tt.err.Error())
		assert.Equal(t, tt.status, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create loan: %w", Conflict("equipment LAP-1 is loaned"))

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "create loan: equipment LAP-1 is loaned", err.Error())
}

func TestFromStore(t *testing.T) {
	assert.NoError(t, FromStore(nil, "loan"))

	err := FromStore(gorm.ErrRecordNotFound, "loan")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "loan not found", err.Error())

	typed := Conflict("already loaned")
	assert.Same(t, typed, FromStore(typed, "loan"))

	dup := FromStore(&pgconn.PgError{Code: "23505"}, "equipment")
	assert.ErrorIs(t, dup, ErrConflict)

	malformed := FromStore(&pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}, "equipment")
	assert.ErrorIs(t, malformed, ErrNotFound)
	assert.Equal(t, 404, HTTPStatus(malformed))
	assert.False(t, IsRetryable(malformed))

	busy := FromStore(&pgconn.PgError{Code: "55P03"}, "equipment")
	assert.ErrorIs(t, busy, ErrInternal)
	assert.True(t, IsRetryable(busy))

	other := FromStore(errors.New("disk full"), "equipment")
	assert.ErrorIs(t, other, ErrInternal)
	assert.False(t, IsRetryable(other))

	lite := FromStore(errors.New("constraint failed: UNIQUE constraint failed: ong_equipment.code (2067)"), "equipment")
	assert.ErrorIs(t, lite, ErrConflict)
}
