package users

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	boom := errors.New("boom")
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"}

	require.ErrorIs(t, translate(sql.ErrNoRows), ErrNotFound)
	require.ErrorIs(t, translate(unique), ErrAlreadyExists)
	require.ErrorIs(t, translate(fmt.Errorf("insert user: %w", unique)), ErrAlreadyExists)
	require.Equal(t, boom, translate(boom))

	other := &pgconn.PgError{Code: pgerrcode.NotNullViolation}
	require.NotErrorIs(t, translate(other), ErrAlreadyExists)
}
