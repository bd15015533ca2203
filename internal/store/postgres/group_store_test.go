package postgres

import (
	"context"
	"testing"

	"github.com/SmartSplit/smart-split-backend/internal/store"
	"github.com/SmartSplit/smart-split-backend/types"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupStore_CreateGroup(t *testing.T) {
	mock := newMockPool(t)
	s := NewGroupStore(mock)

	group := &types.Group{
		Name:      "Ski Trip",
		Currency:  "EUR",
		CreatedBy: "user-alice",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO groups`).
		WithArgs(group.Name, group.Description, group.Currency, group.CreatedBy).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("group-1"))
	mock.ExpectExec(`INSERT INTO group_members`).
		WithArgs("group-1", group.CreatedBy, "Alice").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit is a no-op

	id, err := s.CreateGroup(context.Background(), group, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "group-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupStore_GetGroup_NotFound(t *testing.T) {
	mock := newMockPool(t)
	s := NewGroupStore(mock)

	mock.ExpectQuery(`SELECT .+ FROM groups`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetGroup(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGroupStore_IsMember(t *testing.T) {
	mock := newMockPool(t)
	s := NewGroupStore(mock)

	t.Run("registered member", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("group-1", "user-alice").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := s.IsMember(context.Background(), "group-1", "user-alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("outsider", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("group-1", "user-mallory").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := s.IsMember(context.Background(), "group-1", "user-mallory")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
