package store

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDBError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"unique violation", errors.New(`pq: duplicate key value violates unique constraint "workspaces_pkey"`), ErrDuplicateKey},
		{"foreign key", errors.New(`pq: insert or update on table "cards" violates foreign key constraint "cards_column_id_fkey"`), ErrForeignKey},
		{"deadline", errors.New("context deadline exceeded"), ErrTimeout},
		{"canceled", errors.New("context canceled"), ErrCanceled},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), ErrConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDBError(tt.in, "test.op", "workspaces")
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Op: "card.move", Table: "cards", Err: ErrValidation, Detail: "column on another board"}
	assert.Equal(t, "store: card.move: table=cards: validation failed: column on another board", err.Error())

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)
}
