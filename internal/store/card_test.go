package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/trellis/internal/model"
)

func TestCardCreateAppendsAtEnd(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col1", 1, "Todo", "board1", 1000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col1", "t1").
		WillReturnRows(siblingRows(
			sibling{ID: "a", Position: 1000},
			sibling{ID: "b", Position: 2000},
			sibling{ID: "c", Position: 3000},
		))
	// Insert columns sort alphabetically, so position is the twelfth bind.
	mock.ExpectQuery(`INSERT INTO cards`).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			int64(4000),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnRows(cardRow("d", 1, "Ship it", "board1", "col1", 4000))
	mock.ExpectCommit()

	card, err := s.Cards.Create(context.Background(), "t1", &model.Card{
		Title:    "Ship it",
		ColumnID: "col1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4000), card.Position)
	assert.Equal(t, "board1", card.BoardID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardCreateFirstInColumn(t *testing.T) {
	s, mock := newMockStore(t)

	// An empty sibling set has no rows to lock, so the column's own row
	// lock is what serializes two creates racing for the first slot.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col1", 1, "Todo", "board1", 1000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WillReturnRows(siblingRows())
	mock.ExpectQuery(`INSERT INTO cards`).
		WillReturnRows(cardRow("a", 1, "First", "board1", "col1", 1000))
	mock.ExpectCommit()

	card, err := s.Cards.Create(context.Background(), "t1", &model.Card{
		Title:    "First",
		ColumnID: "col1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), card.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardCreateRequiresColumn(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.Cards.Create(context.Background(), "t1", &model.Card{Title: "Orphan"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardCreateRejectsBoardMismatch(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col1", 1, "Todo", "board1", 1000))
	mock.ExpectRollback()

	_, err := s.Cards.Create(context.Background(), "t1", &model.Card{
		Title:    "Stray",
		BoardID:  "board2",
		ColumnID: "col1",
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardMoveRejectsCrossBoard(t *testing.T) {
	s, mock := newMockStore(t)

	// The target column lives on another board, so the move fails before any
	// sibling set is touched and the card keeps its column and position.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 1, "Ship it", "board1", "col1", 1000))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE`).
		WillReturnRows(columnRow("col9", 1, "Done", "board2", 1000))
	mock.ExpectRollback()

	_, err := s.Cards.Move(context.Background(), "t1", "card1", "col9", nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardMoveAppendsWhenNoIndex(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 1, "Ship it", "board1", "col1", 1000))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE`).
		WillReturnRows(columnRow("col2", 1, "Doing", "board1", 2000))
	// Both columns and their card sets lock in column-id order.
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col1", 1, "Todo", "board1", 1000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col1", "t1").
		WillReturnRows(siblingRows(sibling{ID: "card1", Position: 1000}))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col2", 1, "Doing", "board1", 2000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col2", "t1").
		WillReturnRows(siblingRows(
			sibling{ID: "x", Position: 1000},
			sibling{ID: "y", Position: 2000},
		))
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 1, "Ship it", "board1", "col1", 1000))
	mock.ExpectQuery(`UPDATE cards SET column_id = \$1, position = \$2`).
		WithArgs("col2", int64(3000), testTime, "card1", "t1").
		WillReturnRows(cardRow("card1", 2, "Ship it", "board1", "col2", 3000))
	mock.ExpectCommit()

	card, err := s.Cards.Move(context.Background(), "t1", "card1", "col2", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "col2", card.ColumnID)
	assert.Equal(t, int64(3000), card.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardMoveToHeadOfTargetColumn(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 1, "Ship it", "board1", "col1", 1000))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE`).
		WillReturnRows(columnRow("col2", 1, "Doing", "board1", 2000))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col1", 1, "Todo", "board1", 1000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col1", "t1").
		WillReturnRows(siblingRows(sibling{ID: "card1", Position: 1000}))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col2", 1, "Doing", "board1", 2000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col2", "t1").
		WillReturnRows(siblingRows(
			sibling{ID: "x", Position: 1000},
			sibling{ID: "y", Position: 2000},
		))
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 1, "Ship it", "board1", "col1", 1000))
	mock.ExpectQuery(`UPDATE cards SET column_id = \$1, position = \$2`).
		WithArgs("col2", int64(0), testTime, "card1", "t1").
		WillReturnRows(cardRow("card1", 2, "Ship it", "board1", "col2", 0))
	mock.ExpectCommit()

	card, err := s.Cards.Move(context.Background(), "t1", "card1", "col2", intPtr(0), nil)
	require.NoError(t, err)
	assert.Equal(t, "col2", card.ColumnID)
	assert.Equal(t, int64(0), card.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardReorderToHead(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 2, "Ship it", "board1", "col1", 3000))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col1", 1, "Todo", "board1", 1000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WillReturnRows(siblingRows(
			sibling{ID: "a", Position: 1000},
			sibling{ID: "b", Position: 2000},
			sibling{ID: "card1", Position: 3000},
		))
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 2, "Ship it", "board1", "col1", 3000))
	// The head slot lands strictly below the first sibling.
	mock.ExpectQuery(`UPDATE cards SET position = \$1`).
		WithArgs(int64(0), testTime, "card1", "t1", int64(2)).
		WillReturnRows(cardRow("card1", 3, "Ship it", "board1", "col1", 0))
	mock.ExpectCommit()

	card, err := s.Cards.Reorder(context.Background(), "t1", "card1", 0, verPtr(2))
	require.NoError(t, err)
	assert.Equal(t, int64(0), card.Position)
	assert.Equal(t, int64(3), card.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardReorderFollowsConcurrentMove(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 1, "Ship it", "board1", "col1", 3000))
	// The first lock round targets col1, but while it waited a move landed
	// the card in col2: the re-read disagrees and the loop locks col2.
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col1", 1, "Todo", "board1", 1000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col1", "t1").
		WillReturnRows(siblingRows(
			sibling{ID: "a", Position: 1000},
			sibling{ID: "b", Position: 2000},
		))
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 2, "Ship it", "board1", "col2", 2000))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col2", 1, "Doing", "board1", 2000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col2", "t1").
		WillReturnRows(siblingRows(
			sibling{ID: "x", Position: 1000},
			sibling{ID: "card1", Position: 2000},
		))
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 2, "Ship it", "board1", "col2", 2000))
	// The plan runs against col2's set, not the stale col1 one.
	mock.ExpectQuery(`UPDATE cards SET position = \$1`).
		WithArgs(int64(0), testTime, "card1", "t1").
		WillReturnRows(cardRow("card1", 3, "Ship it", "board1", "col2", 0))
	mock.ExpectCommit()

	card, err := s.Cards.Reorder(context.Background(), "t1", "card1", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "col2", card.ColumnID)
	assert.Equal(t, int64(0), card.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardMoveFollowsConcurrentMove(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 1, "Ship it", "board1", "col1", 1000))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE`).
		WillReturnRows(columnRow("col3", 1, "Done", "board1", 3000))
	// Round one locks col1 and col3, but a competing move already put the
	// card in col2.
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col1", 1, "Todo", "board1", 1000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col1", "t1").
		WillReturnRows(siblingRows(sibling{ID: "a", Position: 1000}))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col3", 1, "Done", "board1", 3000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col3", "t1").
		WillReturnRows(siblingRows(sibling{ID: "z", Position: 1000}))
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 2, "Ship it", "board1", "col2", 1000))
	// Round two locks col2 and col3; the re-read agrees and the move runs.
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col2", 1, "Doing", "board1", 2000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col2", "t1").
		WillReturnRows(siblingRows(sibling{ID: "card1", Position: 1000}))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col3", 1, "Done", "board1", 3000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WithArgs("col3", "t1").
		WillReturnRows(siblingRows(sibling{ID: "z", Position: 1000}))
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 2, "Ship it", "board1", "col2", 1000))
	mock.ExpectQuery(`UPDATE cards SET column_id = \$1, position = \$2`).
		WithArgs("col3", int64(2000), testTime, "card1", "t1").
		WillReturnRows(cardRow("card1", 3, "Ship it", "board1", "col3", 2000))
	mock.ExpectCommit()

	card, err := s.Cards.Move(context.Background(), "t1", "card1", "col3", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "col3", card.ColumnID)
	assert.Equal(t, int64(2000), card.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardReorderVersionConflict(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 5, "Ship it", "board1", "col1", 3000))
	mock.ExpectQuery(`SELECT .+ FROM columns WHERE .+ FOR UPDATE`).
		WillReturnRows(columnRow("col1", 1, "Todo", "board1", 1000))
	mock.ExpectQuery(`SELECT id, position FROM cards WHERE column_id = \$1 .+ FOR UPDATE`).
		WillReturnRows(siblingRows(sibling{ID: "card1", Position: 3000}))
	mock.ExpectQuery(`SELECT .+ FROM cards WHERE`).
		WillReturnRows(cardRow("card1", 5, "Ship it", "board1", "col1", 3000))
	mock.ExpectRollback()

	_, err := s.Cards.Reorder(context.Background(), "t1", "card1", 0, verPtr(4))
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardReorderRejectsNegativeIndex(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.Cards.Reorder(context.Background(), "t1", "card1", -1, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
