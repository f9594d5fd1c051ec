package store

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	s := New(sqlxDB, Options{Now: func() time.Time { return testTime }})
	return s, mock
}

func workspaceRow(id string, version int64, name string) *sqlmock.Rows {
	return sqlmock.NewRows(workspaceMeta.columns).
		AddRow(id, "t1", version, testTime, testTime, nil, nil, name, "")
}

func boardRow(id string, version int64, name, workspaceID, template string) *sqlmock.Rows {
	return sqlmock.NewRows(boardMeta.columns).
		AddRow(id, "t1", version, testTime, testTime, nil, nil, name, "", workspaceID, template)
}

func columnRow(id string, version int64, title, boardID string, position int64) *sqlmock.Rows {
	return sqlmock.NewRows(columnMeta.columns).
		AddRow(id, "t1", version, testTime, testTime, nil, nil, title, "", boardID, position, "", false)
}

func cardRow(id string, version int64, title, boardID, columnID string, position int64) *sqlmock.Rows {
	return sqlmock.NewRows(cardMeta.columns).
		AddRow(id, "t1", version, testTime, testTime, nil, nil, title, "", boardID, columnID, position, 1, "{}", "{}", nil, nil, nil)
}

func siblingRows(siblings ...sibling) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "position"})
	for _, s := range siblings {
		rows.AddRow(s.ID, s.Position)
	}
	return rows
}

func strPtr(s string) *string { return &s }

func verPtr(v int64) *int64 { return &v }

func intPtr(i int) *int { return &i }
