package model

import "time"

// Envelope carries the fields shared by every entity. Version starts at 1 and
// is incremented by exactly one on every successful mutation, including soft
// delete. DeletedAt is non-nil for soft-deleted rows.
type Envelope struct {
	ID        string     `db:"id" json:"id"`
	TenantID  string     `db:"tenant_id" json:"tenant_id"`
	Version   int64      `db:"version" json:"version"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	MetaData  Metadata   `db:"meta_data" json:"meta_data,omitempty"`
}

// Workspace is the root of the hierarchy and owns boards.
type Workspace struct {
	Envelope
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
}

// Board belongs to a workspace and owns columns. Template records the
// workflow template the board was seeded from, if any.
type Board struct {
	Envelope
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	WorkspaceID string `db:"workspace_id" json:"workspace_id"`
	Template    string `db:"template" json:"template,omitempty"`
}

// Column belongs to a board and owns cards. Position orders columns within
// their board; values need not be contiguous.
type Column struct {
	Envelope
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description,omitempty"`
	BoardID     string `db:"board_id" json:"board_id"`
	Position    int64  `db:"position" json:"position"`
	Color       string `db:"color" json:"color,omitempty"`
	IsArchived  bool   `db:"is_archived" json:"is_archived"`
}

// Card is the leaf entity. ColumnID may only change through the explicit
// move operation; BoardID must always match the owning column's board.
type Card struct {
	Envelope
	Title          string      `db:"title" json:"title"`
	Description    string      `db:"description" json:"description,omitempty"`
	BoardID        string      `db:"board_id" json:"board_id"`
	ColumnID       string      `db:"column_id" json:"column_id"`
	Position       int64       `db:"position" json:"position"`
	Priority       int         `db:"priority" json:"priority"`
	Labels         StringArray `db:"labels" json:"labels"`
	Assignees      StringArray `db:"assignees" json:"assignees"`
	DueDate        *time.Time  `db:"due_date" json:"due_date,omitempty"`
	EstimatedHours *float64    `db:"estimated_hours" json:"estimated_hours,omitempty"`
	ActualHours    *float64    `db:"actual_hours" json:"actual_hours,omitempty"`
}
