package model

import "time"

// Patches carry partial updates: a nil field is left untouched, a non-nil
// field is written. Parent references never appear here; a card changes
// columns only through the explicit move operation.

// WorkspacePatch updates workspace fields.
type WorkspacePatch struct {
	Name        *string
	Description *string
	MetaData    *Metadata
}

// Fields returns the column assignments the patch carries.
func (p WorkspacePatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.MetaData != nil {
		fields["meta_data"] = *p.MetaData
	}
	return fields
}

// BoardPatch updates board fields. WorkspaceID and Template are immutable
// after creation and deliberately absent.
type BoardPatch struct {
	Name        *string
	Description *string
	MetaData    *Metadata
}

func (p BoardPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.MetaData != nil {
		fields["meta_data"] = *p.MetaData
	}
	return fields
}

// ColumnPatch updates column fields. BoardID is immutable, Position only
// changes through reorder.
type ColumnPatch struct {
	Title       *string
	Description *string
	Color       *string
	IsArchived  *bool
	MetaData    *Metadata
}

func (p ColumnPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Color != nil {
		fields["color"] = *p.Color
	}
	if p.IsArchived != nil {
		fields["is_archived"] = *p.IsArchived
	}
	if p.MetaData != nil {
		fields["meta_data"] = *p.MetaData
	}
	return fields
}

// CardPatch updates card fields. BoardID, ColumnID and Position are immutable
// here; moves and reorders have their own operations.
type CardPatch struct {
	Title          *string
	Description    *string
	Priority       *int
	Labels         *StringArray
	Assignees      *StringArray
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	MetaData       *Metadata
}

func (p CardPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Priority != nil {
		fields["priority"] = *p.Priority
	}
	if p.Labels != nil {
		fields["labels"] = p.Labels.Normalize()
	}
	if p.Assignees != nil {
		fields["assignees"] = p.Assignees.Normalize()
	}
	if p.DueDate != nil {
		fields["due_date"] = *p.DueDate
	}
	if p.EstimatedHours != nil {
		fields["estimated_hours"] = *p.EstimatedHours
	}
	if p.ActualHours != nil {
		fields["actual_hours"] = *p.ActualHours
	}
	if p.MetaData != nil {
		fields["meta_data"] = *p.MetaData
	}
	return fields
}
