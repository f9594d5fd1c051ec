package model

import (
	"fmt"
	"strings"
)

// Field limits, matching the public API contract.
const (
	MaxNameLength            = 255
	MaxDescriptionLength     = 1000
	MaxCardDescriptionLength = 5000
	MinPriority              = 1
	MaxPriority              = 5
)

func requireName(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	if len(value) > max {
		return fmt.Errorf("%s exceeds %d characters", field, max)
	}
	return nil
}

func checkDescription(value string, max int) error {
	if len(value) > max {
		return fmt.Errorf("description exceeds %d characters", max)
	}
	return nil
}

// CheckPriority validates the card priority range.
func CheckPriority(p int) error {
	if p < MinPriority || p > MaxPriority {
		return fmt.Errorf("priority must be between %d and %d, got %d", MinPriority, MaxPriority, p)
	}
	return nil
}

// Validate checks workspace fields against creation constraints.
func (w *Workspace) Validate() error {
	if err := requireName("name", w.Name, MaxNameLength); err != nil {
		return err
	}
	return checkDescription(w.Description, MaxDescriptionLength)
}

// Validate checks board fields against creation constraints.
func (b *Board) Validate() error {
	if err := requireName("name", b.Name, MaxNameLength); err != nil {
		return err
	}
	if b.WorkspaceID == "" {
		return fmt.Errorf("workspace_id is required")
	}
	return checkDescription(b.Description, MaxDescriptionLength)
}

// Validate checks column fields against creation constraints.
func (c *Column) Validate() error {
	if err := requireName("title", c.Title, MaxNameLength); err != nil {
		return err
	}
	if c.BoardID == "" {
		return fmt.Errorf("board_id is required")
	}
	return checkDescription(c.Description, MaxDescriptionLength)
}

// Validate checks card fields against creation constraints.
func (c *Card) Validate() error {
	if err := requireName("title", c.Title, MaxNameLength); err != nil {
		return err
	}
	if c.BoardID == "" {
		return fmt.Errorf("board_id is required")
	}
	if c.ColumnID == "" {
		return fmt.Errorf("column_id is required")
	}
	if err := CheckPriority(c.Priority); err != nil {
		return err
	}
	return checkDescription(c.Description, MaxCardDescriptionLength)
}

// Validate checks the fields a workspace patch carries.
func (p WorkspacePatch) Validate() error {
	if p.Name != nil {
		if err := requireName("name", *p.Name, MaxNameLength); err != nil {
			return err
		}
	}
	if p.Description != nil {
		return checkDescription(*p.Description, MaxDescriptionLength)
	}
	return nil
}

// Validate checks the fields a board patch carries.
func (p BoardPatch) Validate() error {
	if p.Name != nil {
		if err := requireName("name", *p.Name, MaxNameLength); err != nil {
			return err
		}
	}
	if p.Description != nil {
		return checkDescription(*p.Description, MaxDescriptionLength)
	}
	return nil
}

// Validate checks the fields a column patch carries.
func (p ColumnPatch) Validate() error {
	if p.Title != nil {
		if err := requireName("title", *p.Title, MaxNameLength); err != nil {
			return err
		}
	}
	if p.Description != nil {
		return checkDescription(*p.Description, MaxDescriptionLength)
	}
	return nil
}

// Validate checks the fields a card patch carries.
func (p CardPatch) Validate() error {
	if p.Title != nil {
		if err := requireName("title", *p.Title, MaxNameLength); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if err := CheckPriority(*p.Priority); err != nil {
			return err
		}
	}
	if p.Description != nil {
		return checkDescription(*p.Description, MaxCardDescriptionLength)
	}
	return nil
}
