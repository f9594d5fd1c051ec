package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceValidate(t *testing.T) {
	assert.NoError(t, (&Workspace{Name: "Roadmap"}).Validate())
	assert.Error(t, (&Workspace{Name: ""}).Validate())
	assert.Error(t, (&Workspace{Name: "   "}).Validate())
	assert.Error(t, (&Workspace{Name: strings.Repeat("n", MaxNameLength+1)}).Validate())
	assert.NoError(t, (&Workspace{Name: strings.Repeat("n", MaxNameLength)}).Validate())
	assert.Error(t, (&Workspace{
		Name:        "Roadmap",
		Description: strings.Repeat("d", MaxDescriptionLength+1),
	}).Validate())
}

func TestBoardValidate(t *testing.T) {
	assert.NoError(t, (&Board{Name: "Sprint", WorkspaceID: "ws1"}).Validate())
	assert.Error(t, (&Board{Name: "Sprint"}).Validate())
	assert.Error(t, (&Board{WorkspaceID: "ws1"}).Validate())
}

func TestCardValidate(t *testing.T) {
	valid := Card{Title: "Fix login", BoardID: "b1", ColumnID: "c1", Priority: 3}
	assert.NoError(t, valid.Validate())

	t.Run("priority bounds", func(t *testing.T) {
		for _, p := range []int{MinPriority, MaxPriority} {
			c := valid
			c.Priority = p
			assert.NoError(t, c.Validate())
		}
		for _, p := range []int{0, MinPriority - 1, MaxPriority + 1} {
			c := valid
			c.Priority = p
			assert.Error(t, c.Validate(), "priority %d", p)
		}
	})

	t.Run("card descriptions get the longer limit", func(t *testing.T) {
		c := valid
		c.Description = strings.Repeat("d", MaxCardDescriptionLength)
		assert.NoError(t, c.Validate())
		c.Description += "d"
		assert.Error(t, c.Validate())
	})

	t.Run("parents required", func(t *testing.T) {
		c := valid
		c.ColumnID = ""
		assert.Error(t, c.Validate())
		c = valid
		c.BoardID = ""
		assert.Error(t, c.Validate())
	})
}

func TestPatchValidate(t *testing.T) {
	empty := ""
	long := strings.Repeat("n", MaxNameLength+1)
	good := "Renamed"
	badPriority := 9

	assert.NoError(t, WorkspacePatch{}.Validate())
	assert.NoError(t, WorkspacePatch{Name: &good}.Validate())
	assert.Error(t, WorkspacePatch{Name: &empty}.Validate())
	assert.Error(t, ColumnPatch{Title: &long}.Validate())
	assert.Error(t, CardPatch{Priority: &badPriority}.Validate())
}

func TestPatchFieldsSkipNil(t *testing.T) {
	name := "Renamed"
	fields := WorkspacePatch{Name: &name}.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, "Renamed", fields["name"])

	archived := true
	priority := 2
	cf := CardPatch{Priority: &priority}.Fields()
	assert.Equal(t, map[string]interface{}{"priority": 2}, cf)
	colf := ColumnPatch{IsArchived: &archived}.Fields()
	assert.Equal(t, map[string]interface{}{"is_archived": true}, colf)
}
