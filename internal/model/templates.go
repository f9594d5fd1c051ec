package model

import (
	"fmt"
	"sort"
)

// TemplateColumn describes one column seeded by a workflow template.
type TemplateColumn struct {
	Title       string
	Description string
	Color       string
}

// Workflow templates available at board creation. A board created with a
// template gets these columns, in order, in the same transaction.
var workflowTemplates = map[string][]TemplateColumn{
	"standard": {
		{Title: "To Do", Description: "Tasks to be started", Color: "#e3e3e3"},
		{Title: "In Progress", Description: "Tasks currently being worked on", Color: "#ffd700"},
		{Title: "Done", Description: "Completed tasks", Color: "#90ee90"},
	},
	"development": {
		{Title: "Backlog", Description: "Features and tasks to be implemented", Color: "#e3e3e3"},
		{Title: "In Development", Description: "Currently being developed", Color: "#ffd700"},
		{Title: "Code Review", Description: "Ready for code review", Color: "#ffa500"},
		{Title: "Testing", Description: "In testing phase", Color: "#87ceeb"},
		{Title: "Done", Description: "Completed and deployed", Color: "#90ee90"},
	},
	"marketing": {
		{Title: "Ideas", Description: "Marketing ideas and concepts", Color: "#e3e3e3"},
		{Title: "Planning", Description: "Campaign planning and strategy", Color: "#ffd700"},
		{Title: "In Progress", Description: "Campaigns being executed", Color: "#ffa500"},
		{Title: "Review", Description: "Content review and approval", Color: "#87ceeb"},
		{Title: "Published", Description: "Published and live", Color: "#90ee90"},
	},
	"support": {
		{Title: "New", Description: "New support requests", Color: "#e3e3e3"},
		{Title: "In Progress", Description: "Being worked on", Color: "#ffd700"},
		{Title: "Waiting for Customer", Description: "Waiting for customer response", Color: "#ffa500"},
		{Title: "Resolved", Description: "Issues resolved", Color: "#90ee90"},
	},
}

// Template returns the column set for a named workflow template.
func Template(name string) ([]TemplateColumn, error) {
	columns, ok := workflowTemplates[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q (available: %v)", name, TemplateNames())
	}
	return columns, nil
}

// TemplateNames returns the available template names, sorted.
func TemplateNames() []string {
	names := make([]string, 0, len(workflowTemplates))
	for name := range workflowTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
