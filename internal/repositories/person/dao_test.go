package person

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piatra/agenda-politicieni/pkg/models"
)

func TestBuildView(t *testing.T) {
	tests := []struct {
		name       string
		persons    []PersonRow
		properties []PropertyRow
		expected   models.PersonsView
	}{
		{
			name:     "empty store",
			expected: models.PersonsView{},
		},
		{
			name:    "person without properties still appears",
			persons: []PersonRow{{ID: 1, Name: "Ana Pop"}},
			expected: models.PersonsView{
				1: {"name": "Ana Pop"},
			},
		},
		{
			name: "properties flatten next to the name",
			persons: []PersonRow{
				{ID: 1, Name: "Ana Pop"},
				{ID: 2, Name: "Ion Dinu"},
			},
			properties: []PropertyRow{
				{ID: 10, PersonID: 1, Name: "party", Value: "Independent"},
				{ID: 11, PersonID: 1, Name: "county", Value: "Cluj"},
				{ID: 12, PersonID: 2, Name: "party", Value: "PNL"},
			},
			expected: models.PersonsView{
				1: {"name": "Ana Pop", "party": "Independent", "county": "Cluj"},
				2: {"name": "Ion Dinu", "party": "PNL"},
			},
		},
		{
			name:    "property colliding with name wins",
			persons: []PersonRow{{ID: 1, Name: "Ana Pop"}},
			properties: []PropertyRow{
				{ID: 10, PersonID: 1, Name: "name", Value: "Ana Pop-Marin"},
			},
			expected: models.PersonsView{
				1: {"name": "Ana Pop-Marin"},
			},
		},
		{
			name:    "orphan property is skipped",
			persons: []PersonRow{{ID: 1, Name: "Ana Pop"}},
			properties: []PropertyRow{
				{ID: 10, PersonID: 99, Name: "party", Value: "Independent"},
			},
			expected: models.PersonsView{
				1: {"name": "Ana Pop"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildView(tt.persons, tt.properties))
		})
	}
}
