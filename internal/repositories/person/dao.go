package person

import (
	"github.com/piatra/agenda-politicieni/pkg/database"
	"github.com/piatra/agenda-politicieni/pkg/models"
)

const (
	personsTable    = "persons"
	propertiesTable = "properties"
)

type PersonRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type PropertyRow struct {
	ID       int64  `db:"id"`
	PersonID int64  `db:"person_id"`
	Name     string `db:"name"`
	Value    string `db:"value"`
}

var personStruct = database.NewStruct(new(PersonRow))
var propertyStruct = database.NewStruct(new(PropertyRow))

func ToPerson(row *PersonRow) models.Person {
	return models.Person{
		ID:   row.ID,
		Name: row.Name,
	}
}

func ToProperty(row *PropertyRow) models.Property {
	return models.Property{
		ID:       row.ID,
		PersonID: row.PersonID,
		Name:     row.Name,
		Value:    row.Value,
	}
}

// buildView merges each person's name with its current properties into the
// flattened id -> attribute map. Attribute keys are whatever properties
// currently exist; there is no fixed schema.
func buildView(persons []PersonRow, properties []PropertyRow) models.PersonsView {
	view := make(models.PersonsView, len(persons))

	for _, p := range persons {
		view[p.ID] = models.PersonAttributes{"name": p.Name}
	}

	for _, prop := range properties {
		attrs, ok := view[prop.PersonID]
		if !ok {
			continue
		}
		attrs[prop.Name] = prop.Value
	}

	return view
}
