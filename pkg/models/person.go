package models

// Person is a canonical entity whose attributes can be corrected through the
// suggestion workflow. Persons are created by fixture import only; accepted
// suggestions never create or delete persons.
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Property is one named attribute value belonging to a person. At most one
// property exists per (person, name) pair; UpsertProperty is the only mutator
// of property values after import.
type Property struct {
	ID       int64  `json:"id"`
	PersonID int64  `json:"person_id"`
	Name     string `json:"name"`
	Value    string `json:"value"`
}

// MaxPropertyNameLength bounds attribute names, mirrored by the varchar
// column in storage.
const MaxPropertyNameLength = 30

// PersonAttributes is the flattened view of a person: its name merged with
// every current property as one attribute map.
type PersonAttributes map[string]string

// PersonsView maps person id to its flattened attributes.
type PersonsView map[int64]PersonAttributes
