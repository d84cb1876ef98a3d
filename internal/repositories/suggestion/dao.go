package suggestion

import (
	"database/sql"

	"github.com/piatra/agenda-politicieni/pkg/database"
	"github.com/piatra/agenda-politicieni/pkg/models"
)

const suggestionsTable = "suggestions"

type SuggestionRow struct {
	ID       int64          `db:"id"`
	UserID   int64          `db:"user_id"`
	PersonID int64          `db:"person_id"`
	Name     string         `db:"name"`
	Value    string         `db:"value"`
	Date     sql.NullTime   `db:"date"`
	AdminID  sql.NullInt64  `db:"admin_id"`
	Decision sql.NullString `db:"decision"`
}

var suggestionStruct = database.NewStruct(new(SuggestionRow))

func ToSuggestion(row *SuggestionRow) models.Suggestion {
	s := models.Suggestion{
		ID:       row.ID,
		UserID:   row.UserID,
		PersonID: row.PersonID,
		Name:     row.Name,
		Value:    row.Value,
		Date:     row.Date.Time,
	}

	if row.AdminID.Valid {
		adminID := row.AdminID.Int64
		s.AdminID = &adminID
	}
	if row.Decision.Valid {
		decision := row.Decision.String
		s.Decision = &decision
	}

	return s
}
