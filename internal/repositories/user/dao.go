package user

import (
	"database/sql"

	"github.com/piatra/agenda-politicieni/pkg/database"
	"github.com/piatra/agenda-politicieni/pkg/models"
)

const usersTable = "users"

type UserRow struct {
	ID        int64          `db:"id"`
	OpenIDURL string         `db:"openid_url"`
	Name      sql.NullString `db:"name"`
	Email     sql.NullString `db:"email"`
}

var userStruct = database.NewStruct(new(UserRow))

func ToUser(row *UserRow) models.User {
	return models.User{
		ID:        row.ID,
		OpenIDURL: row.OpenIDURL,
		Name:      row.Name.String,
		Email:     row.Email.String,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
