package person

import (
	"net/http"

	"github.com/labstack/echo/v4"

	personsvc "github.com/piatra/agenda-politicieni/internal/services/person"
	"github.com/piatra/agenda-politicieni/pkg/tracing"
)

// Handler serves the read side of the record store.
type Handler struct {
	persons *personsvc.Service
}

// NewHandler creates a new person handler
func NewHandler(persons *personsvc.Service) *Handler {
	return &Handler{
		persons: persons,
	}
}

// RegisterRoutes registers the person routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/persons", h.List)
}

// List returns every person's flattened attribute map keyed by person id.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "person_handler.List")
	defer span.End()

	view, err := h.persons.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}
