package suggestion

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	userrepo "github.com/piatra/agenda-politicieni/internal/repositories/user"
	suggestionrepo "github.com/piatra/agenda-politicieni/internal/repositories/suggestion"
	suggestionsvc "github.com/piatra/agenda-politicieni/internal/services/suggestion"
	appctx "github.com/piatra/agenda-politicieni/pkg/context"
	"github.com/piatra/agenda-politicieni/pkg/models"
	"github.com/piatra/agenda-politicieni/pkg/tracing"
)

var validate = validator.New()

// Handler serves the suggestion workflow: submission, review listing and
// decisions.
type Handler struct {
	suggestions *suggestionsvc.Service
	users       userrepo.UserRepository
}

// NewHandler creates a new suggestion handler
func NewHandler(suggestions *suggestionsvc.Service, users userrepo.UserRepository) *Handler {
	return &Handler{
		suggestions: suggestions,
		users:       users,
	}
}

// RegisterRoutes registers the suggestion routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/persons/:id/suggestions", h.Submit)
	g.GET("/suggestions", h.List)
	g.POST("/suggestions/:id/decision", h.Decide)
}

// SubmitRequest is the request body for submitting a suggestion
type SubmitRequest struct {
	Name  string `json:"name" validate:"required,max=30"`
	Value string `json:"value" validate:"required"`
}

// DecideRequest is the request body for deciding a suggestion
type DecideRequest struct {
	Decision string `json:"decision" validate:"required,max=10"`
}

// Submit handles POST /persons/:id/suggestions
func (h *Handler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "suggestion_handler.Submit")
	defer span.End()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	personID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	suggestion, err := h.suggestions.Submit(ctx, user, personID, req.Name, req.Value)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, suggestion)
}

// List handles GET /suggestions with optional status and person_id filters
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "suggestion_handler.List")
	defer span.End()

	var filter suggestionrepo.ListFilter

	switch c.QueryParam("status") {
	case "":
	case "pending":
		pending := true
		filter.Pending = &pending
	case "decided":
		pending := false
		filter.Pending = &pending
	default:
		return httperror.NewHTTPError(http.StatusBadRequest, "status must be pending or decided")
	}

	if raw := c.QueryParam("person_id"); raw != "" {
		personID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid person_id")
		}
		filter.PersonID = &personID
	}

	suggestions, err := h.suggestions.List(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, suggestions)
}

// Decide handles POST /suggestions/:id/decision. The admin-vs-user
// distinction is enforced upstream; whoever reaches this route is an
// authorized reviewer.
func (h *Handler) Decide(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "suggestion_handler.Decide")
	defer span.End()

	admin, err := h.currentUser(c)
	if err != nil {
		return err
	}

	suggestionID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req DecideRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	suggestion, err := h.suggestions.Decide(ctx, suggestionID, admin, req.Decision)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, suggestion)
}

// currentUser provisions the caller from the verified identity headers.
func (h *Handler) currentUser(c echo.Context) (models.User, error) {
	ctx := c.Request().Context()

	openidURL := appctx.GetIdentityRef(ctx)
	if openidURL == "" {
		return models.User{}, httperror.NewHTTPError(http.StatusUnauthorized, "identity is required")
	}

	return h.users.GetOrUpdate(ctx, openidURL, appctx.GetIdentityName(ctx), appctx.GetIdentityEmail(ctx))
}

func parseID(c echo.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		return 0, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s", param)
	}
	return id, nil
}
