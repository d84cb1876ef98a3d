package suggestion

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	suggestionrepo "github.com/piatra/agenda-politicieni/internal/repositories/suggestion"
	"github.com/piatra/agenda-politicieni/pkg/database"
	"github.com/piatra/agenda-politicieni/pkg/models"
)

type stubTx struct {
	database.Tx
	commits   int
	rollbacks int
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.commits++
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	if t.commits == 0 {
		t.rollbacks++
	}
	return nil
}

func (t *stubTx) IsOpen() bool {
	return t.commits == 0 && t.rollbacks == 0
}

type stubDB struct {
	database.DB
	tx *stubTx
}

func (d *stubDB) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error) {
	d.tx = &stubTx{}
	return ctx, d.tx, nil
}

type fakeSuggestionRepo struct {
	db          *stubDB
	nextID      int64
	suggestions map[int64]*models.Suggestion
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{
		db:          &stubDB{},
		nextID:      1,
		suggestions: make(map[int64]*models.Suggestion),
	}
}

func (r *fakeSuggestionRepo) Create(ctx context.Context, userID, personID int64, name, value string, date time.Time) (*models.Suggestion, error) {
	suggestion := &models.Suggestion{
		ID:       r.nextID,
		UserID:   userID,
		PersonID: personID,
		Name:     name,
		Value:    value,
		Date:     date,
	}
	r.suggestions[suggestion.ID] = suggestion
	r.nextID++

	copy := *suggestion
	return &copy, nil
}

func (r *fakeSuggestionRepo) GetByID(ctx context.Context, id int64) (*models.Suggestion, error) {
	suggestion, ok := r.suggestions[id]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "suggestion not found")
	}
	copy := *suggestion
	return &copy, nil
}

func (r *fakeSuggestionRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Suggestion, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeSuggestionRepo) SetDecision(ctx context.Context, id, adminID int64, decision string) error {
	suggestion, ok := r.suggestions[id]
	if !ok {
		return httperror.NewHTTPError(http.StatusNotFound, "suggestion not found")
	}
	if suggestion.Decision != nil {
		return httperror.NewHTTPError(http.StatusConflict, "suggestion already decided")
	}
	suggestion.AdminID = &adminID
	suggestion.Decision = &decision
	return nil
}

func (r *fakeSuggestionRepo) List(ctx context.Context, filter suggestionrepo.ListFilter) ([]models.Suggestion, error) {
	var out []models.Suggestion
	for _, suggestion := range r.suggestions {
		if filter.PersonID != nil && suggestion.PersonID != *filter.PersonID {
			continue
		}
		if filter.Pending != nil && suggestion.IsDecided() == *filter.Pending {
			continue
		}
		out = append(out, *suggestion)
	}
	return out, nil
}

func (r *fakeSuggestionRepo) DB() database.DB {
	return r.db
}

type upsert struct {
	personID int64
	name     string
	value    string
}

type fakePersonRepo struct {
	persons map[int64]models.Person
	upserts []upsert
}

func newFakePersonRepo(ids ...int64) *fakePersonRepo {
	persons := make(map[int64]models.Person)
	for _, id := range ids {
		persons[id] = models.Person{ID: id, Name: "person"}
	}
	return &fakePersonRepo{persons: persons}
}

func (r *fakePersonRepo) ListPersons(ctx context.Context) (models.PersonsView, error) {
	return models.PersonsView{}, nil
}

func (r *fakePersonRepo) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	person, ok := r.persons[id]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "person not found")
	}
	return &person, nil
}

func (r *fakePersonRepo) GetProperty(ctx context.Context, personID int64, name string) (*models.Property, error) {
	return nil, nil
}

func (r *fakePersonRepo) UpsertProperty(ctx context.Context, personID int64, name, value string) error {
	r.upserts = append(r.upserts, upsert{personID: personID, name: name, value: value})
	return nil
}

func (r *fakePersonRepo) CreatePerson(ctx context.Context, person models.Person) error {
	r.persons[person.ID] = person
	return nil
}

func (r *fakePersonRepo) DB() database.DB {
	return nil
}

type submittedEvent struct {
	suggestionID int64
	userRef      string
}

type decidedEvent struct {
	suggestionID int64
	adminRef     string
	decision     string
}

type fakeEmitter struct {
	submitted []submittedEvent
	decided   []decidedEvent
}

func (e *fakeEmitter) EmitSuggestionSubmitted(ctx context.Context, suggestion *models.Suggestion, user models.User) error {
	e.submitted = append(e.submitted, submittedEvent{suggestionID: suggestion.ID, userRef: user.OpenIDURL})
	return nil
}

func (e *fakeEmitter) EmitSuggestionDecided(ctx context.Context, suggestion *models.Suggestion, admin models.User, decision string) error {
	e.decided = append(e.decided, decidedEvent{suggestionID: suggestion.ID, adminRef: admin.OpenIDURL, decision: decision})
	return nil
}

type fakeViews struct {
	invalidations int
}

func (v *fakeViews) Invalidate(ctx context.Context) {
	v.invalidations++
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestSubmit_CreatesPendingSuggestion(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	persons := newFakePersonRepo(7)
	emitter := &fakeEmitter{}
	service := NewService(suggestions, persons, emitter, &fakeViews{}, testLogger())

	user := models.User{ID: 3, OpenIDURL: "https://id.example/alice"}
	before := time.Now().UTC()

	suggestion, err := service.Submit(context.Background(), user, 7, "party", "Independent")
	require.NoError(t, err)

	assert.Equal(t, int64(3), suggestion.UserID)
	assert.Equal(t, int64(7), suggestion.PersonID)
	assert.Equal(t, "party", suggestion.Name)
	assert.Equal(t, "Independent", suggestion.Value)
	assert.False(t, suggestion.IsDecided())
	assert.False(t, suggestion.Date.Before(before))

	require.Len(t, emitter.submitted, 1)
	assert.Equal(t, suggestion.ID, emitter.submitted[0].suggestionID)
	assert.Equal(t, "https://id.example/alice", emitter.submitted[0].userRef)
}

func TestSubmit_RejectsInvalidName(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	persons := newFakePersonRepo(7)
	service := NewService(suggestions, persons, &fakeEmitter{}, &fakeViews{}, testLogger())

	user := models.User{ID: 3}

	_, err := service.Submit(context.Background(), user, 7, "", "value")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))

	tooLong := "a-name-that-is-far-longer-than-thirty-characters"
	_, err = service.Submit(context.Background(), user, 7, tooLong, "value")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))

	assert.Empty(t, suggestions.suggestions)
}

func TestSubmit_UnknownPerson(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	persons := newFakePersonRepo()
	service := NewService(suggestions, persons, &fakeEmitter{}, &fakeViews{}, testLogger())

	_, err := service.Submit(context.Background(), models.User{ID: 3}, 42, "party", "value")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	assert.Empty(t, suggestions.suggestions)
}

func TestDecide_AcceptMergesProperty(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	persons := newFakePersonRepo(7)
	emitter := &fakeEmitter{}
	views := &fakeViews{}
	service := NewService(suggestions, persons, emitter, views, testLogger())

	created, err := service.Submit(context.Background(), models.User{ID: 3}, 7, "party", "Independent")
	require.NoError(t, err)

	admin := models.User{ID: 9, OpenIDURL: "https://id.example/admin"}
	decided, err := service.Decide(context.Background(), created.ID, admin, models.DecisionAccept)
	require.NoError(t, err)

	require.NotNil(t, decided.Decision)
	assert.Equal(t, models.DecisionAccept, *decided.Decision)
	require.NotNil(t, decided.AdminID)
	assert.Equal(t, int64(9), *decided.AdminID)

	require.Len(t, persons.upserts, 1)
	assert.Equal(t, upsert{personID: 7, name: "party", value: "Independent"}, persons.upserts[0])

	require.NotNil(t, suggestions.db.tx)
	assert.Equal(t, 1, suggestions.db.tx.commits)
	assert.Equal(t, 0, suggestions.db.tx.rollbacks)

	assert.Equal(t, 1, views.invalidations)

	require.Len(t, emitter.decided, 1)
	assert.Equal(t, models.DecisionAccept, emitter.decided[0].decision)
	assert.Equal(t, "https://id.example/admin", emitter.decided[0].adminRef)
}

func TestDecide_RejectLeavesRecordStoreUntouched(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	persons := newFakePersonRepo(7)
	views := &fakeViews{}
	service := NewService(suggestions, persons, &fakeEmitter{}, views, testLogger())

	created, err := service.Submit(context.Background(), models.User{ID: 3}, 7, "party", "Independent")
	require.NoError(t, err)

	decided, err := service.Decide(context.Background(), created.ID, models.User{ID: 9}, models.DecisionReject)
	require.NoError(t, err)

	require.NotNil(t, decided.Decision)
	assert.Equal(t, models.DecisionReject, *decided.Decision)
	assert.Empty(t, persons.upserts)
	assert.Equal(t, 0, views.invalidations)
	assert.Equal(t, 1, suggestions.db.tx.commits)
}

func TestDecide_AlreadyDecidedConflicts(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	persons := newFakePersonRepo(7)
	emitter := &fakeEmitter{}
	service := NewService(suggestions, persons, emitter, &fakeViews{}, testLogger())

	created, err := service.Submit(context.Background(), models.User{ID: 3}, 7, "party", "Independent")
	require.NoError(t, err)

	_, err = service.Decide(context.Background(), created.ID, models.User{ID: 9}, models.DecisionReject)
	require.NoError(t, err)

	_, err = service.Decide(context.Background(), created.ID, models.User{ID: 9}, models.DecisionAccept)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))

	// the losing decide must not have touched the record store
	assert.Empty(t, persons.upserts)
	assert.Len(t, emitter.decided, 1)
}

func TestDecide_UnknownSuggestion(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	service := NewService(suggestions, newFakePersonRepo(7), &fakeEmitter{}, &fakeViews{}, testLogger())

	_, err := service.Decide(context.Background(), 404, models.User{ID: 9}, models.DecisionAccept)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	assert.Equal(t, 1, suggestions.db.tx.rollbacks)
}

func TestList_Filters(t *testing.T) {
	suggestions := newFakeSuggestionRepo()
	persons := newFakePersonRepo(7, 8)
	service := NewService(suggestions, persons, &fakeEmitter{}, &fakeViews{}, testLogger())

	first, err := service.Submit(context.Background(), models.User{ID: 3}, 7, "party", "A")
	require.NoError(t, err)
	_, err = service.Submit(context.Background(), models.User{ID: 3}, 8, "county", "B")
	require.NoError(t, err)

	_, err = service.Decide(context.Background(), first.ID, models.User{ID: 9}, models.DecisionReject)
	require.NoError(t, err)

	pending := true
	listed, err := service.List(context.Background(), suggestionrepo.ListFilter{Pending: &pending})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(8), listed[0].PersonID)

	personID := int64(7)
	listed, err = service.List(context.Background(), suggestionrepo.ListFilter{PersonID: &personID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].IsDecided())
}
