package fixture

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piatra/agenda-politicieni/pkg/database"
	"github.com/piatra/agenda-politicieni/pkg/models"
)

type stubTx struct {
	database.Tx
	commits int
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.commits++
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	return nil
}

type stubDB struct {
	database.DB
	tx *stubTx
}

func (d *stubDB) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error) {
	d.tx = &stubTx{}
	return ctx, d.tx, nil
}

type fakePersonRepo struct {
	db      *stubDB
	persons []models.Person
	props   map[int64]map[string]string
}

func newFakePersonRepo() *fakePersonRepo {
	return &fakePersonRepo{
		db:    &stubDB{},
		props: make(map[int64]map[string]string),
	}
}

func (r *fakePersonRepo) ListPersons(ctx context.Context) (models.PersonsView, error) {
	return nil, nil
}

func (r *fakePersonRepo) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	return nil, nil
}

func (r *fakePersonRepo) GetProperty(ctx context.Context, personID int64, name string) (*models.Property, error) {
	return nil, nil
}

func (r *fakePersonRepo) UpsertProperty(ctx context.Context, personID int64, name, value string) error {
	attrs, ok := r.props[personID]
	if !ok {
		attrs = make(map[string]string)
		r.props[personID] = attrs
	}
	attrs[name] = value
	return nil
}

func (r *fakePersonRepo) CreatePerson(ctx context.Context, person models.Person) error {
	r.persons = append(r.persons, person)
	return nil
}

func (r *fakePersonRepo) DB() database.DB {
	return r.db
}

type fakeResetter struct {
	resets int
	err    error
}

func (r *fakeResetter) Reset() error {
	r.resets++
	return r.err
}

type fakeEmitter struct {
	flush   bool
	persons int
	calls   int
}

func (e *fakeEmitter) EmitFixtureLoaded(ctx context.Context, flush bool, persons int) error {
	e.calls++
	e.flush = flush
	e.persons = persons
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

func TestLoad_CreatesPersonsAndProperties(t *testing.T) {
	repo := newFakePersonRepo()
	emitter := &fakeEmitter{}
	views := &fakeViews{}
	resetter := &fakeResetter{}
	service := NewService(repo, resetter, emitter, views, testLogger())

	records := []Record{
		{ID: 1, Name: "Ana Pop", Attributes: map[string]string{"party": "Independent", "county": "Cluj"}},
		{ID: 2, Name: "Ion Dinu", Attributes: map[string]string{}},
	}

	require.NoError(t, service.Load(context.Background(), records, false))

	require.Len(t, repo.persons, 2)
	assert.Equal(t, models.Person{ID: 1, Name: "Ana Pop"}, repo.persons[0])
	assert.Equal(t, map[string]string{"party": "Independent", "county": "Cluj"}, repo.props[1])
	assert.Empty(t, repo.props[2])

	assert.Equal(t, 0, resetter.resets)
	assert.Equal(t, 1, repo.db.tx.commits)
	assert.Equal(t, 1, views.invalidations)
	assert.Equal(t, 1, emitter.calls)
	assert.Equal(t, 2, emitter.persons)
	assert.False(t, emitter.flush)
}

func TestLoad_FlushResetsSchemaFirst(t *testing.T) {
	repo := newFakePersonRepo()
	resetter := &fakeResetter{}
	emitter := &fakeEmitter{}
	service := NewService(repo, resetter, emitter, &fakeViews{}, testLogger())

	require.NoError(t, service.Load(context.Background(), []Record{{ID: 1, Name: "Ana Pop"}}, true))
	assert.Equal(t, 1, resetter.resets)
	assert.True(t, emitter.flush)
}

func TestLoad_FlushWithoutResetterFails(t *testing.T) {
	repo := newFakePersonRepo()
	service := NewService(repo, nil, &fakeEmitter{}, &fakeViews{}, testLogger())

	err := service.Load(context.Background(), []Record{{ID: 1, Name: "Ana Pop"}}, true)
	assert.Error(t, err)
	assert.Empty(t, repo.persons)
}

func TestLoad_ResetFailureAborts(t *testing.T) {
	repo := newFakePersonRepo()
	resetter := &fakeResetter{err: errors.New("drop failed")}
	service := NewService(repo, resetter, &fakeEmitter{}, &fakeViews{}, testLogger())

	err := service.Load(context.Background(), []Record{{ID: 1, Name: "Ana Pop"}}, true)
	assert.Error(t, err)
	assert.Empty(t, repo.persons)
}
