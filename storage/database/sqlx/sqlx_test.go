package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/montree/core"
	"github.com/trezcool/montree/core/curriculum"
	"github.com/trezcool/montree/storage/database/sqlx"
	"github.com/trezcool/montree/tests"
)

type repos struct {
	catalog     curriculum.CatalogRepository
	assignments curriculum.AssignmentRepository
	synonyms    curriculum.SynonymRepository
}

func setup(t *testing.T) repos {
	db := sqlxrepos.NewDB(testutil.OpenDB(t), core.EngineSQLite)
	return repos{
		catalog:     sqlxrepos.NewCatalogRepository(db),
		assignments: sqlxrepos.NewAssignmentRepository(db),
		synonyms:    sqlxrepos.NewSynonymRepository(db),
	}
}

func TestCatalogRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	areas, err := r.catalog.ListAreas(ctx, "class-1")
	require.NoError(t, err)
	assert.Empty(t, areas)

	testutil.CreateWorks(t, r.catalog, "class-1", curriculum.AreaSensorial, "Pink Tower", "Brown Stair")
	testutil.CreateWorks(t, r.catalog, "class-1", curriculum.AreaMathematics, "Number Rods")
	testutil.CreateWorks(t, r.catalog, "class-2", curriculum.AreaMathematics, "Spindle Box")
	require.NoError(t, r.catalog.ActivateAreas(ctx, "class-1", curriculum.AreaSensorial)) // already active

	areas, err = r.catalog.ListAreas(ctx, "class-1")
	require.NoError(t, err)
	assert.Equal(t, []string{curriculum.AreaMathematics, curriculum.AreaSensorial}, areas)

	works, err := r.catalog.ListWorks(ctx, "class-1")
	require.NoError(t, err)
	names := make([]string, 0, len(works))
	for _, w := range works {
		names = append(names, w.Name)
	}
	assert.Equal(t, []string{"Number Rods", "Pink Tower", "Brown Stair"}, names)

	works, err = r.catalog.ListWorks(ctx, "class-1", curriculum.AreaSensorial, curriculum.AreaCultural)
	require.NoError(t, err)
	require.Len(t, works, 2)
	assert.Equal(t, 2, works[1].Sequence)

	alt := null.StringFrom("Tour rose")
	created, err := r.catalog.CreateWork(ctx, curriculum.NewWork{
		ID: "custom-1", ScopeID: "class-1", Area: curriculum.AreaSensorial,
		Name: "Knobbed Cylinders", AltName: alt, Sequence: 3, IsCustom: true,
	})
	require.NoError(t, err)

	got, err := r.catalog.GetWork(ctx, "class-1", "custom-1")
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, alt, got.AltName)
	assert.True(t, got.IsCustom)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Second)

	_, err = r.catalog.GetWork(ctx, "class-2", "custom-1")
	assert.Equal(t, curriculum.ErrWorkNotFound, err)

	// one work per {scope, area, sequence}
	_, err = r.catalog.CreateWork(ctx, curriculum.NewWork{
		ID: "custom-2", ScopeID: "class-1", Area: curriculum.AreaSensorial, Name: "Red Rods", Sequence: 3,
	})
	assert.Error(t, err)
}

func TestAssignmentRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	second := testutil.CreateAssignment(t, r.assignments, "class-1", "child-1", curriculum.AreaMathematics, "Bead Stair", "practicing", base.Add(time.Minute))
	first := testutil.CreateAssignment(t, r.assignments, "class-1", "child-2", curriculum.AreaMathematics, "Number Rods", "mastered", base)
	testutil.CreateAssignment(t, r.assignments, "class-2", "child-3", curriculum.AreaLanguage, "Sandpaper Letters", "", base)

	pending, err := r.assignments.ListUnresolved(ctx, "class-1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
	assert.Equal(t, "mastered", pending[0].ProgressStatus)
	assert.False(t, pending[0].IsResolved())

	require.NoError(t, r.assignments.SetWorkLink(ctx, first.ID, "number-rods"))
	assert.Equal(t, curriculum.ErrAlreadyLinked, r.assignments.SetWorkLink(ctx, first.ID, "bead-stair"))
	assert.Equal(t, curriculum.ErrAssignmentNotFound, r.assignments.SetWorkLink(ctx, "nope", "bead-stair"))

	pending, err = r.assignments.ListUnresolved(ctx, "class-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	linked, err := r.assignments.ListLinked(ctx, "class-1")
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, null.StringFrom("number-rods"), linked[0].WorkID)
	assert.True(t, linked[0].IsResolved())

	// a failing batch writes nothing
	dup := curriculum.Assignment{ID: "dup", ScopeID: "class-1", ChildID: "c", Area: curriculum.AreaSensorial, WorkName: "x", CreatedAt: base}
	assert.Error(t, r.assignments.CreateAssignments(ctx, dup, dup))
	pending, err = r.assignments.ListUnresolved(ctx, "class-1")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSynonymRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	syn := curriculum.Synonym{
		ScopeID: "class-1", Area: curriculum.AreaMathematics, RawText: "golden stairs",
		WorkID: "bead-stair", Confidence: 100,
	}
	stored, err := r.synonyms.UpsertSynonym(ctx, syn)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)

	syn.WorkID = "teen-board"
	syn.Confidence = 95
	stored, err = r.synonyms.UpsertSynonym(ctx, syn)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.UsageCount)
	assert.Equal(t, "teen-board", stored.WorkID)
	assert.Equal(t, 95, stored.Confidence)

	_, err = r.synonyms.UpsertSynonym(ctx, curriculum.Synonym{
		ScopeID: "class-1", Area: curriculum.AreaLanguage, RawText: "golden stairs", WorkID: "x", Confidence: 100,
	})
	require.NoError(t, err)

	syns, err := r.synonyms.ListSynonyms(ctx, "class-1")
	require.NoError(t, err)
	require.Len(t, syns, 2)
	assert.Equal(t, curriculum.AreaLanguage, syns[0].Area)
	assert.Equal(t, curriculum.AreaMathematics, syns[1].Area)

	syns, err = r.synonyms.ListSynonyms(ctx, "class-2")
	require.NoError(t, err)
	assert.Empty(t, syns)
}
