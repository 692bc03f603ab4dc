package curriculum_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/montree/core"
	"github.com/trezcool/montree/core/curriculum"
)

const seedYAML = `
areas:
  math:
    - Number Rods
    - name: Spindle Box
      alt_name: Boîte à fuseaux
    - Cards and Counters
  sensorial:
    - Pink Tower
    - Brown Stair
`

func TestParseCatalogSeed(t *testing.T) {
	seed, err := curriculum.ParseCatalogSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, seed.Areas["math"], 3)
	assert.Equal(t, "Number Rods", seed.Areas["math"][0].Name)
	assert.Equal(t, curriculum.SeedWork{Name: "Spindle Box", AltName: "Boîte à fuseaux"}, seed.Areas["math"][1])
}

func TestParseCatalogSeed_rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "unknown top-level field", yaml: "area:\n  math:\n    - Number Rods\n", wantErr: "field area not found"},
		{name: "unknown work field", yaml: "areas:\n  math:\n    - nom: Number Rods\n", wantErr: `unknown field "nom"`},
		{name: "misspelled alt name", yaml: "areas:\n  math:\n    - name: Spindle Box\n      altname: Boîte\n", wantErr: `unknown field "altname"`},
		{name: "blank scalar", yaml: "areas:\n  math:\n    - Number Rods\n    -\n", wantErr: "has no name"},
		{name: "blank name", yaml: "areas:\n  math:\n    - name: \"  \"\n", wantErr: "has no name"},
		{name: "alt name only", yaml: "areas:\n  math:\n    - alt_name: Barres\n", wantErr: "has no name"},
		{name: "nested list", yaml: "areas:\n  math:\n    - [Number Rods]\n", wantErr: "must be a name or a mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := curriculum.ParseCatalogSeed(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestService_Seed(t *testing.T) {
	f := setup(t) // mathematics already holds Number Rods, Spindle Box, Bead Stair
	ctx := context.Background()
	seed, err := curriculum.ParseCatalogSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	sum, err := f.svc.Seed(ctx, scope, seed)
	require.NoError(t, err)
	assert.Equal(t, curriculum.SeedSummary{Created: 3, Skipped: 2}, sum)

	areas, err := f.repos.Catalog.ListAreas(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []string{curriculum.AreaMathematics, curriculum.AreaSensorial}, areas)

	math, err := f.svc.ListWorks(ctx, scope, "math")
	require.NoError(t, err)
	require.Len(t, math, 4)
	assert.Equal(t, "Cards and Counters", math[3].Name)
	assert.Equal(t, 4, math[3].Sequence)
	assert.False(t, math[3].IsCustom)

	sensorial, err := f.svc.ListWorks(ctx, scope, curriculum.AreaSensorial)
	require.NoError(t, err)
	require.Len(t, sensorial, 2)
	assert.Equal(t, "Pink Tower", sensorial[0].Name)
	assert.Equal(t, 1, sensorial[0].Sequence)
	assert.Equal(t, 2, sensorial[1].Sequence)

	// seeding again is harmless
	sum, err = f.svc.Seed(ctx, scope, seed)
	require.NoError(t, err)
	assert.Equal(t, curriculum.SeedSummary{Created: 0, Skipped: 5}, sum)

	_, err = f.svc.Seed(ctx, scope, curriculum.CatalogSeed{Areas: map[string][]curriculum.SeedWork{"music": {{Name: "Bells"}}}})
	assert.True(t, core.IsValidationError(err))
}
