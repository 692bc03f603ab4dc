package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mathWorks() []Work {
	names := []string{"Number Rods", "Spindle Box", "Bead Stair", "Teen Board", "Ten Board", "Golden Beads Introduction"}
	works := make([]Work, 0, len(names))
	for i, n := range names {
		works = append(works, Work{
			ID:       Normalize(n),
			ScopeID:  "class-1",
			Area:     AreaMathematics,
			Name:     n,
			Sequence: i + 1,
		})
	}
	return works
}

func TestMatcher_Match(t *testing.T) {
	works := mathWorks()
	tests := []struct {
		name      string
		raw       string
		wantID    string // empty for no match
		wantConf  int
		wantTier  Tier
		wantClass Classification
		wantSugg  []string
	}{
		{
			name: "exact", raw: "BEAD STAIR",
			wantID: "bead stair", wantConf: 100, wantTier: TierExact, wantClass: ClassAuto,
			wantSugg: []string{"golden beads introduction"},
		},
		{
			name: "exact after parenthetical", raw: "Bead Stair (10-19)",
			wantID: "bead stair", wantConf: 100, wantTier: TierExact, wantClass: ClassAuto,
			wantSugg: []string{"golden beads introduction"},
		},
		{
			name: "query contains name", raw: "bead stair 10-19",
			wantID: "bead stair", wantConf: 78, wantTier: TierContainment, wantClass: ClassSuggest,
			wantSugg: []string{"golden beads introduction"},
		},
		{
			name: "name contains query", raw: "Beads",
			wantID: "golden beads introduction", wantConf: 66, wantTier: TierContainment, wantClass: ClassSuggest,
			wantSugg: []string{},
		},
		{
			name: "best containment wins over sequence", raw: "board",
			wantID: "ten board", wantConf: 76, wantTier: TierContainment, wantClass: ClassSuggest,
			wantSugg: []string{"teen board"},
		},
		{
			name: "token overlap of two", raw: "box spindle",
			wantID: "spindle box", wantConf: 59, wantTier: TierToken, wantClass: ClassManual, wantSugg: []string{},
		},
		{
			name: "single token overlap", raw: "a rods",
			wantID: "number rods", wantConf: 59, wantTier: TierToken, wantClass: ClassManual, wantSugg: []string{},
		},
		{
			name: "near miss only", raw: "number cards",
			wantClass: ClassMissing, wantSugg: []string{"number rods"},
		},
		{
			name: "nothing in common", raw: "stamp game",
			wantClass: ClassMissing, wantSugg: []string{},
		},
		{
			name: "empty", raw: "",
			wantClass: ClassMissing, wantSugg: []string{},
		},
		{
			name: "blank after normalization", raw: " (10-19) ",
			wantClass: ClassMissing, wantSugg: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Matcher{}.Match(tt.raw, AreaMathematics, works, nil)

			assert.Equal(t, tt.wantClass, got.Classification)
			assert.Equal(t, tt.wantConf, got.Confidence)
			if tt.wantID == "" {
				assert.Nil(t, got.Match)
			} else {
				require.NotNil(t, got.Match)
				assert.Equal(t, tt.wantID, got.Match.Work.ID)
				assert.Equal(t, tt.wantTier, got.Match.Tier)
			}
			ids := make([]string, 0, len(got.Suggestions))
			for _, s := range got.Suggestions {
				ids = append(ids, s.Work.ID)
			}
			assert.Equal(t, tt.wantSugg, ids)
		})
	}
}

func TestMatcher_TieBreaksOnSequence(t *testing.T) {
	works := []Work{
		{ID: "tower", Area: AreaSensorial, Name: "Pink Tower", Sequence: 2},
		{ID: "cubes", Area: AreaSensorial, Name: "Pink Cubes", Sequence: 1},
	}
	got := Matcher{}.Match("pink", AreaSensorial, works, nil)

	require.NotNil(t, got.Match)
	assert.Equal(t, "cubes", got.Match.Work.ID)
	assert.Equal(t, 72, got.Confidence)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, "tower", got.Suggestions[0].Work.ID)
	assert.Equal(t, 72, got.Suggestions[0].Confidence)
}

func TestMatcher_Synonym(t *testing.T) {
	works := mathWorks()
	synonyms := map[string]Synonym{
		"golden stairs": {Area: AreaMathematics, RawText: "golden stairs", WorkID: "bead stair", Confidence: 95},
		"lost work":     {Area: AreaMathematics, RawText: "lost work", WorkID: "not-in-catalog", Confidence: 100},
	}

	got := Matcher{}.Match("Golden Stairs!", AreaMathematics, works, synonyms)
	require.NotNil(t, got.Match)
	assert.Equal(t, "bead stair", got.Match.Work.ID)
	assert.Equal(t, TierSynonym, got.Match.Tier)
	assert.Equal(t, ClassAuto, got.Classification)

	got = Matcher{}.Match("lost work", AreaMathematics, works, synonyms)
	assert.Nil(t, got.Match)
	assert.Equal(t, ClassMissing, got.Classification)
}

func TestMatcher_AltName(t *testing.T) {
	w := Work{ID: "rods", Area: AreaMathematics, Name: "Number Rods", Sequence: 1}
	w.AltName.SetValid("数棒")

	got := Matcher{}.Match("数棒", AreaMathematics, []Work{w}, nil)
	require.NotNil(t, got.Match)
	assert.Equal(t, TierExact, got.Match.Tier)
}

func TestMatcher_MaxSuggestions(t *testing.T) {
	var works []Work
	for i, n := range []string{"Red Rods", "Blue Rods", "Long Rods", "Short Rods"} {
		works = append(works, Work{ID: n, Area: AreaSensorial, Name: n, Sequence: i + 1})
	}
	got := Matcher{MaxSuggestions: 2}.Match("rods", AreaSensorial, works, nil)

	require.NotNil(t, got.Match)
	assert.Equal(t, "Red Rods", got.Match.Work.ID)
	assert.Len(t, got.Suggestions, 2)
	assert.Equal(t, "Blue Rods", got.Suggestions[0].Work.ID)
}

func TestMatcher_SkipsUnnamedWorks(t *testing.T) {
	works := []Work{{ID: "blank", Area: AreaLanguage, Name: "(draft)", Sequence: 1}}
	got := Matcher{}.Match("draft", AreaLanguage, works, nil)
	assert.Nil(t, got.Match)
	assert.Empty(t, got.Suggestions)
}

func TestConfidenceBands(t *testing.T) {
	for longer := 2; longer <= 60; longer++ {
		for shorter := 1; shorter < longer; shorter++ {
			a, b := make([]rune, shorter), make([]rune, longer)
			for i := range a {
				a[i] = 'a'
			}
			for i := range b {
				b[i] = 'a'
			}
			c := containmentConfidence(string(a), string(b))
			if c < 60 || c > 89 {
				t.Fatalf("containmentConfidence(%d, %d) = %d, out of [60, 89]", shorter, longer, c)
			}
		}
	}
	for total := 1; total <= 10; total++ {
		for overlap := 1; overlap <= total; overlap++ {
			if c := tokenConfidence(overlap, total); c < 1 || c > 59 {
				t.Fatalf("tokenConfidence(%d, %d) = %d, out of [1, 59]", overlap, total, c)
			}
		}
	}
}
