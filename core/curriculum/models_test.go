package curriculum

import "testing"

func TestNormalizeArea(t *testing.T) {
	tests := []struct {
		area string
		want string
	}{
		{area: "", want: AreaPracticalLife},
		{area: "  ", want: AreaPracticalLife},
		{area: "Practical Life", want: AreaPracticalLife},
		{area: "practical-life", want: AreaPracticalLife},
		{area: "math", want: AreaMathematics},
		{area: "Maths", want: AreaMathematics},
		{area: "Culture", want: AreaCultural},
		{area: "language", want: AreaLanguage},
		{area: "Music", want: "music"},
	}
	for _, tt := range tests {
		t.Run(tt.area, func(t *testing.T) {
			if got := NormalizeArea(tt.area); got != tt.want {
				t.Errorf("NormalizeArea() = %q, want %q", got, tt.want)
			}
		})
	}
	if IsArea(NormalizeArea("Music")) {
		t.Error("IsArea(music) = true, want false")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		label string
		want  Status
	}{
		{label: "mastered", want: StatusMastered},
		{label: " Mastered ", want: StatusMastered},
		{label: "presented", want: StatusPresented},
		{label: "Not Started", want: StatusNotStarted},
		{label: "not_started", want: StatusNotStarted},
		{label: "practicing", want: StatusPracticing},
		{label: "", want: StatusPracticing},
		{label: "working on it", want: StatusPracticing},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseStatus(tt.label); got != tt.want {
				t.Errorf("ParseStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrecedes(t *testing.T) {
	rods := Work{ID: "rods", ScopeID: "s1", Area: AreaMathematics, Sequence: 1}
	stair := Work{ID: "stair", ScopeID: "s1", Area: AreaMathematics, Sequence: 3}
	tower := Work{ID: "tower", ScopeID: "s1", Area: AreaSensorial, Sequence: 0}
	otherScope := Work{ID: "rods", ScopeID: "s2", Area: AreaMathematics, Sequence: 1}

	tests := []struct {
		name string
		a, b Work
		want bool
	}{
		{name: "earlier in area", a: rods, b: stair, want: true},
		{name: "later in area", a: stair, b: rods, want: false},
		{name: "itself", a: rods, b: rods, want: false},
		{name: "other area", a: tower, b: stair, want: false},
		{name: "other scope", a: otherScope, b: stair, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Precedes(tt.a, tt.b); got != tt.want {
				t.Errorf("Precedes() = %v, want %v", got, tt.want)
			}
		})
	}
}
