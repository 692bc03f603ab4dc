package curriculum

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/montree/core"
)

// Areas
const (
	AreaPracticalLife = "practical_life"
	AreaSensorial     = "sensorial"
	AreaMathematics   = "mathematics"
	AreaLanguage      = "language"
	AreaCultural      = "cultural"

	defaultArea = AreaPracticalLife
)

var (
	AllAreas = []string{AreaPracticalLife, AreaSensorial, AreaMathematics, AreaLanguage, AreaCultural}

	areaAliases = map[string]string{
		"math":      AreaMathematics,
		"maths":     AreaMathematics,
		"culture":   AreaCultural,
		"science":   AreaCultural,
		"practical": AreaPracticalLife,
	}
)

// NormalizeArea maps a raw area label to one of AllAreas.
// Blank labels fall back to practical_life; unknown labels are returned as a snake key and rejected later.
func NormalizeArea(area string) string {
	key := core.SnakeKey(area)
	if key == "" {
		return defaultArea
	}
	if alias, ok := areaAliases[key]; ok {
		return alias
	}
	return key
}

// IsArea reports whether area is one of AllAreas.
func IsArea(area string) bool {
	for _, a := range AllAreas {
		if a == area {
			return true
		}
	}
	return false
}

// Status is a child's mastery status for a Work. Higher is further along.
type Status int

const (
	StatusNotStarted Status = iota
	StatusPresented
	StatusPracticing
	StatusMastered
)

var statusLabels = [...]string{"not_started", "presented", "practicing", "mastered"}

func (s Status) String() string {
	if s < StatusNotStarted || s > StatusMastered {
		return "unknown"
	}
	return statusLabels[s]
}

// ParseStatus maps an assignment progress label to a Status.
// Unknown and blank labels are treated as practicing: a child is assigned work they are working on.
func ParseStatus(label string) Status {
	key := core.SnakeKey(label)
	for i, l := range statusLabels {
		if l == key {
			return Status(i)
		}
	}
	return StatusPracticing
}

// Work is a curriculum catalog entry.
type Work struct {
	ID        string      `json:"id"`
	ScopeID   string      `json:"scope_id"`
	Area      string      `json:"area"`
	Name      string      `json:"name"`
	AltName   null.String `json:"alt_name"` // localized name
	Sequence  int         `json:"sequence"`
	IsCustom  bool        `json:"is_custom"`
	CreatedAt time.Time   `json:"created_at"` // UTC
}

// Precedes reports whether `a` comes strictly before `b` in the mastery order.
//
// Sequence order is mastery order: within one {scope, area}, a lower sequence is learned earlier,
// so being assigned `b` implies `a` has been mastered. Works from another scope or area never precede.
func Precedes(a, b Work) bool {
	return a.ScopeID == b.ScopeID && a.Area == b.Area && a.Sequence < b.Sequence
}

// NewWork contains information needed to create a new Work.
type NewWork struct {
	ID       string
	ScopeID  string
	Area     string
	Name     string
	AltName  null.String
	Sequence int
	IsCustom bool
}

// Assignment is a raw record of a work given to a child, possibly not linked to a catalog Work yet.
type Assignment struct {
	ID             string      `json:"id"`
	ScopeID        string      `json:"scope_id"`
	ChildID        string      `json:"child_id"`
	Area           string      `json:"area"`
	WorkName       string      `json:"work_name"` // raw text
	WorkID         null.String `json:"work_id"`
	ProgressStatus string      `json:"progress_status"`
	CreatedAt      time.Time   `json:"created_at"` // UTC
}

func (a Assignment) IsResolved() bool { return a.WorkID.Valid && a.WorkID.String != "" }

// ProgressKey identifies one child's progress on one Work.
type ProgressKey struct {
	ChildID string
	WorkID  string
}

func (k ProgressKey) String() string { return k.ChildID + "|" + k.WorkID }

// ProgressUpdate is a proposed (child, work, status) triple.
type ProgressUpdate struct {
	ChildID string `json:"child_id"`
	WorkID  string `json:"work_id"`
	Status  Status `json:"status"`
}

func (u ProgressUpdate) Key() ProgressKey { return ProgressKey{ChildID: u.ChildID, WorkID: u.WorkID} }

// Progress is the stored mastery state of one child for one Work.
type Progress struct {
	ChildID   string    `json:"child_id"`
	WorkID    string    `json:"work_id"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Synonym is a learned mapping from a canonical raw text to a Work, within a {scope, area}.
type Synonym struct {
	ScopeID    string    `json:"scope_id"`
	Area       string    `json:"area"`
	RawText    string    `json:"raw_text"` // canonical form
	WorkID     string    `json:"work_id"`
	Confidence int       `json:"confidence"`
	UsageCount int       `json:"usage_count"`
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// Correction is a teacher's manual choice of Work for a raw text.
type Correction struct {
	ScopeID string `json:"-"`
	Area    string `json:"area" validate:"required,area"`
	RawText string `json:"raw_text" validate:"required"`
	WorkID  string `json:"work_id" validate:"required"`
}

func (c *Correction) Clean() {
	c.Area = NormalizeArea(c.Area)
	c.RawText = core.CleanString(c.RawText)
	c.WorkID = core.CleanString(c.WorkID)
}

// PreviewRequest asks how a raw text would be matched interactively.
type PreviewRequest struct {
	Area    string `json:"area" validate:"required,area"`
	RawText string `json:"raw_text"`
}

func (p *PreviewRequest) Clean() {
	p.Area = NormalizeArea(p.Area)
	p.RawText = strings.TrimSpace(p.RawText)
}
