package curriculum

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Classification is the outcome of a match, derived from its confidence.
type Classification int

const (
	ClassMissing Classification = iota
	ClassManual
	ClassSuggest
	ClassAuto
)

var classLabels = [...]string{"missing", "manual", "suggest", "auto"}

func (c Classification) String() string {
	if c < ClassMissing || c > ClassAuto {
		return "unknown"
	}
	return classLabels[c]
}

func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Mode is the context a match is consumed in.
type Mode int

const (
	// ModeInteractive is a teacher previewing matches: anything below auto needs a review.
	ModeInteractive Mode = iota
	// ModeBatch is the reconciliation batch: any candidate is good enough to link.
	ModeBatch
)

func (m Mode) String() string {
	if m == ModeBatch {
		return "batch"
	}
	return "interactive"
}

// Linkable reports whether a match with this classification may be linked without review in mode m.
func (c Classification) Linkable(m Mode) bool {
	switch m {
	case ModeBatch:
		return c != ClassMissing
	default:
		return c == ClassAuto
	}
}

// Thresholds are the minimum confidences of each classification. Auto > Suggest > Manual >= 1.
type Thresholds struct {
	Auto    int `json:"auto"`
	Suggest int `json:"suggest"`
	Manual  int `json:"manual"`
}

// DefaultThresholds is shared by the preview and the batch unless configured otherwise.
var DefaultThresholds = Thresholds{Auto: 90, Suggest: 60, Manual: 1}

func (t Thresholds) Validate() error {
	if !(t.Auto > t.Suggest && t.Suggest > t.Manual && t.Manual >= 1 && t.Auto <= MaxConfidence) {
		return errors.Errorf(
			"invalid thresholds: want %d >= auto(%d) > suggest(%d) > manual(%d) >= 1",
			MaxConfidence, t.Auto, t.Suggest, t.Manual)
	}
	return nil
}

// Classify maps a match confidence to a Classification.
// A result without candidate is always missing.
func (t Thresholds) Classify(confidence int, hasCandidate bool) Classification {
	switch {
	case !hasCandidate || confidence <= 0:
		return ClassMissing
	case confidence >= t.Auto:
		return ClassAuto
	case confidence >= t.Suggest:
		return ClassSuggest
	case confidence >= t.Manual:
		return ClassManual
	default:
		return ClassMissing
	}
}
