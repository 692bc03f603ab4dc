package curriculum

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
)

const (
	MaxConfidence = 100

	// containment matches score in [containmentFloor, containmentFloor+containmentSpan]
	containmentFloor = 60
	containmentSpan  = 29
	// token overlap matches never reach the containment floor
	tokenCeiling = containmentFloor - 1

	defaultMaxSuggestions = 5
)

// Tier is the matching strategy that produced a candidate. Higher tiers win.
type Tier int

const (
	TierNone Tier = iota
	TierToken
	TierContainment
	TierSynonym
	TierExact
)

var tierLabels = [...]string{"none", "token", "containment", "synonym", "exact"}

func (t Tier) String() string {
	if t < TierNone || t > TierExact {
		return "unknown"
	}
	return tierLabels[t]
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Candidate is a Work scored against a raw text.
type Candidate struct {
	Work       Work `json:"work"`
	Confidence int  `json:"confidence"`
	Tier       Tier `json:"tier"`
}

// MatchResult is the outcome of matching one raw text against the works of a {scope, area}.
type MatchResult struct {
	RawText        string         `json:"raw_text"`
	Canonical      string         `json:"canonical"`
	Area           string         `json:"area"`
	Match          *Candidate     `json:"match"`
	Confidence     int            `json:"confidence"`
	Classification Classification `json:"classification"`
	Suggestions    []Candidate    `json:"suggestions"`
}

func (r MatchResult) HasMatch() bool { return r.Match != nil }

// Matcher runs the matching cascade: exact, synonym, containment then token overlap.
// The zero value uses DefaultThresholds.
type Matcher struct {
	Thresholds     Thresholds
	MaxSuggestions int
}

func (m Matcher) thresholds() Thresholds {
	if m.Thresholds == (Thresholds{}) {
		return DefaultThresholds
	}
	return m.Thresholds
}

func (m Matcher) maxSuggestions() int {
	if m.MaxSuggestions <= 0 {
		return defaultMaxSuggestions
	}
	return m.MaxSuggestions
}

// indexedWork caches the canonical names of a Work.
type indexedWork struct {
	Work
	names []string
}

func indexWork(w Work) indexedWork {
	iw := indexedWork{Work: w}
	if n := Normalize(w.Name); n != "" {
		iw.names = append(iw.names, n)
	}
	if w.AltName.Valid {
		if n := Normalize(w.AltName.String); n != "" && (len(iw.names) == 0 || n != iw.names[0]) {
			iw.names = append(iw.names, n)
		}
	}
	return iw
}

func indexWorks(works []Work) []indexedWork {
	idx := make([]indexedWork, 0, len(works))
	for _, w := range works {
		idx = append(idx, indexWork(w))
	}
	return idx
}

// Match matches raw against works, which must all belong to one {scope, area}.
// synonyms are keyed by canonical raw text and may be nil.
func (m Matcher) Match(raw, area string, works []Work, synonyms map[string]Synonym) MatchResult {
	return m.match(raw, area, indexWorks(works), synonyms)
}

func (m Matcher) match(raw, area string, works []indexedWork, synonyms map[string]Synonym) MatchResult {
	res := MatchResult{
		RawText:     raw,
		Canonical:   Normalize(raw),
		Area:        area,
		Suggestions: []Candidate{},
	}
	if res.Canonical == "" {
		res.Classification = ClassMissing
		return res
	}

	queryToks := tokens(res.Canonical)
	var syn *Synonym
	if s, ok := synonyms[res.Canonical]; ok {
		syn = &s
	}

	scored := make([]Candidate, 0, len(works))
	for _, w := range works {
		if c := scoreWork(res.Canonical, queryToks, w, syn); c.Confidence > 0 {
			scored = append(scored, c)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return rankBefore(scored[i], scored[j]) })

	var best *Candidate
	for i := range scored {
		if scored[i].Tier != TierNone {
			best = &scored[i]
			break
		}
	}

	limit := m.maxSuggestions()
	for i := range scored {
		if best != nil && &scored[i] == best {
			continue
		}
		if len(res.Suggestions) == limit {
			break
		}
		res.Suggestions = append(res.Suggestions, scored[i])
	}

	if best != nil {
		match := *best
		res.Match = &match
		res.Confidence = match.Confidence
	}
	res.Classification = m.thresholds().Classify(res.Confidence, res.Match != nil)
	return res
}

// rankBefore orders candidates by tier, then confidence, then the earlier-taught work.
func rankBefore(a, b Candidate) bool {
	if a.Tier != b.Tier {
		return a.Tier > b.Tier
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Work.Sequence != b.Work.Sequence {
		return a.Work.Sequence < b.Work.Sequence
	}
	return a.Work.ID < b.Work.ID
}

// scoreWork returns the best tier a Work reaches for the query.
// Near misses (some token overlap, not enough to qualify) come back as TierNone with a non-zero confidence.
func scoreWork(query string, queryToks []string, w indexedWork, syn *Synonym) Candidate {
	best := Candidate{Work: w.Work}
	consider := func(c Candidate) {
		if c.Tier > best.Tier || (c.Tier == best.Tier && c.Confidence > best.Confidence) {
			best = c
		}
	}

	if syn != nil && syn.WorkID == w.ID {
		consider(Candidate{Work: w.Work, Tier: TierSynonym, Confidence: clampConfidence(syn.Confidence)})
	}
	for _, name := range w.names {
		switch {
		case name == query:
			consider(Candidate{Work: w.Work, Tier: TierExact, Confidence: MaxConfidence})
		case strings.Contains(name, query) || strings.Contains(query, name):
			consider(Candidate{Work: w.Work, Tier: TierContainment, Confidence: containmentConfidence(query, name)})
		default:
			overlap := tokenOverlap(queryToks, name)
			if overlap == 0 {
				continue
			}
			tier := TierNone
			if overlap >= 2 || (len(queryToks) == 1 && overlap == 1) {
				tier = TierToken
			}
			consider(Candidate{Work: w.Work, Tier: tier, Confidence: tokenConfidence(overlap, len(queryToks))})
		}
	}
	return best
}

func containmentConfidence(a, b string) int {
	la, lb := float64(len([]rune(a))), float64(len([]rune(b)))
	ratio := math.Min(la, lb) / math.Max(la, lb)
	return containmentFloor + int(math.Round(containmentSpan*ratio))
}

func tokenOverlap(queryToks []string, name string) int {
	var n int
	for _, t := range queryToks {
		if strings.Contains(name, t) {
			n++
		}
	}
	return n
}

func tokenConfidence(overlap, total int) int {
	if total == 0 || overlap == 0 {
		return 0
	}
	conf := int(math.Round(tokenCeiling * float64(overlap) / float64(total)))
	if conf < 1 {
		conf = 1
	}
	if conf > tokenCeiling {
		conf = tokenCeiling
	}
	return conf
}

func clampConfidence(c int) int {
	if c < 1 {
		return 1
	}
	if c > MaxConfidence {
		return MaxConfidence
	}
	return c
}
