package curriculum

import "sort"

// Run holds the catalog slice of one scope for the length of one reconciliation.
// Works created during the run are added immediately so later assignments can match them.
// A Run is not safe for concurrent use.
type Run struct {
	ScopeID string

	areas    map[string]bool
	works    map[string][]indexedWork // by area, in sequence order
	byID     map[string]Work
	synonyms map[string]map[string]Synonym // area -> canonical raw text -> synonym
	extended map[extensionKey]Work
}

type extensionKey struct {
	canonical string
	area      string
}

// NewRun builds the run cache from the scope's active areas, its catalog and its learned synonyms.
func NewRun(scopeID string, areas []string, works []Work, synonyms []Synonym) *Run {
	run := &Run{
		ScopeID:  scopeID,
		areas:    make(map[string]bool, len(areas)),
		works:    make(map[string][]indexedWork, len(areas)),
		byID:     make(map[string]Work, len(works)),
		synonyms: make(map[string]map[string]Synonym),
		extended: make(map[extensionKey]Work),
	}
	for _, a := range areas {
		run.areas[a] = true
	}
	for _, w := range works {
		run.AddWork(w)
	}
	for _, s := range synonyms {
		run.AddSynonym(s)
	}
	return run
}

// HasArea reports whether area is active in the scope.
func (r *Run) HasArea(area string) bool { return r.areas[area] }

// Areas returns the active areas, sorted.
func (r *Run) Areas() []string {
	areas := make([]string, 0, len(r.areas))
	for a := range r.areas {
		areas = append(areas, a)
	}
	sort.Strings(areas)
	return areas
}

// Works returns the works of area in sequence order.
func (r *Run) Works(area string) []Work {
	idx := r.works[area]
	works := make([]Work, len(idx))
	for i, w := range idx {
		works[i] = w.Work
	}
	return works
}

func (r *Run) Work(id string) (Work, bool) {
	w, ok := r.byID[id]
	return w, ok
}

// MaxSequence returns the highest sequence of area, 0 when it has no works.
func (r *Run) MaxSequence(area string) int {
	idx := r.works[area]
	if len(idx) == 0 {
		return 0
	}
	return idx[len(idx)-1].Sequence
}

// AddWork adds w to the run catalog, keeping sequence order. A known id is replaced.
func (r *Run) AddWork(w Work) {
	if _, ok := r.byID[w.ID]; ok {
		r.removeWork(w.ID)
	}
	r.byID[w.ID] = w

	idx := r.works[w.Area]
	i := sort.Search(len(idx), func(i int) bool { return idx[i].Sequence > w.Sequence })
	idx = append(idx, indexedWork{})
	copy(idx[i+1:], idx[i:])
	idx[i] = indexWork(w)
	r.works[w.Area] = idx
}

func (r *Run) removeWork(id string) {
	old := r.byID[id]
	idx := r.works[old.Area]
	for i := range idx {
		if idx[i].ID == id {
			r.works[old.Area] = append(idx[:i], idx[i+1:]...)
			break
		}
	}
	delete(r.byID, id)
}

// AddSynonym makes a learned synonym visible to later matches of the run.
func (r *Run) AddSynonym(s Synonym) {
	bySyn, ok := r.synonyms[s.Area]
	if !ok {
		bySyn = make(map[string]Synonym)
		r.synonyms[s.Area] = bySyn
	}
	bySyn[s.RawText] = s
}

// Match matches raw against the works of area.
func (r *Run) Match(m Matcher, raw, area string) MatchResult {
	return m.match(raw, area, r.works[area], r.synonyms[area])
}

// Extended returns the work already created by this run for the canonical text in area.
func (r *Run) Extended(canonical, area string) (Work, bool) {
	w, ok := r.extended[extensionKey{canonical, area}]
	return w, ok
}

func (r *Run) rememberExtension(canonical string, w Work) {
	r.extended[extensionKey{canonical, w.Area}] = w
}

// Predecessors returns the works of the run that precede w, in sequence order.
func (r *Run) Predecessors(w Work) []Work {
	var preds []Work
	for _, p := range r.works[w.Area] {
		if Precedes(p.Work, w) {
			preds = append(preds, p.Work)
		}
	}
	return preds
}
