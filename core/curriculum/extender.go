package curriculum

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/montree/core"
)

const (
	customIDPrefix = "custom"
	maxSlugLen     = 50
)

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Extender appends custom works to a scope's catalog when nothing matches.
type Extender struct {
	repo CatalogRepository
	now  func() time.Time
}

func NewExtender(repo CatalogRepository) *Extender {
	return &Extender{repo: repo, now: time.Now}
}

// Extend creates a custom Work named after raw at the end of area and adds it to the run catalog.
//
// The id embeds a slug of the name and a random suffix, so extending the same text in separate
// runs never collides. Reuse within a run is the caller's job, through Run.Extended.
func (e *Extender) Extend(ctx context.Context, run *Run, raw, area string) (Work, error) {
	name := core.CleanString(raw)
	if Normalize(name) == "" {
		return Work{}, ErrEmptyWorkName
	}

	nw := NewWork{
		ID:       workID(customIDPrefix, name),
		ScopeID:  run.ScopeID,
		Area:     area,
		Name:     name,
		Sequence: run.MaxSequence(area) + 1,
		IsCustom: true,
	}
	w, err := e.repo.CreateWork(ctx, nw)
	if err != nil {
		return Work{}, &ExtensionWriteError{Name: name, Err: err}
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = e.now().UTC()
	}
	run.AddWork(w)
	return w, nil
}

// workID builds `<prefix>_<slug>_<suffix>` where slug is at most maxSlugLen characters of name.
func workID(prefix, name string) string {
	slug := strings.Trim(slugRegex.ReplaceAllString(Normalize(name), "_"), "_")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "_")
	}
	if slug == "" {
		slug = "work"
	}
	return prefix + "_" + slug + "_" + uuid.New().String()[:8]
}
