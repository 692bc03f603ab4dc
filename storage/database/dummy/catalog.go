package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/montree/core/curriculum"
)

type catalogRepository struct {
	db *catalogTables
}

var _ curriculum.CatalogRepository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) curriculum.CatalogRepository {
	return &catalogRepository{db: db.catalog}
}

func (repo *catalogRepository) ListAreas(_ context.Context, scopeID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	areas := make([]string, 0, len(curriculum.AllAreas))
	for area, active := range repo.db.areas[scopeID] {
		if active {
			areas = append(areas, area)
		}
	}
	sort.Strings(areas)
	return areas, nil
}

func (repo *catalogRepository) ActivateAreas(_ context.Context, scopeID string, areas ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	active, ok := repo.db.areas[scopeID]
	if !ok {
		active = make(map[string]bool)
		repo.db.areas[scopeID] = active
	}
	for _, a := range areas {
		active[a] = true
	}
	return nil
}

func (repo *catalogRepository) ListWorks(_ context.Context, scopeID string, areas ...string) ([]curriculum.Work, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[string]bool, len(areas))
	for _, a := range areas {
		wanted[a] = true
	}
	var works []curriculum.Work
	for _, w := range repo.db.works {
		if w.ScopeID == scopeID && (len(wanted) == 0 || wanted[w.Area]) {
			works = append(works, *w)
		}
	}
	sort.Slice(works, func(i, j int) bool {
		if works[i].Area != works[j].Area {
			return works[i].Area < works[j].Area
		}
		return works[i].Sequence < works[j].Sequence
	})
	return works, nil
}

func (repo *catalogRepository) GetWork(_ context.Context, scopeID, id string) (curriculum.Work, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if w, ok := repo.db.works[key(scopeID, id)]; ok {
		return *w, nil
	}
	return curriculum.Work{}, curriculum.ErrWorkNotFound
}

func (repo *catalogRepository) CreateWork(_ context.Context, nw curriculum.NewWork) (curriculum.Work, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	k := key(nw.ScopeID, nw.ID)
	if _, exists := repo.db.works[k]; exists {
		return curriculum.Work{}, errors.Errorf("work %s already exists", nw.ID)
	}
	for _, w := range repo.db.works {
		if w.ScopeID == nw.ScopeID && w.Area == nw.Area && w.Sequence == nw.Sequence {
			return curriculum.Work{}, errors.Errorf("sequence %d of %s is taken", nw.Sequence, nw.Area)
		}
	}

	w := curriculum.Work{
		ID:        nw.ID,
		ScopeID:   nw.ScopeID,
		Area:      nw.Area,
		Name:      nw.Name,
		AltName:   nw.AltName,
		Sequence:  nw.Sequence,
		IsCustom:  nw.IsCustom,
		CreatedAt: time.Now().UTC(),
	}
	repo.db.works[k] = &w
	return w, nil
}
