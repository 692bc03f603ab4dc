package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/montree/core/curriculum"
)

type synonymRepository struct {
	db *synonymTable
}

var _ curriculum.SynonymRepository = (*synonymRepository)(nil) // interface compliance check

func NewSynonymRepository(db *DB) curriculum.SynonymRepository {
	return &synonymRepository{db: db.synonyms}
}

func (repo *synonymRepository) ListSynonyms(_ context.Context, scopeID string) ([]curriculum.Synonym, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var syns []curriculum.Synonym
	for _, s := range repo.db.table {
		if s.ScopeID == scopeID {
			syns = append(syns, *s)
		}
	}
	sort.Slice(syns, func(i, j int) bool {
		if syns[i].Area != syns[j].Area {
			return syns[i].Area < syns[j].Area
		}
		return syns[i].RawText < syns[j].RawText
	})
	return syns, nil
}

func (repo *synonymRepository) UpsertSynonym(_ context.Context, syn curriculum.Synonym) (curriculum.Synonym, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	k := key(syn.ScopeID, syn.Area, syn.RawText)
	if old, ok := repo.db.table[k]; ok {
		syn.UsageCount = old.UsageCount + 1
	}
	repo.db.table[k] = &syn
	return syn, nil
}
