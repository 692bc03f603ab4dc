package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/montree/core/curriculum"
)

type progressRepository struct {
	db *progressTable
}

var _ curriculum.ProgressRepository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) curriculum.ProgressRepository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) GetStatuses(_ context.Context, keys []curriculum.ProgressKey) (map[curriculum.ProgressKey]curriculum.Status, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	statuses := make(map[curriculum.ProgressKey]curriculum.Status, len(keys))
	for _, k := range keys {
		if p, ok := repo.db.table[k]; ok {
			statuses[k] = p.Status
		}
	}
	return statuses, nil
}

// UpsertStatuses mirrors the SQL stores: a row is only rewritten when its status goes up.
func (repo *progressRepository) UpsertStatuses(_ context.Context, updates []curriculum.ProgressUpdate) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	now := time.Now().UTC()
	var n int
	for _, u := range updates {
		k := u.Key()
		if p, ok := repo.db.table[k]; ok && p.Status >= u.Status {
			continue
		}
		repo.db.table[k] = &curriculum.Progress{ChildID: u.ChildID, WorkID: u.WorkID, Status: u.Status, UpdatedAt: now}
		n++
	}
	return n, nil
}

func (repo *progressRepository) ListProgress(_ context.Context, childID string) ([]curriculum.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	progress := []curriculum.Progress{}
	for k, p := range repo.db.table {
		if k.ChildID == childID {
			progress = append(progress, *p)
		}
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].WorkID < progress[j].WorkID })
	return progress, nil
}
