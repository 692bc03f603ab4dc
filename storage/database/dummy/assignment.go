package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/montree/core/curriculum"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ curriculum.AssignmentRepository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) curriculum.AssignmentRepository {
	return &assignmentRepository{db: db.assignments}
}

func (repo *assignmentRepository) CreateAssignments(_ context.Context, asgs ...curriculum.Assignment) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, a := range asgs {
		if _, exists := repo.db.table[a.ID]; exists {
			return errors.Errorf("assignment %s already exists", a.ID)
		}
	}
	for i := range asgs {
		a := asgs[i]
		repo.db.table[a.ID] = &a
	}
	return nil
}

func (repo *assignmentRepository) query(scopeID string, linked bool) []curriculum.Assignment {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var asgs []curriculum.Assignment
	for _, a := range repo.db.table {
		if a.ScopeID == scopeID && a.IsResolved() == linked {
			asgs = append(asgs, *a)
		}
	}
	sort.Slice(asgs, func(i, j int) bool {
		if !asgs[i].CreatedAt.Equal(asgs[j].CreatedAt) {
			return asgs[i].CreatedAt.Before(asgs[j].CreatedAt)
		}
		return asgs[i].ID < asgs[j].ID
	})
	return asgs
}

func (repo *assignmentRepository) ListUnresolved(_ context.Context, scopeID string) ([]curriculum.Assignment, error) {
	return repo.query(scopeID, false), nil
}

func (repo *assignmentRepository) ListLinked(_ context.Context, scopeID string) ([]curriculum.Assignment, error) {
	return repo.query(scopeID, true), nil
}

func (repo *assignmentRepository) SetWorkLink(_ context.Context, assignmentID, workID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[assignmentID]
	if !ok {
		return curriculum.ErrAssignmentNotFound
	}
	if a.IsResolved() {
		return curriculum.ErrAlreadyLinked
	}
	a.WorkID = null.StringFrom(workID)
	return nil
}
