package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/montree/core"
	"github.com/trezcool/montree/core/curriculum"
	"github.com/trezcool/montree/storage/database"
)

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// SQLiteConfig is a configuration pointing at a fresh in-memory sqlite database.
func SQLiteConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		Database: core.DatabaseConfig{Engine: core.EngineSQLite, Path: ":memory:"},
	}
}

// OpenDB opens a migrated in-memory sqlite database, closed with the test.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	conf := SQLiteConfig()
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

// CreateWorks activates area in scope and creates one Work per name, numbered from sequence 1.
func CreateWorks(t *testing.T, repo curriculum.CatalogRepository, scopeID, area string, names ...string) []curriculum.Work {
	t.Helper()
	ctx := context.Background()
	if err := repo.ActivateAreas(ctx, scopeID, area); err != nil {
		t.Fatalf("CreateWorks() failed: %v", err)
	}
	existing, err := repo.ListWorks(ctx, scopeID, area)
	if err != nil {
		t.Fatalf("CreateWorks() failed: %v", err)
	}
	works := make([]curriculum.Work, 0, len(names))
	for i, name := range names {
		w, err := repo.CreateWork(ctx, curriculum.NewWork{
			ID:       fmt.Sprintf("%s-%d", area, len(existing)+i+1),
			ScopeID:  scopeID,
			Area:     area,
			Name:     name,
			Sequence: len(existing) + i + 1,
		})
		if err != nil {
			t.Fatalf("CreateWorks() failed: %v", err)
		}
		works = append(works, w)
	}
	return works
}

// CreateAssignment stores an unresolved assignment. createdAt orders assignments within a scope.
func CreateAssignment(
	t *testing.T,
	repo curriculum.AssignmentRepository,
	scopeID, childID, area, workName, status string,
	createdAt ...time.Time,
) curriculum.Assignment {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	asg := curriculum.Assignment{
		ID:             uuid.New().String(),
		ScopeID:        scopeID,
		ChildID:        childID,
		Area:           area,
		WorkName:       workName,
		ProgressStatus: status,
		CreatedAt:      tstamp,
	}
	if err := repo.CreateAssignments(context.Background(), asg); err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}
