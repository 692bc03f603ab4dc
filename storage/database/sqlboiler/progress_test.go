package boiledrepos_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/montree/core"
	"github.com/trezcool/montree/core/curriculum"
	"github.com/trezcool/montree/storage/database/sqlboiler"
	"github.com/trezcool/montree/tests"
)

func update(child, work string, s curriculum.Status) curriculum.ProgressUpdate {
	return curriculum.ProgressUpdate{ChildID: child, WorkID: work, Status: s}
}

func TestProgressRepository_UpsertStatuses(t *testing.T) {
	repo := boiledrepos.NewProgressRepository(testutil.OpenDB(t), core.EngineSQLite)
	ctx := context.Background()

	n, err := repo.UpsertStatuses(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.UpsertStatuses(ctx, []curriculum.ProgressUpdate{
		update("child-1", "rods", curriculum.StatusMastered),
		update("child-1", "stair", curriculum.StatusPresented),
		update("child-2", "rods", curriculum.StatusPracticing),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	tests := []struct {
		name    string
		update  curriculum.ProgressUpdate
		wantN   int
		wantNow curriculum.Status
	}{
		{name: "upgrade", update: update("child-1", "stair", curriculum.StatusPracticing), wantN: 1, wantNow: curriculum.StatusPracticing},
		{name: "same status", update: update("child-1", "stair", curriculum.StatusPracticing), wantN: 0, wantNow: curriculum.StatusPracticing},
		{name: "downgrade ignored", update: update("child-1", "rods", curriculum.StatusPresented), wantN: 0, wantNow: curriculum.StatusMastered},
		{name: "new pair", update: update("child-2", "stair", curriculum.StatusNotStarted), wantN: 1, wantNow: curriculum.StatusNotStarted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := repo.UpsertStatuses(ctx, []curriculum.ProgressUpdate{tt.update})
			require.NoError(t, err)
			assert.Equal(t, tt.wantN, n)

			got, err := repo.GetStatuses(ctx, []curriculum.ProgressKey{tt.update.Key()})
			require.NoError(t, err)
			assert.Equal(t, tt.wantNow, got[tt.update.Key()])
		})
	}

	progress, err := repo.ListProgress(ctx, "child-1")
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, "rods", progress[0].WorkID)
	assert.Equal(t, curriculum.StatusMastered, progress[0].Status)
	assert.Equal(t, "stair", progress[1].WorkID)
	assert.False(t, progress[1].UpdatedAt.IsZero())

	progress, err = repo.ListProgress(ctx, "child-9")
	require.NoError(t, err)
	assert.Empty(t, progress)
}

func TestProgressRepository_Chunks(t *testing.T) {
	repo := boiledrepos.NewProgressRepository(testutil.OpenDB(t), core.EngineSQLite)
	ctx := context.Background()

	var updates []curriculum.ProgressUpdate
	var keys []curriculum.ProgressKey
	for i := 0; i < 450; i++ {
		u := update(fmt.Sprintf("child-%d", i%7), fmt.Sprintf("work-%03d", i), curriculum.Status(i%4))
		updates = append(updates, u)
		keys = append(keys, u.Key())
	}
	n, err := repo.UpsertStatuses(ctx, updates)
	require.NoError(t, err)
	assert.Equal(t, 450, n)

	keys = append(keys, curriculum.ProgressKey{ChildID: "child-0", WorkID: "missing"})
	got, err := repo.GetStatuses(ctx, keys)
	require.NoError(t, err)
	assert.Len(t, got, 450)
	for _, u := range updates {
		assert.Equal(t, u.Status, got[u.Key()])
	}
}

func TestProgressRepository_UpsertIsAtomic(t *testing.T) {
	repo := boiledrepos.NewProgressRepository(testutil.OpenDB(t), core.EngineSQLite)
	ctx := context.Background()

	// the status check constraint rejects the last row, so nothing is written
	_, err := repo.UpsertStatuses(ctx, []curriculum.ProgressUpdate{
		update("child-1", "rods", curriculum.StatusMastered),
		update("child-1", "stair", curriculum.Status(7)),
	})
	require.Error(t, err)

	got, err := repo.GetStatuses(ctx, []curriculum.ProgressKey{{ChildID: "child-1", WorkID: "rods"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}
