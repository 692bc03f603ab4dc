package boiledrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/montree/core"
	"github.com/trezcool/montree/core/curriculum"
)

// rows per statement, keeps bind vars far below the sqlite and postgres limits
const chunkSize = 200

type progressRow struct {
	ChildID   string    `boil:"child_id"`
	WorkID    string    `boil:"work_id"`
	Status    int       `boil:"status"`
	UpdatedAt time.Time `boil:"updated_at"`
}

func (r progressRow) progress() curriculum.Progress {
	return curriculum.Progress{
		ChildID:   r.ChildID,
		WorkID:    r.WorkID,
		Status:    curriculum.Status(r.Status),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type progressRepository struct {
	db       *sql.DB
	useIndex bool
}

var _ curriculum.ProgressRepository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sql.DB, engine string) curriculum.ProgressRepository {
	return &progressRepository{db: db, useIndex: core.UseIndexPlaceholders(engine)}
}

func (repo progressRepository) getExec(exec []boil.ContextExecutor) boil.ContextExecutor {
	if len(exec) > 0 {
		return exec[0]
	}
	return repo.db
}

func (repo progressRepository) GetStatuses(ctx context.Context, keys []curriculum.ProgressKey) (map[curriculum.ProgressKey]curriculum.Status, error) {
	statuses := make(map[curriculum.ProgressKey]curriculum.Status, len(keys))
	for start := 0; start < len(keys); start += chunkSize {
		end := start + chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		args := make([]interface{}, 0, 2*len(chunk))
		for _, k := range chunk {
			args = append(args, k.ChildID, k.WorkID)
		}
		q := "SELECT child_id, work_id, status, updated_at FROM child_work_progress WHERE (child_id, work_id) IN (" +
			strmangle.Placeholders(repo.useIndex, len(args), 1, 2) + ")"

		var rows []progressRow
		if err := queries.Raw(q, args...).Bind(ctx, repo.db, &rows); err != nil {
			return nil, errors.Wrap(err, "selecting progress")
		}
		for _, r := range rows {
			statuses[curriculum.ProgressKey{ChildID: r.ChildID, WorkID: r.WorkID}] = curriculum.Status(r.Status)
		}
	}
	return statuses, nil
}

// UpsertStatuses writes every update in a single transaction.
// The store only lets a status go up, whatever the caller merged against.
func (repo progressRepository) UpsertStatuses(ctx context.Context, updates []curriculum.ProgressUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	now := time.Now().UTC()
	for start := 0; start < len(updates); start += chunkSize {
		end := start + chunkSize
		if end > len(updates) {
			end = len(updates)
		}
		n, err := repo.upsertChunk(ctx, updates[start:end], now, tx)
		if err != nil {
			return 0, err
		}
		total += n
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing progress")
	}
	return total, nil
}

func (repo progressRepository) upsertChunk(ctx context.Context, chunk []curriculum.ProgressUpdate, now time.Time, exec ...boil.ContextExecutor) (int, error) {
	args := make([]interface{}, 0, 4*len(chunk))
	for _, u := range chunk {
		args = append(args, u.ChildID, u.WorkID, int(u.Status), now)
	}
	q := "INSERT INTO child_work_progress (child_id, work_id, status, updated_at) VALUES " +
		strmangle.Placeholders(repo.useIndex, len(args), 1, 4) + `
		ON CONFLICT (child_id, work_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
		WHERE child_work_progress.status < excluded.status`

	res, err := queries.Raw(q, args...).ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return 0, errors.Wrap(err, "upserting progress")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "upserting progress")
	}
	return int(n), nil
}

func (repo progressRepository) ListProgress(ctx context.Context, childID string) ([]curriculum.Progress, error) {
	q := "SELECT child_id, work_id, status, updated_at FROM child_work_progress WHERE child_id = " +
		strmangle.Placeholders(repo.useIndex, 1, 1, 1) + " ORDER BY work_id"

	var rows []progressRow
	if err := queries.Raw(q, childID).Bind(ctx, repo.db, &rows); err != nil {
		return nil, errors.Wrap(err, "selecting progress")
	}
	progress := make([]curriculum.Progress, 0, len(rows))
	for _, r := range rows {
		progress = append(progress, r.progress())
	}
	return progress, nil
}
