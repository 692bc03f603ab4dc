package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/montree/core/curriculum"
)

const assignmentColumns = "id, scope_id, child_id, area, work_name, work_id, progress_status, created_at"

type assignmentRow struct {
	ID             string      `db:"id"`
	ScopeID        string      `db:"scope_id"`
	ChildID        string      `db:"child_id"`
	Area           string      `db:"area"`
	WorkName       string      `db:"work_name"`
	WorkID         null.String `db:"work_id"`
	ProgressStatus string      `db:"progress_status"`
	CreatedAt      time.Time   `db:"created_at"`
}

func (r assignmentRow) assignment() curriculum.Assignment {
	return curriculum.Assignment{
		ID:             r.ID,
		ScopeID:        r.ScopeID,
		ChildID:        r.ChildID,
		Area:           r.Area,
		WorkName:       r.WorkName,
		WorkID:         r.WorkID,
		ProgressStatus: r.ProgressStatus,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ curriculum.AssignmentRepository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) curriculum.AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignments(ctx context.Context, asgs ...curriculum.Assignment) error {
	if len(asgs) == 0 {
		return nil
	}
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `
		INSERT INTO weekly_assignments (` + assignmentColumns + `)
		VALUES (:id, :scope_id, :child_id, :area, :work_name, :work_id, :progress_status, :created_at)`
	for _, a := range asgs {
		row := assignmentRow{
			ID:             a.ID,
			ScopeID:        a.ScopeID,
			ChildID:        a.ChildID,
			Area:           a.Area,
			WorkName:       a.WorkName,
			WorkID:         a.WorkID,
			ProgressStatus: a.ProgressStatus,
			CreatedAt:      a.CreatedAt.UTC(),
		}
		if _, err = tx.NamedExecContext(ctx, q, row); err != nil {
			return errors.Wrapf(err, "inserting assignment %s", a.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "committing assignments")
}

func (repo *assignmentRepository) list(ctx context.Context, scopeID string, linked bool) ([]curriculum.Assignment, error) {
	cond := "work_id IS NULL"
	if linked {
		cond = "work_id IS NOT NULL"
	}
	q := repo.db.Rebind("SELECT " + assignmentColumns + " FROM weekly_assignments WHERE scope_id = ? AND " + cond + " ORDER BY created_at, id")

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, scopeID); err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	asgs := make([]curriculum.Assignment, 0, len(rows))
	for _, r := range rows {
		asgs = append(asgs, r.assignment())
	}
	return asgs, nil
}

func (repo *assignmentRepository) ListUnresolved(ctx context.Context, scopeID string) ([]curriculum.Assignment, error) {
	return repo.list(ctx, scopeID, false)
}

func (repo *assignmentRepository) ListLinked(ctx context.Context, scopeID string) ([]curriculum.Assignment, error) {
	return repo.list(ctx, scopeID, true)
}

// SetWorkLink only writes unlinked assignments, so an existing link is never replaced.
func (repo *assignmentRepository) SetWorkLink(ctx context.Context, assignmentID, workID string) error {
	q := repo.db.Rebind("UPDATE weekly_assignments SET work_id = ? WHERE id = ? AND work_id IS NULL")
	res, err := repo.db.ExecContext(ctx, q, workID, assignmentID)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	if n == 1 {
		return nil
	}

	var linked null.String
	q = repo.db.Rebind("SELECT work_id FROM weekly_assignments WHERE id = ?")
	if err = repo.db.GetContext(ctx, &linked, q, assignmentID); err != nil {
		if err == sql.ErrNoRows {
			return curriculum.ErrAssignmentNotFound
		}
		return errors.Wrap(err, "selecting assignment")
	}
	return curriculum.ErrAlreadyLinked
}
