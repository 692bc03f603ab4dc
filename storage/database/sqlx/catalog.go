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

const workColumns = "id, scope_id, area, name, name_alt, sequence, is_custom, created_at"

type workRow struct {
	ID        string      `db:"id"`
	ScopeID   string      `db:"scope_id"`
	Area      string      `db:"area"`
	Name      string      `db:"name"`
	NameAlt   null.String `db:"name_alt"`
	Sequence  int         `db:"sequence"`
	IsCustom  bool        `db:"is_custom"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r workRow) work() curriculum.Work {
	return curriculum.Work{
		ID:        r.ID,
		ScopeID:   r.ScopeID,
		Area:      r.Area,
		Name:      r.Name,
		AltName:   r.NameAlt,
		Sequence:  r.Sequence,
		IsCustom:  r.IsCustom,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type catalogRepository struct {
	db *sqlx.DB
}

var _ curriculum.CatalogRepository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) curriculum.CatalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) ListAreas(ctx context.Context, scopeID string) ([]string, error) {
	var areas []string
	q := repo.db.Rebind("SELECT area FROM curriculum_areas WHERE scope_id = ? AND is_active ORDER BY area")
	if err := repo.db.SelectContext(ctx, &areas, q, scopeID); err != nil {
		return nil, errors.Wrap(err, "selecting areas")
	}
	return areas, nil
}

func (repo *catalogRepository) ActivateAreas(ctx context.Context, scopeID string, areas ...string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := tx.Rebind(`
		INSERT INTO curriculum_areas (scope_id, area, is_active) VALUES (?, ?, TRUE)
		ON CONFLICT (scope_id, area) DO UPDATE SET is_active = TRUE`)
	for _, a := range areas {
		if _, err = tx.ExecContext(ctx, q, scopeID, a); err != nil {
			return errors.Wrapf(err, "activating area %s", a)
		}
	}
	return errors.Wrap(tx.Commit(), "committing areas")
}

func (repo *catalogRepository) ListWorks(ctx context.Context, scopeID string, areas ...string) ([]curriculum.Work, error) {
	q := "SELECT " + workColumns + " FROM curriculum_works WHERE scope_id = ?"
	args := []interface{}{scopeID}
	if len(areas) > 0 {
		var err error
		q, args, err = sqlx.In(q+" AND area IN (?)", scopeID, areas)
		if err != nil {
			return nil, errors.Wrap(err, "building works query")
		}
	}
	q = repo.db.Rebind(q + " ORDER BY area, sequence")

	var rows []workRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting works")
	}
	works := make([]curriculum.Work, 0, len(rows))
	for _, r := range rows {
		works = append(works, r.work())
	}
	return works, nil
}

func (repo *catalogRepository) GetWork(ctx context.Context, scopeID, id string) (curriculum.Work, error) {
	var row workRow
	q := repo.db.Rebind("SELECT " + workColumns + " FROM curriculum_works WHERE scope_id = ? AND id = ?")
	if err := repo.db.GetContext(ctx, &row, q, scopeID, id); err != nil {
		if err == sql.ErrNoRows {
			return curriculum.Work{}, curriculum.ErrWorkNotFound
		}
		return curriculum.Work{}, errors.Wrap(err, "selecting work")
	}
	return row.work(), nil
}

func (repo *catalogRepository) CreateWork(ctx context.Context, nw curriculum.NewWork) (curriculum.Work, error) {
	row := workRow{
		ID:        nw.ID,
		ScopeID:   nw.ScopeID,
		Area:      nw.Area,
		Name:      nw.Name,
		NameAlt:   nw.AltName,
		Sequence:  nw.Sequence,
		IsCustom:  nw.IsCustom,
		CreatedAt: time.Now().UTC(),
	}
	q := `
		INSERT INTO curriculum_works (` + workColumns + `)
		VALUES (:id, :scope_id, :area, :name, :name_alt, :sequence, :is_custom, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return curriculum.Work{}, errors.Wrap(err, "inserting work")
	}
	return row.work(), nil
}
