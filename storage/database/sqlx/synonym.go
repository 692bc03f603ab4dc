package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/montree/core/curriculum"
)

type synonymRow struct {
	ScopeID    string    `db:"scope_id"`
	Area       string    `db:"area"`
	RawText    string    `db:"raw_text"`
	WorkID     string    `db:"work_id"`
	Confidence int       `db:"confidence"`
	UsageCount int       `db:"usage_count"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r synonymRow) synonym() curriculum.Synonym {
	return curriculum.Synonym{
		ScopeID:    r.ScopeID,
		Area:       r.Area,
		RawText:    r.RawText,
		WorkID:     r.WorkID,
		Confidence: r.Confidence,
		UsageCount: r.UsageCount,
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

type synonymRepository struct {
	db *sqlx.DB
}

var _ curriculum.SynonymRepository = (*synonymRepository)(nil) // interface compliance check

func NewSynonymRepository(db *sqlx.DB) curriculum.SynonymRepository {
	return &synonymRepository{db: db}
}

func (repo *synonymRepository) ListSynonyms(ctx context.Context, scopeID string) ([]curriculum.Synonym, error) {
	q := repo.db.Rebind(`
		SELECT scope_id, area, raw_text, work_id, confidence, usage_count, created_at, updated_at
		FROM curriculum_synonyms WHERE scope_id = ? ORDER BY area, raw_text`)

	var rows []synonymRow
	if err := repo.db.SelectContext(ctx, &rows, q, scopeID); err != nil {
		return nil, errors.Wrap(err, "selecting synonyms")
	}
	syns := make([]curriculum.Synonym, 0, len(rows))
	for _, r := range rows {
		syns = append(syns, r.synonym())
	}
	return syns, nil
}

func (repo *synonymRepository) UpsertSynonym(ctx context.Context, syn curriculum.Synonym) (curriculum.Synonym, error) {
	now := syn.UpdatedAt.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}
	row := synonymRow{
		ScopeID:    syn.ScopeID,
		Area:       syn.Area,
		RawText:    syn.RawText,
		WorkID:     syn.WorkID,
		Confidence: syn.Confidence,
		UsageCount: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	q := `
		INSERT INTO curriculum_synonyms (scope_id, area, raw_text, work_id, confidence, usage_count, created_at, updated_at)
		VALUES (:scope_id, :area, :raw_text, :work_id, :confidence, :usage_count, :created_at, :updated_at)
		ON CONFLICT (scope_id, area, raw_text) DO UPDATE SET
			work_id = excluded.work_id,
			confidence = excluded.confidence,
			usage_count = curriculum_synonyms.usage_count + 1,
			updated_at = excluded.updated_at`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return curriculum.Synonym{}, errors.Wrap(err, "upserting synonym")
	}

	var stored synonymRow
	sel := repo.db.Rebind(`
		SELECT scope_id, area, raw_text, work_id, confidence, usage_count, created_at, updated_at
		FROM curriculum_synonyms WHERE scope_id = ? AND area = ? AND raw_text = ?`)
	if err := repo.db.GetContext(ctx, &stored, sel, syn.ScopeID, syn.Area, syn.RawText); err != nil {
		return curriculum.Synonym{}, errors.Wrap(err, "selecting synonym")
	}
	return stored.synonym(), nil
}
