package curriculum

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/montree/core"
)

type (
	CatalogRepository interface {
		// ListAreas returns the active areas of the scope.
		ListAreas(ctx context.Context, scopeID string) ([]string, error)
		ActivateAreas(ctx context.Context, scopeID string, areas ...string) error
		// ListWorks returns the works of the scope ordered by area then sequence.
		// No areas means all areas.
		ListWorks(ctx context.Context, scopeID string, areas ...string) ([]Work, error)
		GetWork(ctx context.Context, scopeID, id string) (Work, error)
		CreateWork(ctx context.Context, nw NewWork) (Work, error)
	}

	AssignmentRepository interface {
		CreateAssignments(ctx context.Context, assignments ...Assignment) error
		ListUnresolved(ctx context.Context, scopeID string) ([]Assignment, error)
		ListLinked(ctx context.Context, scopeID string) ([]Assignment, error)
		// SetWorkLink links an unresolved assignment. It fails with ErrAlreadyLinked otherwise.
		SetWorkLink(ctx context.Context, assignmentID, workID string) error
	}

	ProgressRepository interface {
		// GetStatuses returns the stored statuses of keys; absent pairs are omitted.
		GetStatuses(ctx context.Context, keys []ProgressKey) (map[ProgressKey]Status, error)
		// UpsertStatuses writes all updates in one transaction and returns the number of rows written.
		UpsertStatuses(ctx context.Context, updates []ProgressUpdate) (int, error)
		ListProgress(ctx context.Context, childID string) ([]Progress, error)
	}

	SynonymRepository interface {
		ListSynonyms(ctx context.Context, scopeID string) ([]Synonym, error)
		// UpsertSynonym stores syn, bumping the usage count when {scope, area, raw text} exists.
		UpsertSynonym(ctx context.Context, syn Synonym) (Synonym, error)
	}

	Repositories struct {
		Catalog     CatalogRepository
		Assignments AssignmentRepository
		Progress    ProgressRepository
		Synonyms    SynonymRepository
	}

	Options struct {
		Thresholds      Thresholds
		MaxSuggestions  int
		Timeout         time.Duration // whole run, 0 for none
		PersistTimeout  time.Duration // progress write, once matching is over
		MergeAttempts   uint
		MergeRetryDelay time.Duration
	}

	Service struct {
		repos    Repositories
		matcher  Matcher
		extender *Extender
		opts     Options
		locks    *scopeLocks
		log      core.Logger
		now      func() time.Time
	}
)

// NewOptions reads the reconciliation options from the configuration.
func NewOptions(conf core.ReconcileConfig) Options {
	return Options{
		Thresholds: Thresholds{
			Auto:    conf.AutoThreshold,
			Suggest: conf.SuggestThreshold,
			Manual:  conf.ManualThreshold,
		},
		MaxSuggestions:  conf.MaxSuggestions,
		Timeout:         conf.Timeout,
		PersistTimeout:  conf.PersistTimeout,
		MergeAttempts:   conf.MergeAttempts,
		MergeRetryDelay: conf.MergeRetryDelay,
	}
}

func NewService(repos Repositories, opts Options, logger core.Logger) (*Service, error) {
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds
	}
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = defaultMaxSuggestions
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = 30 * time.Second
	}
	if opts.MergeAttempts == 0 {
		opts.MergeAttempts = 1
	}
	return &Service{
		repos:    repos,
		matcher:  Matcher{Thresholds: opts.Thresholds, MaxSuggestions: opts.MaxSuggestions},
		extender: NewExtender(repos.Catalog),
		opts:     opts,
		locks:    newScopeLocks(),
		log:      logger,
		now:      time.Now,
	}, nil
}

// Thresholds returns the classification thresholds used by both the preview and the batch.
func (svc *Service) Thresholds() Thresholds { return svc.opts.Thresholds }

func (svc *Service) ListWorks(ctx context.Context, scopeID string, areas ...string) ([]Work, error) {
	norm := make([]string, 0, len(areas))
	for _, a := range areas {
		norm = append(norm, NormalizeArea(a))
	}
	return svc.repos.Catalog.ListWorks(ctx, scopeID, norm...)
}

// Preview is an interactive match of one raw text.
type Preview struct {
	MatchResult
	Mode     Mode `json:"-"`
	AutoLink bool `json:"auto_link"`
}

// Preview matches a raw text the way a teacher reviewing an assignment sees it.
// Only auto classifications link without review.
func (svc *Service) Preview(ctx context.Context, scopeID string, req PreviewRequest) (Preview, error) {
	req.Clean()
	run, err := svc.loadRun(ctx, scopeID, req.Area)
	if err != nil {
		return Preview{}, err
	}
	if !run.HasArea(req.Area) {
		err := errors.Errorf("area %q is not active", req.Area)
		return Preview{}, core.NewValidationError(err, core.FieldError{Field: "area", Error: err.Error()})
	}
	res := run.Match(svc.matcher, req.RawText, req.Area)
	return Preview{
		MatchResult: res,
		Mode:        ModeInteractive,
		AutoLink:    res.Classification.Linkable(ModeInteractive),
	}, nil
}

// RecordCorrection remembers the teacher's choice of Work for a raw text.
// Later matches of the same canonical text in that area hit the synonym tier.
func (svc *Service) RecordCorrection(ctx context.Context, corr Correction) (Synonym, error) {
	corr.Clean()
	canonical := Normalize(corr.RawText)
	if canonical == "" {
		return Synonym{}, core.NewValidationError(ErrEmptyWorkName, core.FieldError{Field: "raw_text", Error: ErrEmptyWorkName.Error()})
	}

	w, err := svc.repos.Catalog.GetWork(ctx, corr.ScopeID, corr.WorkID)
	if err != nil {
		if errors.Cause(err) == ErrWorkNotFound {
			return Synonym{}, core.NewValidationError(err, core.FieldError{Field: "work_id", Error: err.Error()})
		}
		return Synonym{}, err
	}
	if w.Area != corr.Area {
		err := errors.Errorf("work %s belongs to area %s", w.ID, w.Area)
		return Synonym{}, core.NewValidationError(err, core.FieldError{Field: "work_id", Error: err.Error()})
	}

	syn, err := svc.repos.Synonyms.UpsertSynonym(ctx, Synonym{
		ScopeID:    corr.ScopeID,
		Area:       corr.Area,
		RawText:    canonical,
		WorkID:     w.ID,
		Confidence: MaxConfidence,
		UsageCount: 1,
		UpdatedAt:  svc.now().UTC(),
	})
	if err != nil {
		return Synonym{}, errors.Wrap(err, "storing correction")
	}
	svc.log.Info("correction recorded", "scope", corr.ScopeID, "area", corr.Area, "raw_text", canonical, "work_id", w.ID)
	return syn, nil
}

// NewAssignment contains information needed to record an unresolved assignment.
type NewAssignment struct {
	ChildID        string `json:"child_id" validate:"required,ident"`
	Area           string `json:"area" validate:"omitempty,area"`
	WorkName       string `json:"work_name"`
	ProgressStatus string `json:"progress_status" validate:"omitempty,status"`
}

// AddAssignments records raw assignments of a scope, unlinked.
func (svc *Service) AddAssignments(ctx context.Context, scopeID string, nas ...NewAssignment) ([]Assignment, error) {
	now := svc.now().UTC()
	asgs := make([]Assignment, 0, len(nas))
	for _, na := range nas {
		asgs = append(asgs, Assignment{
			ID:             uuid.New().String(),
			ScopeID:        scopeID,
			ChildID:        core.CleanString(na.ChildID),
			Area:           NormalizeArea(na.Area),
			WorkName:       core.CleanString(na.WorkName),
			ProgressStatus: ParseStatus(na.ProgressStatus).String(),
			CreatedAt:      now,
		})
	}
	if err := svc.repos.Assignments.CreateAssignments(ctx, asgs...); err != nil {
		return nil, errors.Wrap(err, "creating assignments")
	}
	return asgs, nil
}

// ListProgress returns the stored progress of a child.
func (svc *Service) ListProgress(ctx context.Context, childID string) ([]Progress, error) {
	return svc.repos.Progress.ListProgress(ctx, core.CleanString(childID))
}

// loadRun reads the scope's active areas, catalog and synonyms, optionally restricted to some areas.
func (svc *Service) loadRun(ctx context.Context, scopeID string, areas ...string) (*Run, error) {
	active, err := svc.repos.Catalog.ListAreas(ctx, scopeID)
	if err != nil {
		return nil, errors.Wrap(err, "listing areas")
	}
	if len(active) == 0 {
		return nil, &ScopeConfigurationError{ScopeID: scopeID, Reason: "no active curriculum area"}
	}
	works, err := svc.repos.Catalog.ListWorks(ctx, scopeID, areas...)
	if err != nil {
		return nil, errors.Wrap(err, "listing works")
	}
	syns, err := svc.repos.Synonyms.ListSynonyms(ctx, scopeID)
	if err != nil {
		return nil, errors.Wrap(err, "listing synonyms")
	}
	return NewRun(scopeID, active, works, syns), nil
}
