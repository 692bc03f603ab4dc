package curriculum

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
)

// AssignmentErrors are the per-assignment failures of a run. They never abort it.
type AssignmentErrors []error

func (errs AssignmentErrors) MarshalJSON() ([]byte, error) {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return json.Marshal(msgs)
}

// Summary reports what a reconciliation or a backfill did.
type Summary struct {
	ScopeID          string           `json:"scope_id"`
	Pending          int              `json:"pending"`
	MatchedExisting  int              `json:"matched_existing"`
	MatchedExtended  int              `json:"matched_extended"`
	WorksCreated     int              `json:"works_created"`
	ChildrenTouched  int              `json:"children_touched"`
	ProgressUpgraded int              `json:"progress_upgraded"`
	Backfilled       int              `json:"backfilled"`
	Skipped          int              `json:"skipped"`
	Aborted          bool             `json:"aborted"`
	Errors           AssignmentErrors `json:"errors"`
	Duration         time.Duration    `json:"duration"`
}

func (s *Summary) skip(err error) {
	s.Skipped++
	s.Errors = append(s.Errors, err)
}

// Reconcile links every unresolved assignment of the scope to a Work, extending the catalog
// when nothing matches, then writes the progress those links imply in one upgrade-only merge.
//
// Per-assignment failures are collected in the Summary. A cancelled or expired ctx stops the run
// between assignments; the progress of the assignments already linked is still written.
func (svc *Service) Reconcile(ctx context.Context, scopeID string) (Summary, error) {
	start := svc.now()
	sum := Summary{ScopeID: scopeID, Errors: AssignmentErrors{}}

	unlock, ok := svc.locks.tryLock(scopeID)
	if !ok {
		return sum, ErrReconcileInProgress
	}
	defer unlock()

	if svc.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, svc.opts.Timeout)
		defer cancel()
	}

	run, err := svc.loadRun(ctx, scopeID)
	if err != nil {
		return sum, err
	}
	pending, err := svc.repos.Assignments.ListUnresolved(ctx, scopeID)
	if err != nil {
		return sum, errors.Wrap(err, "listing unresolved assignments")
	}
	sum.Pending = len(pending)

	var proposed []ProgressUpdate
	children := make(map[string]struct{})
	for _, asg := range pending {
		if ctx.Err() != nil {
			sum.Aborted = true
			break
		}
		updates, err := svc.reconcileAssignment(ctx, run, asg, &sum)
		if err != nil {
			sum.skip(err)
			svc.log.Warn("assignment skipped", err, "scope", scopeID, "assignment", asg.ID)
			continue
		}
		proposed = append(proposed, updates...)
		children[asg.ChildID] = struct{}{}
	}
	sum.ChildrenTouched = len(children)
	if sum.Aborted {
		svc.log.Warn("reconciliation aborted", ctx.Err(), "scope", scopeID, "pending", sum.Pending)
	}

	sum.ProgressUpgraded, err = svc.persistProgress(ctx, proposed)
	sum.Duration = svc.now().Sub(start)
	if err != nil {
		svc.log.Error("writing progress failed", err, "scope", scopeID)
		return sum, err
	}
	svc.log.Info("scope reconciled",
		"scope", scopeID,
		"matched_existing", sum.MatchedExisting,
		"matched_extended", sum.MatchedExtended,
		"works_created", sum.WorksCreated,
		"progress_upgraded", sum.ProgressUpgraded,
		"skipped", sum.Skipped,
		"aborted", sum.Aborted,
	)
	return sum, nil
}

// reconcileAssignment links one assignment and returns the progress its link implies.
// No progress is returned unless the link was written.
func (svc *Service) reconcileAssignment(ctx context.Context, run *Run, asg Assignment, sum *Summary) ([]ProgressUpdate, error) {
	area := NormalizeArea(asg.Area)
	if !run.HasArea(area) {
		return nil, &UnknownAreaError{AssignmentID: asg.ID, Area: asg.Area}
	}

	res := run.Match(svc.matcher, asg.WorkName, area)
	var (
		work     Work
		extended bool
	)
	switch {
	case res.Classification.Linkable(ModeBatch):
		work = res.Match.Work
		extended = work.IsCustom && isExtension(run, work)
	default:
		if w, ok := run.Extended(res.Canonical, area); ok {
			work, extended = w, true
			break
		}
		w, err := svc.extender.Extend(ctx, run, asg.WorkName, area)
		if err != nil {
			var ewe *ExtensionWriteError
			if errors.As(err, &ewe) {
				ewe.AssignmentID = asg.ID
				return nil, ewe
			}
			return nil, errors.Wrapf(err, "assignment %s", asg.ID)
		}
		run.rememberExtension(res.Canonical, w)
		sum.WorksCreated++
		work, extended = w, true
	}

	if err := svc.repos.Assignments.SetWorkLink(ctx, asg.ID, work.ID); err != nil {
		return nil, &LinkWriteError{AssignmentID: asg.ID, WorkID: work.ID, Err: err}
	}
	if extended {
		sum.MatchedExtended++
	} else {
		sum.MatchedExisting++
	}
	return deriveProgress(run, asg.ChildID, work, ParseStatus(asg.ProgressStatus)), nil
}

// isExtension reports whether w was created by this run.
func isExtension(run *Run, w Work) bool {
	for _, ext := range run.extended {
		if ext.ID == w.ID {
			return true
		}
	}
	return false
}

// deriveProgress returns the assignment's own status on work, and mastered on every work preceding it.
func deriveProgress(run *Run, childID string, work Work, status Status) []ProgressUpdate {
	preds := run.Predecessors(work)
	updates := make([]ProgressUpdate, 0, len(preds)+1)
	updates = append(updates, ProgressUpdate{ChildID: childID, WorkID: work.ID, Status: status})
	for _, p := range preds {
		updates = append(updates, ProgressUpdate{ChildID: childID, WorkID: p.ID, Status: StatusMastered})
	}
	return updates
}

// persistProgress merges proposed against the stored statuses and writes the upgrades.
// It runs detached from ctx's cancellation so that linked assignments always get their progress.
// Each attempt re-reads the stored statuses, so a retry never writes a downgrade.
func (svc *Service) persistProgress(ctx context.Context, proposed []ProgressUpdate) (int, error) {
	if len(proposed) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), svc.opts.PersistTimeout)
	defer cancel()

	keys := ProgressKeys(proposed)
	var written int
	var attempts uint
	err := retry.Do(
		func() error {
			attempts++
			existing, err := svc.repos.Progress.GetStatuses(ctx, keys)
			if err != nil {
				return errors.Wrap(err, "loading progress")
			}
			upgrades := MergeProgress(existing, proposed)
			if len(upgrades) == 0 {
				written = 0
				return nil
			}
			n, err := svc.repos.Progress.UpsertStatuses(ctx, upgrades)
			if err != nil {
				return errors.Wrap(err, "upserting progress")
			}
			written = n
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(svc.opts.MergeAttempts),
		retry.Delay(svc.opts.MergeRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			svc.log.Warn("retrying progress write", err, "attempt", n+1)
		}),
	)
	if err != nil {
		return 0, &MergeWriteError{Attempts: attempts, Err: err}
	}
	return written, nil
}

// Backfill re-derives the progress implied by every linked assignment of the scope and merges it.
// It repairs progress lost to a MergeWriteError and is safe to repeat.
func (svc *Service) Backfill(ctx context.Context, scopeID string) (Summary, error) {
	start := svc.now()
	sum := Summary{ScopeID: scopeID, Errors: AssignmentErrors{}}

	unlock, ok := svc.locks.tryLock(scopeID)
	if !ok {
		return sum, ErrReconcileInProgress
	}
	defer unlock()

	run, err := svc.loadRun(ctx, scopeID)
	if err != nil {
		return sum, err
	}
	linked, err := svc.repos.Assignments.ListLinked(ctx, scopeID)
	if err != nil {
		return sum, errors.Wrap(err, "listing linked assignments")
	}
	sum.Pending = len(linked)

	var proposed []ProgressUpdate
	children := make(map[string]struct{})
	for _, asg := range linked {
		w, ok := run.Work(asg.WorkID.String)
		if !ok {
			sum.skip(errors.Wrapf(ErrWorkNotFound, "assignment %s: work %s", asg.ID, asg.WorkID.String))
			continue
		}
		proposed = append(proposed, deriveProgress(run, asg.ChildID, w, ParseStatus(asg.ProgressStatus))...)
		children[asg.ChildID] = struct{}{}
		sum.Backfilled++
	}
	sum.ChildrenTouched = len(children)

	sum.ProgressUpgraded, err = svc.persistProgress(ctx, proposed)
	sum.Duration = svc.now().Sub(start)
	if err != nil {
		return sum, err
	}
	svc.log.Info("scope backfilled", "scope", scopeID, "backfilled", sum.Backfilled, "progress_upgraded", sum.ProgressUpgraded, "skipped", sum.Skipped)
	return sum, nil
}
