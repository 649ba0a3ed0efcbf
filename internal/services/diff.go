package services

import (
	"context"
	"sort"
	"time"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/repos"
	"github.com/soabuilder/soa-backend/internal/snapshot"
)

const (
	// DefaultDiffLimit caps per-collection result lists for interactive use.
	DefaultDiffLimit = 50
	// BulkDiffLimit is the cap for bulk/export requests.
	BulkDiffLimit = 1000
)

type FreezeRef struct {
	ID        uint      `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

type CellChange struct {
	VisitID    uint   `json:"visit_id"`
	ActivityID uint   `json:"activity_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
}

type ConceptTitleChange struct {
	Code     string `json:"code"`
	OldTitle string `json:"old_title"`
	NewTitle string `json:"new_title"`
}

type ActivityConceptDiff struct {
	ActivityID   uint                 `json:"activity_id"`
	Added        []string             `json:"added"`
	Removed      []string             `json:"removed"`
	TitleChanges []ConceptTitleChange `json:"title_changes"`
}

type ListMeta struct {
	AddedTotal       int  `json:"added_total"`
	RemovedTotal     int  `json:"removed_total"`
	AddedTruncated   bool `json:"added_truncated"`
	RemovedTruncated bool `json:"removed_truncated"`
}

type CellListMeta struct {
	ListMeta
	ChangedTotal     int  `json:"changed_total"`
	ChangedTruncated bool `json:"changed_truncated"`
}

type ConceptListMeta struct {
	ChangesTotal     int  `json:"changes_total"`
	ChangesTruncated bool `json:"changes_truncated"`
}

type DiffMeta struct {
	Limit      int             `json:"limit"`
	Visits     ListMeta        `json:"visits"`
	Activities ListMeta        `json:"activities"`
	Cells      CellListMeta    `json:"cells"`
	Concepts   ConceptListMeta `json:"concepts"`
}

type VisitDiff struct {
	Added   []snapshot.VisitRecord `json:"added"`
	Removed []snapshot.VisitRecord `json:"removed"`
}

type ActivityDiff struct {
	Added   []snapshot.ActivityRecord `json:"added"`
	Removed []snapshot.ActivityRecord `json:"removed"`
}

type CellDiff struct {
	Added   []snapshot.CellRecord `json:"added"`
	Removed []snapshot.CellRecord `json:"removed"`
	Changed []CellChange          `json:"changed"`
}

// DiffResult is the structural comparison of two snapshots. Visits and
// activities are compared by captured-id presence only; cells and concept
// mappings additionally detect value changes. Totals in Meta are always
// exact even when the listed items are truncated.
type DiffResult struct {
	Left       FreezeRef             `json:"left"`
	Right      FreezeRef             `json:"right"`
	Visits     VisitDiff             `json:"visits"`
	Activities ActivityDiff          `json:"activities"`
	Cells      CellDiff              `json:"cells"`
	Concepts   []ActivityConceptDiff `json:"concepts"`
	Meta       DiffMeta              `json:"meta"`
}

// DiffService computes read-only structural comparisons over two persisted
// snapshots. It has no side effects; swapping the arguments inverts the
// added/removed report.
type DiffService interface {
	Diff(ctx context.Context, studyID, leftID, rightID uint, limit int) (*DiffResult, error)
}

type diffService struct {
	freeze repos.FreezeRepo
	log    *logger.Logger
}

func NewDiffService(freeze repos.FreezeRepo, baseLog *logger.Logger) DiffService {
	return &diffService{freeze: freeze, log: baseLog.With("service", "DiffService")}
}

func (s *diffService) Diff(ctx context.Context, studyID, leftID, rightID uint, limit int) (*DiffResult, error) {
	left, leftSnap, err := s.load(ctx, studyID, leftID)
	if err != nil {
		return nil, err
	}
	right, rightSnap, err := s.load(ctx, studyID, rightID)
	if err != nil {
		return nil, err
	}

	result := &DiffResult{Left: *left, Right: *right}

	visitsAdded, visitsRemoved := diffVisits(leftSnap.Visits, rightSnap.Visits)
	actsAdded, actsRemoved := diffActivities(leftSnap.Activities, rightSnap.Activities)
	cellsAdded, cellsRemoved, cellsChanged := diffCells(leftSnap.Cells, rightSnap.Cells)
	conceptChanges := diffConcepts(leftSnap.ActivityConcepts, rightSnap.ActivityConcepts)

	result.Visits.Added, result.Meta.Visits.AddedTruncated = truncate(visitsAdded, limit)
	result.Visits.Removed, result.Meta.Visits.RemovedTruncated = truncate(visitsRemoved, limit)
	result.Meta.Visits.AddedTotal = len(visitsAdded)
	result.Meta.Visits.RemovedTotal = len(visitsRemoved)

	result.Activities.Added, result.Meta.Activities.AddedTruncated = truncate(actsAdded, limit)
	result.Activities.Removed, result.Meta.Activities.RemovedTruncated = truncate(actsRemoved, limit)
	result.Meta.Activities.AddedTotal = len(actsAdded)
	result.Meta.Activities.RemovedTotal = len(actsRemoved)

	result.Cells.Added, result.Meta.Cells.AddedTruncated = truncate(cellsAdded, limit)
	result.Cells.Removed, result.Meta.Cells.RemovedTruncated = truncate(cellsRemoved, limit)
	result.Cells.Changed, result.Meta.Cells.ChangedTruncated = truncate(cellsChanged, limit)
	result.Meta.Cells.AddedTotal = len(cellsAdded)
	result.Meta.Cells.RemovedTotal = len(cellsRemoved)
	result.Meta.Cells.ChangedTotal = len(cellsChanged)

	result.Concepts, result.Meta.Concepts.ChangesTruncated = truncate(conceptChanges, limit)
	result.Meta.Concepts.ChangesTotal = len(conceptChanges)

	result.Meta.Limit = limit
	return result, nil
}

// load fetches one side of the comparison. An unparseable payload degrades to
// an empty snapshot rather than failing the whole diff.
func (s *diffService) load(ctx context.Context, studyID, freezeID uint) (*FreezeRef, *snapshot.Payload, error) {
	freeze, err := s.freeze.GetByID(ctx, nil, studyID, freezeID)
	if err != nil {
		return nil, nil, err
	}
	if freeze == nil {
		return nil, nil, apierr.NotFound("freeze %d not found", freezeID)
	}
	ref := &FreezeRef{ID: freeze.ID, Label: freeze.VersionLabel, CreatedAt: freeze.CreatedAt}
	payload, err := snapshot.Decode(freeze.Snapshot)
	if err != nil {
		s.log.Warn("Corrupt snapshot payload in diff", "soa_id", studyID, "freeze_id", freezeID, "error", err)
		empty, _ := snapshot.Decode([]byte("{}"))
		return ref, empty, nil
	}
	return ref, payload, nil
}

func diffVisits(left, right []snapshot.VisitRecord) (added, removed []snapshot.VisitRecord) {
	l := make(map[uint]snapshot.VisitRecord, len(left))
	r := make(map[uint]snapshot.VisitRecord, len(right))
	for _, v := range left {
		l[v.ID] = v
	}
	for _, v := range right {
		r[v.ID] = v
	}
	for id, v := range r {
		if _, ok := l[id]; !ok {
			added = append(added, v)
		}
	}
	for id, v := range l {
		if _, ok := r[id]; !ok {
			removed = append(removed, v)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i].ID < added[j].ID })
	sort.Slice(removed, func(i, j int) bool { return removed[i].ID < removed[j].ID })
	return added, removed
}

func diffActivities(left, right []snapshot.ActivityRecord) (added, removed []snapshot.ActivityRecord) {
	l := make(map[uint]snapshot.ActivityRecord, len(left))
	r := make(map[uint]snapshot.ActivityRecord, len(right))
	for _, a := range left {
		l[a.ID] = a
	}
	for _, a := range right {
		r[a.ID] = a
	}
	for id, a := range r {
		if _, ok := l[id]; !ok {
			added = append(added, a)
		}
	}
	for id, a := range l {
		if _, ok := r[id]; !ok {
			removed = append(removed, a)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i].ID < added[j].ID })
	sort.Slice(removed, func(i, j int) bool { return removed[i].ID < removed[j].ID })
	return added, removed
}

type cellKey struct {
	visitID    uint
	activityID uint
}

func diffCells(left, right []snapshot.CellRecord) (added, removed []snapshot.CellRecord, changed []CellChange) {
	l := make(map[cellKey]snapshot.CellRecord, len(left))
	r := make(map[cellKey]snapshot.CellRecord, len(right))
	for _, c := range left {
		l[cellKey{c.VisitID, c.ActivityID}] = c
	}
	for _, c := range right {
		r[cellKey{c.VisitID, c.ActivityID}] = c
	}
	for k, c := range r {
		if old, ok := l[k]; ok {
			if old.Status != c.Status {
				changed = append(changed, CellChange{
					VisitID:    k.visitID,
					ActivityID: k.activityID,
					OldStatus:  old.Status,
					NewStatus:  c.Status,
				})
			}
		} else {
			added = append(added, c)
		}
	}
	for k, c := range l {
		if _, ok := r[k]; !ok {
			removed = append(removed, c)
		}
	}
	sortCells := func(cells []snapshot.CellRecord) {
		sort.Slice(cells, func(i, j int) bool {
			if cells[i].VisitID != cells[j].VisitID {
				return cells[i].VisitID < cells[j].VisitID
			}
			return cells[i].ActivityID < cells[j].ActivityID
		})
	}
	sortCells(added)
	sortCells(removed)
	sort.Slice(changed, func(i, j int) bool {
		if changed[i].VisitID != changed[j].VisitID {
			return changed[i].VisitID < changed[j].VisitID
		}
		return changed[i].ActivityID < changed[j].ActivityID
	})
	return added, removed, changed
}

func diffConcepts(left, right map[uint][]snapshot.ConceptRecord) []ActivityConceptDiff {
	aids := make(map[uint]struct{}, len(left)+len(right))
	for aid := range left {
		aids[aid] = struct{}{}
	}
	for aid := range right {
		aids[aid] = struct{}{}
	}

	var diffs []ActivityConceptDiff
	for aid := range aids {
		lTitles := conceptTitles(left[aid])
		rTitles := conceptTitles(right[aid])

		var added, removed []string
		var titleChanges []ConceptTitleChange
		for code := range rTitles {
			if _, ok := lTitles[code]; !ok {
				added = append(added, code)
			}
		}
		for code, lTitle := range lTitles {
			rTitle, ok := rTitles[code]
			if !ok {
				removed = append(removed, code)
				continue
			}
			if lTitle != rTitle {
				titleChanges = append(titleChanges, ConceptTitleChange{Code: code, OldTitle: lTitle, NewTitle: rTitle})
			}
		}
		if len(added) == 0 && len(removed) == 0 && len(titleChanges) == 0 {
			continue
		}
		sort.Strings(added)
		sort.Strings(removed)
		sort.Slice(titleChanges, func(i, j int) bool { return titleChanges[i].Code < titleChanges[j].Code })
		diffs = append(diffs, ActivityConceptDiff{
			ActivityID:   aid,
			Added:        added,
			Removed:      removed,
			TitleChanges: titleChanges,
		})
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].ActivityID < diffs[j].ActivityID })
	return diffs
}

func conceptTitles(list []snapshot.ConceptRecord) map[string]string {
	m := make(map[string]string, len(list))
	for _, c := range list {
		m[c.Code] = c.Title
	}
	return m
}

// truncate caps a result list at limit. limit <= 0 means unbounded. The
// returned slice is never nil so JSON renders [] instead of null.
func truncate[T any](list []T, limit int) ([]T, bool) {
	if list == nil {
		return []T{}, false
	}
	if limit > 0 && len(list) > limit {
		return list[:limit], true
	}
	return list, false
}
