package session

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"crowdwatch/internal/backend"
	"crowdwatch/internal/config"
	"crowdwatch/internal/dao"
	"crowdwatch/pkg/log"
)

// SubjectState classifies one observed job from a reader's point of
// view. A job only moves forward: active, then completed or vanished;
// a later start is a new lifecycle.
type SubjectState int

const (
	SubjectVanished SubjectState = iota
	SubjectActive
	SubjectCompleted
)

func (s SubjectState) String() string {
	switch s {
	case SubjectActive:
		return "active"
	case SubjectCompleted:
		return "completed"
	default:
		return "vanished"
	}
}

// Reconciler reads the session store on behalf of views that did not
// start the stream, deciding per subject whether to show live data, a
// just-finished session record, or nothing. Staleness of the live
// timestamp is the only signal that a writer vanished without cleanup.
type Reconciler struct {
	conf    *config.Config
	store   *Store
	backend *backend.Client
	logger  *logrus.Entry
}

func NewReconciler(ctx context.Context, conf *config.Config, store *Store, cli *backend.Client) *Reconciler {
	return &Reconciler{
		conf:    conf,
		store:   store,
		backend: cli,
		logger:  log.WithComponent(ctx, "reconciler"),
	}
}

// ActiveSessions returns the live records still within the liveness
// window, most recent first.
func (r *Reconciler) ActiveSessions(now time.Time) ([]*LiveRecord, error) {
	records, err := r.store.ListLive()
	if err != nil {
		return nil, err
	}
	fresh := records[:0]
	for _, rec := range records {
		if rec.Fresh(now, r.conf.Stream.LiveTimeout()) {
			fresh = append(fresh, rec)
		}
	}
	sort.Slice(fresh, func(i, j int) bool {
		return fresh[i].Timestamp > fresh[j].Timestamp
	})
	return fresh, nil
}

// Resolve classifies one subject. A fresh live record wins; otherwise
// the ephemeral completed record, if any; otherwise the job is gone,
// which is not an error.
func (r *Reconciler) Resolve(videoId int, now time.Time) (SubjectState, *dao.AnalysisRecord, error) {
	live, err := r.store.GetLive(videoId)
	if err != nil {
		return SubjectVanished, nil, err
	}
	if live != nil && live.Fresh(now, r.conf.Stream.LiveTimeout()) {
		rec := liveDisplay(live, now)
		return SubjectActive, &rec, nil
	}

	completed, err := r.store.GetCompleted(videoId)
	if err != nil {
		return SubjectVanished, nil, err
	}
	if completed != nil {
		return SubjectCompleted, completed, nil
	}

	return SubjectVanished, nil, nil
}

// DefaultSubject picks the first active session, for views with no
// explicit selection. Returns nil when nothing is active.
func (r *Reconciler) DefaultSubject(now time.Time) (*dao.AnalysisRecord, error) {
	active, err := r.ActiveSessions(now)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}
	rec := liveDisplay(active[0], now)
	return &rec, nil
}

// Snapshot builds the merged display list: active sessions first, then
// ephemeral completed session records, then backend-persisted
// historical analyses. Local store failures are real errors; a backend
// fetch failure only trims the historical tail.
func (r *Reconciler) Snapshot(ctx context.Context, now time.Time) ([]dao.AnalysisRecord, error) {
	active, err := r.ActiveSessions(now)
	if err != nil {
		return nil, err
	}

	merged := make([]dao.AnalysisRecord, 0, len(active)+8)
	for _, live := range active {
		merged = append(merged, liveDisplay(live, now))
	}

	completed, err := r.store.ListCompleted()
	if err != nil {
		return nil, err
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].ProcessedAt > completed[j].ProcessedAt
	})
	for _, rec := range completed {
		merged = append(merged, *rec)
	}

	merged = append(merged, r.historical(ctx)...)
	return merged, nil
}

func (r *Reconciler) historical(ctx context.Context) []dao.AnalysisRecord {
	if r.backend == nil {
		return nil
	}
	info, err := r.store.GetAuthInfo()
	if err != nil || info == nil || info.Username == "" {
		return nil
	}
	records, err := r.backend.ListAnalyses(ctx, info.Username)
	if err != nil {
		r.logger.WithError(err).Debug("fetch historical analyses")
		return nil
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ProcessedAt > records[j].ProcessedAt
	})
	return records
}

// Run polls the store on the configured cadence and hands each merged
// snapshot to fn until ctx is done.
func (r *Reconciler) Run(ctx context.Context, fn func([]dao.AnalysisRecord)) {
	ticker := time.NewTicker(r.conf.Stream.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			snapshot, err := r.Snapshot(ctx, now)
			if err != nil {
				r.logger.WithError(err).Error("build session snapshot")
				continue
			}
			fn(snapshot)
		}
	}
}

func liveDisplay(live *LiveRecord, now time.Time) dao.AnalysisRecord {
	return dao.AnalysisRecord{
		Id:            -int64(live.VideoId),
		VideoId:       live.VideoId,
		VideoFilename: live.VideoFilename,
		TotalCount:    live.TotalCount,
		ZoneCounts:    live.ZoneCounts,
		ProcessedAt:   now.Format(time.RFC3339),
		FrameData:     live.FrameData,
		Live:          true,
	}
}
