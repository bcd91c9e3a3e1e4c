package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crowdwatch/internal/backend"
	"crowdwatch/internal/config"
	"crowdwatch/internal/dao"
)

func newTestReconciler(t *testing.T, baseURL string) (*Reconciler, *Store) {
	t.Helper()
	store := newTestStore(t)
	conf := config.DefaultConfig()
	var cli *backend.Client
	if baseURL != "" {
		cli = backend.NewClient(context.Background(), baseURL)
	}
	return NewReconciler(context.Background(), conf, store, cli), store
}

func TestReconciler_ResolveActive(t *testing.T) {
	r, store := newTestReconciler(t, "")
	now := time.Now()

	rec := &LiveRecord{
		VideoId:       5,
		VideoFilename: "Video 5",
		TotalCount:    6,
		ZoneCounts:    []dao.ZoneCount{{ZoneId: 12, ZoneLabel: "Entrance", Count: 6}},
		Timestamp:     now.UnixMilli(),
	}
	if err := store.SetLive(rec); err != nil {
		t.Fatalf("set live record: %v", err)
	}

	state, display, err := r.Resolve(5, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if state != SubjectActive {
		t.Fatalf("expected active, got %s", state)
	}
	if display == nil || !display.Live {
		t.Fatalf("expected a live display record, got %+v", display)
	}
	if display.Id != -5 {
		t.Errorf("live display id must be the negated video id, got %d", display.Id)
	}
	if display.TotalCount != 6 {
		t.Errorf("expected total count 6, got %d", display.TotalCount)
	}
}

func TestReconciler_StaleLiveFallsBack(t *testing.T) {
	r, store := newTestReconciler(t, "")
	now := time.Now()
	stale := now.Add(-10 * time.Second).UnixMilli()

	if err := store.SetLive(&LiveRecord{VideoId: 5, Timestamp: stale}); err != nil {
		t.Fatalf("set live record: %v", err)
	}

	// Stale live and nothing else: the job vanished, which is not an
	// error.
	state, display, err := r.Resolve(5, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if state != SubjectVanished || display != nil {
		t.Fatalf("expected vanished with no record, got %s %+v", state, display)
	}

	completed := &dao.AnalysisRecord{Id: -1756600000000, VideoId: 5, TotalCount: 9}
	if err := store.SetCompleted(completed); err != nil {
		t.Fatalf("set completed record: %v", err)
	}

	state, display, err = r.Resolve(5, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if state != SubjectCompleted {
		t.Fatalf("expected completed, got %s", state)
	}
	if display == nil || display.TotalCount != 9 || display.Live {
		t.Errorf("unexpected completed display record: %+v", display)
	}
}

func TestReconciler_ActiveSessionsFiltersAndSorts(t *testing.T) {
	r, store := newTestReconciler(t, "")
	now := time.Now()

	records := []*LiveRecord{
		{VideoId: 1, Timestamp: now.Add(-2 * time.Second).UnixMilli()},
		{VideoId: 2, Timestamp: now.Add(-1 * time.Second).UnixMilli()},
		{VideoId: 3, Timestamp: now.Add(-time.Minute).UnixMilli()},
	}
	for _, rec := range records {
		if err := store.SetLive(rec); err != nil {
			t.Fatalf("set live record %d: %v", rec.VideoId, err)
		}
	}

	active, err := r.ActiveSessions(now)
	if err != nil {
		t.Fatalf("active sessions: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 fresh sessions, got %d", len(active))
	}
	if active[0].VideoId != 2 || active[1].VideoId != 1 {
		t.Errorf("expected most recent first, got %d then %d", active[0].VideoId, active[1].VideoId)
	}
}

func TestReconciler_DefaultSubject(t *testing.T) {
	r, store := newTestReconciler(t, "")
	now := time.Now()

	subject, err := r.DefaultSubject(now)
	if err != nil {
		t.Fatalf("default subject: %v", err)
	}
	if subject != nil {
		t.Fatalf("expected no default subject, got %+v", subject)
	}

	if err := store.SetLive(&LiveRecord{VideoId: 7, Timestamp: now.UnixMilli()}); err != nil {
		t.Fatalf("set live record: %v", err)
	}
	subject, err = r.DefaultSubject(now)
	if err != nil {
		t.Fatalf("default subject: %v", err)
	}
	if subject == nil || subject.VideoId != 7 || !subject.Live {
		t.Errorf("unexpected default subject: %+v", subject)
	}
}

func TestReconciler_SnapshotMergeOrder(t *testing.T) {
	historical := []dao.AnalysisRecord{
		{Id: 101, VideoId: 9, TotalCount: 4, ProcessedAt: "2026-08-30T10:00:00Z"},
		{Id: 102, VideoId: 9, TotalCount: 5, ProcessedAt: "2026-08-31T09:00:00Z"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analysis/all/alice" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(historical)
	}))
	t.Cleanup(srv.Close)

	r, store := newTestReconciler(t, srv.URL)
	now := time.Now()

	if err := store.SetAuthInfo(&AuthInfo{Username: "alice"}); err != nil {
		t.Fatalf("set auth info: %v", err)
	}
	if err := store.SetLive(&LiveRecord{VideoId: 5, TotalCount: 3, Timestamp: now.UnixMilli()}); err != nil {
		t.Fatalf("set live record: %v", err)
	}
	if err := store.SetCompleted(&dao.AnalysisRecord{Id: -1756600000000, VideoId: 8, TotalCount: 7, ProcessedAt: "2026-08-31T10:00:00Z"}); err != nil {
		t.Fatalf("set completed record: %v", err)
	}

	snapshot, err := r.Snapshot(context.Background(), now)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot) != 4 {
		t.Fatalf("expected 4 records, got %d", len(snapshot))
	}
	if !snapshot[0].Live || snapshot[0].Id != -5 {
		t.Errorf("expected the live session first, got %+v", snapshot[0])
	}
	if snapshot[1].Id != -1756600000000 {
		t.Errorf("expected the ephemeral completed session second, got %+v", snapshot[1])
	}
	if snapshot[2].Id != 102 || snapshot[3].Id != 101 {
		t.Errorf("expected historical analyses newest first, got %+v then %+v", snapshot[2], snapshot[3])
	}
}

func TestReconciler_SnapshotSurvivesBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "boom"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	r, store := newTestReconciler(t, srv.URL)
	now := time.Now()

	if err := store.SetAuthInfo(&AuthInfo{Username: "alice"}); err != nil {
		t.Fatalf("set auth info: %v", err)
	}
	if err := store.SetLive(&LiveRecord{VideoId: 5, Timestamp: now.UnixMilli()}); err != nil {
		t.Fatalf("set live record: %v", err)
	}

	snapshot, err := r.Snapshot(context.Background(), now)
	if err != nil {
		t.Fatalf("a backend failure must not fail the snapshot: %v", err)
	}
	if len(snapshot) != 1 || !snapshot[0].Live {
		t.Errorf("expected the local live session only, got %+v", snapshot)
	}
}
