package session

import (
	"reflect"
	"testing"
	"time"

	"crowdwatch/internal/dao"
)

func TestLiveRecord_Fresh(t *testing.T) {
	now := time.Now()
	timeout := 5 * time.Second

	rec := &LiveRecord{Timestamp: now.UnixMilli()}
	if !rec.Fresh(now, timeout) {
		t.Error("a just-written record must be fresh")
	}

	rec.Timestamp = now.Add(-4 * time.Second).UnixMilli()
	if !rec.Fresh(now, timeout) {
		t.Error("a record inside the window must be fresh")
	}

	rec.Timestamp = now.Add(-5 * time.Second).UnixMilli()
	if rec.Fresh(now, timeout) {
		t.Error("a record at the window edge must be stale")
	}
}

func TestDeriveZoneCounts(t *testing.T) {
	zones := []dao.Zone{
		{Id: 12, Label: "Entrance"},
		{Id: 13, Label: "Lobby"},
	}

	got := deriveZoneCounts(map[string]int{
		"Lobby":     2,
		"Entrance":  7,
		"Backstage": 1,
	}, zones)

	want := []dao.ZoneCount{
		{ZoneId: 0, ZoneLabel: "Backstage", Count: 1},
		{ZoneId: 12, ZoneLabel: "Entrance", Count: 7},
		{ZoneId: 13, ZoneLabel: "Lobby", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("deriveZoneCounts() = %+v, want %+v", got, want)
	}
}

func TestDeriveZoneCounts_Empty(t *testing.T) {
	got := deriveZoneCounts(nil, nil)
	if len(got) != 0 {
		t.Errorf("expected no zone counts, got %+v", got)
	}
}

func TestSumCounts(t *testing.T) {
	if got := sumCounts(map[string]int{"A": 3, "B": 4}); got != 7 {
		t.Errorf("sumCounts() = %d, want 7", got)
	}
	if got := sumCounts(nil); got != 0 {
		t.Errorf("sumCounts(nil) = %d, want 0", got)
	}
}
