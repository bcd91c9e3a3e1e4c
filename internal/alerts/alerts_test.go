package alerts

import (
	"reflect"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name           string
		counts         map[string]int
		totalThreshold int
		zoneThresholds map[string]int
		want           []string
	}{
		{
			name:           "below every threshold",
			counts:         map[string]int{"Entrance": 3, "Lobby": 2},
			totalThreshold: 10,
			zoneThresholds: map[string]int{"Entrance": 5},
			want:           nil,
		},
		{
			name:           "total breach only",
			counts:         map[string]int{"Entrance": 7, "Lobby": 5},
			totalThreshold: 10,
			want:           []string{"Total count (12) exceeded threshold (10)"},
		},
		{
			name:           "zone breach only",
			counts:         map[string]int{"Entrance": 6, "Lobby": 1},
			totalThreshold: 10,
			zoneThresholds: map[string]int{"Entrance": 5},
			want:           []string{"Entrance count (6) exceeded threshold (5)"},
		},
		{
			name:           "total and zones, zone order is deterministic",
			counts:         map[string]int{"Lobby": 8, "Entrance": 6},
			totalThreshold: 10,
			zoneThresholds: map[string]int{"Entrance": 5, "Lobby": 4},
			want: []string{
				"Total count (14) exceeded threshold (10)",
				"Entrance count (6) exceeded threshold (5)",
				"Lobby count (8) exceeded threshold (4)",
			},
		},
		{
			name:           "count at the threshold is not a breach",
			counts:         map[string]int{"Entrance": 5},
			totalThreshold: 5,
			zoneThresholds: map[string]int{"Entrance": 5},
			want:           nil,
		},
		{
			name:           "zero zone threshold is disabled",
			counts:         map[string]int{"Entrance": 3},
			totalThreshold: 10,
			zoneThresholds: map[string]int{"Entrance": 0},
			want:           nil,
		},
		{
			name:           "zone without a configured threshold",
			counts:         map[string]int{"Backstage": 50},
			totalThreshold: 100,
			zoneThresholds: map[string]int{"Entrance": 5},
			want:           nil,
		},
		{
			name:           "empty counts",
			counts:         map[string]int{},
			totalThreshold: 10,
			want:           nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.counts, tt.totalThreshold, tt.zoneThresholds)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_Stateless(t *testing.T) {
	counts := map[string]int{"Entrance": 6}
	thresholds := map[string]int{"Entrance": 5}

	first := Evaluate(counts, 10, thresholds)
	second := Evaluate(counts, 10, thresholds)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated evaluation diverged: %v vs %v", first, second)
	}
}
