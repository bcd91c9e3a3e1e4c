// Package alerts derives threshold-breach notifications from live zone
// counts and moves them over NSQ.
package alerts

import (
	"fmt"
	"sort"
)

// Message is the wire shape published for each breach evaluation.
type Message struct {
	VideoId   int      `json:"video_id"`
	Username  string   `json:"username,omitempty"`
	Alerts    []string `json:"alerts"`
	Timestamp int64    `json:"timestamp"`
}

// Evaluate recomputes the breach list wholesale from the current counts
// snapshot. It is a pure function of its arguments: same snapshot and
// thresholds, same result, no history.
func Evaluate(counts map[string]int, totalThreshold int, zoneThresholds map[string]int) []string {
	var breaches []string

	total := 0
	for _, count := range counts {
		total += count
	}
	if total > totalThreshold {
		breaches = append(breaches, fmt.Sprintf("Total count (%d) exceeded threshold (%d)", total, totalThreshold))
	}

	zones := make([]string, 0, len(counts))
	for zone := range counts {
		zones = append(zones, zone)
	}
	sort.Strings(zones)

	for _, zone := range zones {
		threshold, ok := zoneThresholds[zone]
		if ok && threshold > 0 && counts[zone] > threshold {
			breaches = append(breaches, fmt.Sprintf("%s count (%d) exceeded threshold (%d)", zone, counts[zone], threshold))
		}
	}

	return breaches
}
