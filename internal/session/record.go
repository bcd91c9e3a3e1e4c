// Package session manages streaming analysis sessions: the shared
// state store, the controller that drives one session from start to a
// terminal state, and the reconciler that independent readers use to
// decide what a session currently is.
package session

import (
	"fmt"
	"sort"
	"time"

	"crowdwatch/internal/dao"
)

// LiveRecord is the state of one in-flight analysis job, rewritten
// wholesale on every stream event. Timestamp (unix milliseconds) is the
// liveness signal readers check against the live timeout.
type LiveRecord struct {
	VideoId       int               `json:"videoId"`
	VideoFilename string            `json:"video_filename"`
	Username      string            `json:"username"`
	Status        string            `json:"status"`
	Progress      int               `json:"progress"`
	LiveCounts    map[string]int    `json:"liveCounts"`
	MaxCounts     map[string]int    `json:"maxCounts"`
	CurrentFrame  string            `json:"currentFrame,omitempty"`
	FrameData     []dao.FrameSample `json:"frame_data"`
	ZoneCounts    []dao.ZoneCount   `json:"zone_counts"`
	TotalCount    int               `json:"total_count"`
	Timestamp     int64             `json:"timestamp"`
}

// Fresh reports whether the record was written within the liveness
// window as of now.
func (r *LiveRecord) Fresh(now time.Time, liveTimeout time.Duration) bool {
	return now.UnixMilli()-r.Timestamp < liveTimeout.Milliseconds()
}

// AuthInfo is the persisted login state for the backend.
type AuthInfo struct {
	Username  string `json:"username,omitempty"`
	Token     string `json:"token,omitempty"`
	Role      string `json:"role,omitempty"`
	LoginTime string `json:"loginTime,omitempty"`
}

func videoFilename(videoId int) string {
	return fmt.Sprintf("Video %d", videoId)
}

func sumCounts(counts map[string]int) int {
	total := 0
	for _, count := range counts {
		total += count
	}
	return total
}

// deriveZoneCounts turns the max-count map into the result list shape,
// resolving numeric zone ids from the caller-supplied zone definitions.
// Labels with no matching zone get id 0. Output is label-ordered so the
// derived list is deterministic.
func deriveZoneCounts(maxCounts map[string]int, zones []dao.Zone) []dao.ZoneCount {
	labels := make([]string, 0, len(maxCounts))
	for label := range maxCounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	result := make([]dao.ZoneCount, 0, len(labels))
	for _, label := range labels {
		zoneId := 0
		for _, zone := range zones {
			if zone.Label == label {
				zoneId = zone.Id
				break
			}
		}
		result = append(result, dao.ZoneCount{
			ZoneId:    zoneId,
			ZoneLabel: label,
			Count:     maxCounts[label],
		})
	}
	return result
}
