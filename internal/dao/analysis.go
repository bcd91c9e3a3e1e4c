package dao

// ZoneCount is one zone's contribution to an analysis result.
type ZoneCount struct {
	ZoneId    int    `json:"zone_id"`
	ZoneLabel string `json:"zone_label"`
	Count     int    `json:"count"`
}

// FrameSample is one point of the per-session time series. Time is a
// fraction of the nominal duration window, not wall-clock time.
type FrameSample struct {
	Time   float64        `json:"time"`
	Counts map[string]int `json:"counts"`
}

// AnalysisRecord is the display shape shared by live sessions,
// ephemeral completed sessions and backend-persisted analyses. The id
// sign convention tells them apart: live records use -videoId,
// ephemeral completed sessions use a large-magnitude negative id
// (-unix-milli at completion), persisted analyses use positive ids.
type AnalysisRecord struct {
	Id            int64         `json:"id"`
	VideoId       int           `json:"video_id"`
	VideoFilename string        `json:"video_filename"`
	TotalCount    int           `json:"total_count"`
	ZoneCounts    []ZoneCount   `json:"zone_counts"`
	ProcessedAt   string        `json:"processed_at"`
	FrameData     []FrameSample `json:"frame_data,omitempty"`
	Live          bool          `json:"live,omitempty"`
}

type ProgressResponse struct {
	Percentage int `json:"percentage"`
	Current    int `json:"current"`
	Total      int `json:"total"`
}

type StartAnalysisRequest struct {
	VideoId  int    `json:"video_id" binding:"required"`
	Username string `json:"username" binding:"required"`
}

// StartAnalysisResponse is the synchronous (non-streaming) result.
type StartAnalysisResponse struct {
	VideoId     int         `json:"video_id"`
	Status      string      `json:"status"`
	TotalCount  int         `json:"total_count"`
	ZoneCounts  []ZoneCount `json:"zone_counts"`
	OutputVideo string      `json:"output_video"`
	ProcessedAt string      `json:"processed_at"`
}
