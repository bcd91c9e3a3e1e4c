package dao

type Video struct {
	Id         int    `json:"id"`
	Filename   string `json:"filename"`
	Filepath   string `json:"filepath"`
	Status     string `json:"status"`
	UploadedAt string `json:"uploaded_at"`
}

type Zone struct {
	Id          int         `json:"id"`
	Label       string      `json:"label"`
	Coordinates [][]float64 `json:"coordinates"`
	VideoId     int         `json:"video_id"`
}

type CreateZoneRequest struct {
	Username    string      `json:"username" binding:"required"`
	VideoId     int         `json:"video_id" binding:"required"`
	Label       string      `json:"label" binding:"required"`
	Coordinates [][]float64 `json:"coordinates" binding:"required"`
}
