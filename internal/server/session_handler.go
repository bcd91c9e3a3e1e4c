package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"crowdwatch/internal/session"
)

func videoIdParam(c *gin.Context) (int, bool) {
	videoId, err := strconv.Atoi(c.Param("video_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "invalid video_id",
		})
		return 0, false
	}
	return videoId, true
}

type StartSessionResponse struct {
	VideoId   int  `json:"video_id"`
	Streaming bool `json:"streaming"`
	Attached  bool `json:"attached"`
}

// handleStartAnalysis starts a streaming session
// @Summary Start a streaming analysis session
// @Description Starts a streaming analysis session for the video, or attaches to the one already running
// @Tags analysis
// @Accept json
// @Produce json
// @Param video_id path int true "video id"
// @Success 200 {object} StartSessionResponse "session started or attached"
// @Failure 400 {object} ErrorResponse "no zones defined"
// @Failure 502 {object} ErrorResponse "backend unreachable"
// @Router /api/v1/analysis/{video_id}/start [post]
func (s *Server) handleStartAnalysis(c *gin.Context) {
	videoId, ok := videoIdParam(c)
	if !ok {
		return
	}

	info, err := s.store.GetAuthInfo()
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	} else if info == nil || info.Username == "" {
		s.writeError(c, http.StatusUnauthorized, errors.New("not logged in"))
		return
	}

	zones, err := s.backend.ListZones(c.Request.Context(), videoId)
	if err != nil {
		s.writeError(c, http.StatusBadGateway, err)
		return
	}

	attached := s.controller.IsStreaming(videoId)
	if _, err := s.controller.Start(videoId, info.Username, zones); err != nil {
		if errors.Is(err, session.ErrNoZones) {
			s.writeError(c, http.StatusBadRequest, err)
			return
		}
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, StartSessionResponse{
		VideoId:   videoId,
		Streaming: true,
		Attached:  attached,
	})
}

// handleStopAnalysis stops a streaming session
// @Summary Stop a streaming analysis session
// @Description Cancels the session and removes its live record; no completed analysis is written
// @Tags analysis
// @Produce json
// @Param video_id path int true "video id"
// @Success 200 "stopped"
// @Router /api/v1/analysis/{video_id}/stop [post]
func (s *Server) handleStopAnalysis(c *gin.Context) {
	videoId, ok := videoIdParam(c)
	if !ok {
		return
	}
	s.controller.Stop(videoId)
	c.JSON(http.StatusOK, gin.H{})
}

// handleListSessions returns the merged display list
// @Summary List sessions
// @Description Active sessions first, then recently completed session records, then backend-persisted analyses
// @Tags sessions
// @Produce json
// @Success 200 {array} dao.AnalysisRecord
// @Failure 500 {object} ErrorResponse "store failure"
// @Router /api/v1/sessions [get]
func (s *Server) handleListSessions(c *gin.Context) {
	snapshot, err := s.reconciler.Snapshot(c.Request.Context(), time.Now())
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type SessionResponse struct {
	State  string      `json:"state"`
	Record interface{} `json:"record,omitempty"`
}

// handleGetSession resolves one subject
// @Summary Resolve one session
// @Description Live data while the session is fresh, the completed record after, 404 once neither exists
// @Tags sessions
// @Produce json
// @Param video_id path int true "video id"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} ErrorResponse "no active or completed session"
// @Router /api/v1/session/{video_id} [get]
func (s *Server) handleGetSession(c *gin.Context) {
	videoId, ok := videoIdParam(c)
	if !ok {
		return
	}

	state, record, err := s.reconciler.Resolve(videoId, time.Now())
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	if state == session.SubjectVanished {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no active or completed session",
		})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		State:  state.String(),
		Record: record,
	})
}
